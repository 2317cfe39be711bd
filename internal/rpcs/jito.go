package rpcs

import (
	"context"

	"github.com/gagliardetto/solana-go"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

// MaxBundleSize is the block engine's per-bundle transaction cap.
const MaxBundleSize = 5

type bundleSender interface {
	SendBundle(params interface{}) ([]byte, error)
}

type jitoSender struct {
	cli *jitorpc.JitoJsonRpcClient
}

func (s jitoSender) SendBundle(params interface{}) ([]byte, error) {
	raw, err := s.cli.SendBundle(params)
	return raw, err
}

// JitoChannel submits single transactions and batches as block-engine bundles.
type JitoChannel struct {
	sender bundleSender
	tips   *TipPicker
}

func NewJitoChannel(endpoint, uuid string, tips *TipPicker) *JitoChannel {
	cli := jitorpc.NewJitoJsonRpcClient(endpoint, uuid)
	// SendBundle takes no context, so a cancelled send lingers until this fires.
	cli.Client.Timeout = DefaultTimeout
	return &JitoChannel{
		sender: jitoSender{cli: cli},
		tips:   tips,
	}
}

func (c *JitoChannel) Name() string { return "jito" }

func (c *JitoChannel) TipAccount() (solana.PublicKey, bool) { return c.tips.Pick() }

func (c *JitoChannel) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	return c.SendTransactions(ctx, []*global.Transaction{tx})
}

// SendTransactions splits txs into bundles of at most MaxBundleSize.
func (c *JitoChannel) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	for start := 0; start < len(txs); start += MaxBundleSize {
		end := min(start+MaxBundleSize, len(txs))
		if err := c.sendBundle(ctx, txs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *JitoChannel) sendBundle(ctx context.Context, txs []*global.Transaction) error {
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		encoded = append(encoded, tx.Base58())
	}

	type result struct {
		raw []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := c.sender.SendBundle([][]string{encoded})
		done <- result{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "jito bundle")
	case r := <-done:
		if r.err != nil {
			logx.WithContext(ctx).Errorf("❌ [jito] bundle failed: %v", r.err)
			return errors.Wrap(r.err, "jito bundle")
		}
		logx.WithContext(ctx).Infof("✅ [jito] bundle %s sent: %v", string(r.raw), txSignatures(txs))
		return nil
	}
}
