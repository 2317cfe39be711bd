package rpcs

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

// BlockRazorChannel is the HTTP flavour of the BlockRazor relay.
type BlockRazorChannel struct {
	endpoint string
	header   Header
	tips     *TipPicker
}

func NewBlockRazorChannel(endpoint, apiKey string, tips *TipPicker) *BlockRazorChannel {
	return &BlockRazorChannel{
		endpoint: strings.TrimRight(endpoint, "/"),
		header:   Header{Key: "apikey", Value: apiKey},
		tips:     tips,
	}
}

func (c *BlockRazorChannel) Name() string { return "blockrazor" }

func (c *BlockRazorChannel) TipAccount() (solana.PublicKey, bool) { return c.tips.Pick() }

func (c *BlockRazorChannel) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	body := map[string]string{"transaction": tx.Base64()}
	if _, err := postJSON(ctx, c.endpoint+"/sendTransaction", body, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [blockrazor] send %s failed: %v", tx.Signature(), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [blockrazor] tx sent: %s", tx.Signature())
	return nil
}

func (c *BlockRazorChannel) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	req := submitBatchRequest{Entries: make([]submitEntry, 0, len(txs))}
	for _, tx := range txs {
		req.Entries = append(req.Entries, submitEntry{Transaction: submitTransaction{Content: tx.Base64()}})
	}
	if _, err := postJSON(ctx, c.endpoint+"/api/v2/submit-batch", req, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [blockrazor] batch of %d failed: %v", len(txs), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [blockrazor] batch sent: %v", txSignatures(txs))
	return nil
}
