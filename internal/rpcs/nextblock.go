package rpcs

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

type submitTransaction struct {
	Content string `json:"content"`
}

type submitRequest struct {
	Transaction            submitTransaction `json:"transaction"`
	FrontRunningProtection bool              `json:"frontRunningProtection"`
	UseStakedRPCs          *bool             `json:"useStakedRPCs,omitempty"`
}

type submitEntry struct {
	Transaction submitTransaction `json:"transaction"`
}

type submitBatchRequest struct {
	Entries []submitEntry `json:"entries"`
}

// SubmitChannel speaks the /api/v2/submit dialect shared by NextBlock and bloXroute.
type SubmitChannel struct {
	name      string
	endpoint  string
	header    Header
	stakedRPC bool
	tips      *TipPicker
}

func NewNextBlockChannel(endpoint, token string, tips *TipPicker) *SubmitChannel {
	return &SubmitChannel{
		name:     "nextblock",
		endpoint: strings.TrimRight(endpoint, "/"),
		header:   Header{Key: "Authorization", Value: token},
		tips:     tips,
	}
}

// NewBloxChannel also routes through staked RPCs.
func NewBloxChannel(endpoint, token string, tips *TipPicker) *SubmitChannel {
	return &SubmitChannel{
		name:      "blox",
		endpoint:  strings.TrimRight(endpoint, "/"),
		header:    Header{Key: "Authorization", Value: token},
		stakedRPC: true,
		tips:      tips,
	}
}

func (c *SubmitChannel) Name() string { return c.name }

func (c *SubmitChannel) TipAccount() (solana.PublicKey, bool) { return c.tips.Pick() }

func (c *SubmitChannel) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	req := submitRequest{Transaction: submitTransaction{Content: tx.Base64()}}
	if c.stakedRPC {
		staked := true
		req.UseStakedRPCs = &staked
	}
	if _, err := postJSON(ctx, c.endpoint+"/api/v2/submit", req, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [%s] send %s failed: %v", c.name, tx.Signature(), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [%s] tx sent: %s", c.name, tx.Signature())
	return nil
}

func (c *SubmitChannel) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	req := submitBatchRequest{Entries: make([]submitEntry, 0, len(txs))}
	for _, tx := range txs {
		req.Entries = append(req.Entries, submitEntry{Transaction: submitTransaction{Content: tx.Base64()}})
	}
	if _, err := postJSON(ctx, c.endpoint+"/api/v2/submit-batch", req, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [%s] batch of %d failed: %v", c.name, len(txs), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [%s] batch sent: %v", c.name, txSignatures(txs))
	return nil
}
