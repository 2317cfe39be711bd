package rpcs

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

// JSONRPCChannel posts standard sendTransaction calls to a node or relay URL.
// The Default, Temporal, 0slot and Astralane providers all speak this dialect.
type JSONRPCChannel struct {
	name   string
	url    string
	header Header
	// extra trailing params appended after the encoding options
	extra []any
	tips  *TipPicker
}

func NewJSONRPCChannel(name, url string, header Header, tips *TipPicker) *JSONRPCChannel {
	return &JSONRPCChannel{name: name, url: url, header: header, tips: tips}
}

func (c *JSONRPCChannel) Name() string { return c.name }

func (c *JSONRPCChannel) TipAccount() (solana.PublicKey, bool) { return c.tips.Pick() }

func (c *JSONRPCChannel) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	params := []any{
		tx.Base64(),
		map[string]any{"encoding": "base64", "skipPreflight": true},
	}
	params = append(params, c.extra...)
	if _, err := postJSON(ctx, c.url, SendTransactionJson{
		Id:      1,
		Jsonrpc: "2.0",
		Method:  "sendTransaction",
		Params:  params,
	}, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [%s] send %s failed: %v", c.name, tx.Signature(), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [%s] tx sent: %s", c.name, tx.Signature())
	return nil
}

func (c *JSONRPCChannel) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		encoded = append(encoded, tx.Base64())
	}
	if _, err := postJSON(ctx, c.url, SendTransactionJson{
		Id:      1,
		Jsonrpc: "2.0",
		Method:  "sendTransactions",
		Params:  []any{encoded, map[string]any{"encoding": "base64", "skipPreflight": true}},
	}, c.header); err != nil {
		logx.WithContext(ctx).Errorf("❌ [%s] batch of %d failed: %v", c.name, len(txs), err)
		return err
	}
	logx.WithContext(ctx).Infof("✅ [%s] batch sent: %v", c.name, txSignatures(txs))
	return nil
}

// NewDefaultChannel is the plain RPC relay. It takes no tip.
func NewDefaultChannel(url string, header Header) *JSONRPCChannel {
	return NewJSONRPCChannel("default", url, header, nil)
}

// NewTemporalChannel authenticates with the c query parameter.
func NewTemporalChannel(endpoint, token string, tips *TipPicker) *JSONRPCChannel {
	return NewJSONRPCChannel("temporal", withQuery(endpoint, "c", token), Header{}, tips)
}

// NewZeroSlotChannel authenticates with the api-key query parameter.
func NewZeroSlotChannel(endpoint, token string, tips *TipPicker) *JSONRPCChannel {
	return NewJSONRPCChannel("0slot", withQuery(endpoint, "api-key", token), Header{}, tips)
}

func withQuery(endpoint, key, value string) string {
	if value == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + key + "=" + value
}
