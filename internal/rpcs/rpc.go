// Package rpcs holds one submission client per relay provider.
package rpcs

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

// DefaultTimeout bounds a single HTTP submission when the context carries no deadline.
const DefaultTimeout = 10 * time.Second

// Client submits signed transactions to one relay endpoint.
type Client interface {
	Name() string
	SendTransaction(ctx context.Context, tx *global.Transaction) error
	SendTransactions(ctx context.Context, txs []*global.Transaction) error
	// TipAccount picks the account the tip transfer goes to. ok is false for
	// relays that take no tip.
	TipAccount() (account solana.PublicKey, ok bool)
}

type SendTransactionJson struct {
	Id      int64  `json:"id"`
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Header is an extra request header, e.g. an API key.
type Header struct {
	Key   string
	Value string
}

func (h Header) empty() bool { return h.Key == "" || h.Value == "" }

// postJSON sends body to url and fails on transport errors, non-2xx statuses and
// JSON-RPC error objects.
func postJSON(ctx context.Context, url string, body any, headers ...Header) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for _, h := range headers {
		if !h.empty() {
			req.Header.Set(h.Key, h.Value)
		}
	}
	req.SetBody(payload)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err = fasthttp.DoDeadline(req, resp, deadline); err != nil {
		return nil, errors.Wrapf(err, "post %s", redact(url))
	}

	respBody := append([]byte(nil), resp.Body()...)
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return respBody, errors.Errorf("post %s: status %d: %s", redact(url), code, truncate(respBody))
	}

	var rr rpcResponse
	if json.Unmarshal(respBody, &rr) == nil && rr.Error != nil {
		return respBody, errors.Errorf("post %s: rpc error %d: %s", redact(url), rr.Error.Code, rr.Error.Message)
	}
	return respBody, nil
}

// redact drops the query string, which usually carries the credential.
func redact(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// TipPicker chooses uniformly from a fixed set of tip accounts.
type TipPicker struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	accounts []solana.PublicKey
}

// NewTipPicker uses rnd as its source; nil means a time-seeded source.
func NewTipPicker(accounts []solana.PublicKey, rnd *rand.Rand) *TipPicker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TipPicker{rnd: rnd, accounts: accounts}
}

func (p *TipPicker) Pick() (solana.PublicKey, bool) {
	if p == nil || len(p.accounts) == 0 {
		return solana.PublicKey{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accounts[p.rnd.Intn(len(p.accounts))], true
}

func (p *TipPicker) Accounts() []solana.PublicKey {
	if p == nil {
		return nil
	}
	out := make([]solana.PublicKey, len(p.accounts))
	copy(out, p.accounts)
	return out
}

func txSignatures(txs []*global.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Signature().String())
	}
	return out
}
