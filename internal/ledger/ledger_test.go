package ledger

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// fakeNode answers JSON-RPC calls from a method->result table.
func fakeNode(t *testing.T, results map[string]string, failFirst int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if int(n) <= failFirst {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestBlockhashRetriesThenSucceeds(t *testing.T) {
	hash := solana.HashFromBytes(make([]byte, 32))
	hash[0] = 1
	srv, calls := fakeNode(t, map[string]string{
		"getLatestBlockhash": fmt.Sprintf(`{"context":{"slot":1},"value":{"blockhash":%q,"lastValidBlockHeight":10}}`, hash),
	}, 2)

	l := NewRPC(srv.URL, WithRetry(3, time.Millisecond))
	got, err := l.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBlockhashGivesUpAfterAttempts(t *testing.T) {
	srv, calls := fakeNode(t, nil, 100)

	l := NewRPC(srv.URL, WithRetry(3, time.Millisecond))
	_, err := l.GetLatestBlockhash(context.Background())
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetAccountAndTokenBalance(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	data := []byte{1, 2, 3, 4}
	srv, _ := fakeNode(t, map[string]string{
		"getAccountInfo": fmt.Sprintf(`{"context":{"slot":1},"value":{"data":[%q,"base64"],"executable":false,"lamports":1500,"owner":%q,"rentEpoch":0}}`,
			base64.StdEncoding.EncodeToString(data), owner),
		"getTokenAccountBalance": `{"context":{"slot":1},"value":{"amount":"123456789","decimals":6,"uiAmount":123.456789,"uiAmountString":"123.456789"}}`,
	}, 0)

	l := NewRPC(srv.URL)
	acc, err := l.GetAccount(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, owner, acc.Owner)
	assert.Equal(t, uint64(1500), acc.Lamports)
	assert.Equal(t, data, acc.Data)

	bal, err := l.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), bal)
}

func TestRPCErrorsAreLedgerErrors(t *testing.T) {
	srv, _ := fakeNode(t, map[string]string{}, 0)
	l := NewRPC(srv.URL)
	_, err := l.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)
}

func TestFilterMatch(t *testing.T) {
	data := []byte{0, 0, 9, 8, 7}
	assert.True(t, Filter{}.Match(data))
	assert.True(t, Filter{DataSize: 5}.Match(data))
	assert.False(t, Filter{DataSize: 4}.Match(data))
	assert.True(t, Filter{Memcmp: &Memcmp{Offset: 2, Bytes: []byte{9, 8}}}.Match(data))
	assert.False(t, Filter{Memcmp: &Memcmp{Offset: 4, Bytes: []byte{7, 1}}}.Match(data))
}

func TestMemoryLedger(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	m := NewMemory(solana.Hash{})
	_, err := m.GetLatestBlockhash(context.Background())
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)

	data := make([]byte, 40)
	copy(data[8:], mint[:])
	m.SetAccount(pool, Account{Owner: program, Data: data})
	m.SetAccount(solana.NewWallet().PublicKey(), Account{Owner: program, Data: make([]byte, 40)})

	found, err := m.GetProgramAccounts(context.Background(), program, Filter{Memcmp: &Memcmp{Offset: 8, Bytes: mint[:]}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pool, found[0].Pubkey)
	assert.Equal(t, 1, m.Calls("GetProgramAccounts"))

	nonceAcc := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	raw := make([]byte, 0, 80)
	raw = binary.LittleEndian.AppendUint32(raw, 1)
	raw = binary.LittleEndian.AppendUint32(raw, 1)
	raw = append(raw, authority[:]...)
	raw = append(raw, make([]byte, 32)...)
	raw = binary.LittleEndian.AppendUint64(raw, 5000)
	m.SetAccount(nonceAcc, Account{Owner: solana.SystemProgramID, Data: raw})
	nonce, err := m.GetNonce(context.Background(), nonceAcc)
	require.NoError(t, err)
	assert.Equal(t, authority, nonce.Authority)
}
