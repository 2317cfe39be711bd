package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var errNotFound = errors.New("not found")

// Memory is an in-process Ledger backed by maps. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	blockhash solana.Hash
	accounts  map[solana.PublicKey]Account
	balances  map[solana.PublicKey]uint64
	calls     map[string]int
}

func NewMemory(blockhash solana.Hash) *Memory {
	return &Memory{
		blockhash: blockhash,
		accounts:  make(map[solana.PublicKey]Account),
		balances:  make(map[solana.PublicKey]uint64),
		calls:     make(map[string]int),
	}
}

func (m *Memory) SetBlockhash(h solana.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockhash = h
}

func (m *Memory) SetAccount(key solana.PublicKey, acc Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[key] = acc
}

func (m *Memory) SetTokenBalance(key solana.PublicKey, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key] = amount
}

// Calls returns how many times the named method was invoked.
func (m *Memory) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *Memory) count(method string) {
	m.calls[method]++
}

func (m *Memory) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetLatestBlockhash")
	if err := ctx.Err(); err != nil {
		return solana.Hash{}, xerr.Ledger(err, "get latest blockhash")
	}
	if m.blockhash == (solana.Hash{}) {
		return solana.Hash{}, xerr.Ledger(errNotFound, "get latest blockhash")
	}
	return m.blockhash, nil
}

func (m *Memory) GetAccount(_ context.Context, account solana.PublicKey) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetAccount")
	acc, ok := m.accounts[account]
	if !ok {
		return Account{}, xerr.Ledger(errNotFound, "get account %s", account)
	}
	return acc, nil
}

func (m *Memory) GetProgramAccounts(_ context.Context, program solana.PublicKey, filters ...Filter) ([]KeyedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetProgramAccounts")
	var out []KeyedAccount
	for key, acc := range m.accounts {
		if !acc.Owner.Equals(program) {
			continue
		}
		matched := true
		for _, f := range filters {
			if !f.Match(acc.Data) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, KeyedAccount{Pubkey: key, Account: acc})
		}
	}
	return out, nil
}

func (m *Memory) GetTokenAccountBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetTokenAccountBalance")
	amount, ok := m.balances[account]
	if !ok {
		return 0, xerr.Ledger(errNotFound, "get token balance %s", account)
	}
	return amount, nil
}

func (m *Memory) GetNonce(ctx context.Context, account solana.PublicKey) (global.Nonce, error) {
	acc, err := m.GetAccount(ctx, account)
	if err != nil {
		return global.Nonce{}, err
	}
	nonce, err := global.DecodeNonce(account, acc.Data)
	if err != nil {
		return global.Nonce{}, xerr.Ledger(err, "decode nonce")
	}
	return nonce, nil
}
