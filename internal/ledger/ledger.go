// Package ledger is the read side of the chain the traders depend on.
package ledger

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type Account struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

type KeyedAccount struct {
	Pubkey  solana.PublicKey
	Account Account
}

// Filter narrows a program-account scan. Zero DataSize and nil Memcmp match everything.
type Filter struct {
	DataSize uint64
	Memcmp   *Memcmp
}

type Memcmp struct {
	Offset uint64
	Bytes  []byte
}

// Match reports whether data passes the filter, evaluated the way the node does.
func (f Filter) Match(data []byte) bool {
	if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
		return false
	}
	if f.Memcmp != nil {
		end := f.Memcmp.Offset + uint64(len(f.Memcmp.Bytes))
		if end > uint64(len(data)) {
			return false
		}
		return bytes.Equal(data[f.Memcmp.Offset:end], f.Memcmp.Bytes)
	}
	return true
}

type Ledger interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetAccount(ctx context.Context, account solana.PublicKey) (Account, error)
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...Filter) ([]KeyedAccount, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetNonce(ctx context.Context, account solana.PublicKey) (global.Nonce, error)
}

type Option func(*RPC)

func WithCommitment(c rpc.CommitmentType) Option {
	return func(r *RPC) { r.commitment = c }
}

func WithRetry(attempts uint, delay time.Duration) Option {
	return func(r *RPC) {
		r.attempts = max(attempts, 1)
		r.delay = delay
	}
}

// RPC is a Ledger over a JSON-RPC node.
type RPC struct {
	cli        *rpc.Client
	commitment rpc.CommitmentType
	attempts   uint
	delay      time.Duration
}

func NewRPC(endpoint string, opts ...Option) *RPC {
	return NewRPCWithClient(rpc.New(endpoint), opts...)
}

func NewRPCWithClient(cli *rpc.Client, opts ...Option) *RPC {
	r := &RPC{
		cli:        cli,
		commitment: rpc.CommitmentConfirmed,
		attempts:   3,
		delay:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client exposes the underlying node client.
func (r *RPC) Client() *rpc.Client { return r.cli }

func (r *RPC) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := retry.Do(func() error {
		out, err := r.cli.GetLatestBlockhash(ctx, r.commitment)
		if err != nil {
			return err
		}
		if out == nil || out.Value == nil {
			return errors.New("empty blockhash response")
		}
		hash = out.Value.Blockhash
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logx.WithContext(ctx).Infof("🔁 blockhash attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return solana.Hash{}, xerr.Ledger(err, "get latest blockhash")
	}
	return hash, nil
}

func (r *RPC) GetAccount(ctx context.Context, account solana.PublicKey) (Account, error) {
	out, err := r.cli.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: r.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return Account{}, xerr.Ledger(err, "get account %s", account)
	}
	if out == nil || out.Value == nil {
		return Account{}, xerr.Ledger(rpc.ErrNotFound, "get account %s", account)
	}
	return toAccount(out.Value), nil
}

func (r *RPC) GetProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...Filter) ([]KeyedAccount, error) {
	rpcFilters := make([]rpc.RPCFilter, 0, len(filters))
	for _, f := range filters {
		rf := rpc.RPCFilter{DataSize: f.DataSize}
		if f.Memcmp != nil {
			rf.Memcmp = &rpc.RPCFilterMemcmp{Offset: f.Memcmp.Offset, Bytes: solana.Base58(f.Memcmp.Bytes)}
		}
		rpcFilters = append(rpcFilters, rf)
	}
	out, err := r.cli.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: r.commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    rpcFilters,
	})
	if err != nil {
		return nil, xerr.Ledger(err, "get program accounts %s", program)
	}
	accounts := make([]KeyedAccount, 0, len(out))
	for _, ka := range out {
		if ka == nil || ka.Account == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{Pubkey: ka.Pubkey, Account: toAccount(ka.Account)})
	}
	return accounts, nil
}

func (r *RPC) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := r.cli.GetTokenAccountBalance(ctx, account, r.commitment)
	if err != nil {
		return 0, xerr.Ledger(err, "get token balance %s", account)
	}
	if out == nil || out.Value == nil {
		return 0, xerr.Ledger(rpc.ErrNotFound, "get token balance %s", account)
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, xerr.Ledger(err, "parse token balance %q", out.Value.Amount)
	}
	return amount, nil
}

func (r *RPC) GetNonce(ctx context.Context, account solana.PublicKey) (global.Nonce, error) {
	acc, err := r.GetAccount(ctx, account)
	if err != nil {
		return global.Nonce{}, err
	}
	nonce, err := global.DecodeNonce(account, acc.Data)
	if err != nil {
		return global.Nonce{}, xerr.Ledger(err, "decode nonce")
	}
	return nonce, nil
}

func toAccount(a *rpc.Account) Account {
	acc := Account{Owner: a.Owner, Lamports: a.Lamports}
	if a.Data != nil {
		acc.Data = a.Data.GetBinary()
	}
	return acc
}
