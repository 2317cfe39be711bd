// Package rpcstest provides an in-memory relay for tests.
package rpcstest

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

// Relay records what it was sent. Err fails every send; Hang blocks until the
// context is done.
type Relay struct {
	name string
	tip  *solana.PublicKey

	Err   error
	Hang  bool
	Delay time.Duration

	mu      sync.Mutex
	sent    []*global.Transaction
	batches [][]*global.Transaction
}

func NewRelay(name string, tip *solana.PublicKey) *Relay {
	return &Relay{name: name, tip: tip}
}

func (r *Relay) Name() string { return r.name }

func (r *Relay) TipAccount() (solana.PublicKey, bool) {
	if r.tip == nil {
		return solana.PublicKey{}, false
	}
	return *r.tip, true
}

func (r *Relay) wait(ctx context.Context) error {
	if r.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.Err
}

func (r *Relay) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, tx)
	return nil
}

func (r *Relay) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, txs)
	return nil
}

func (r *Relay) Sent() []*global.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*global.Transaction(nil), r.sent...)
}

func (r *Relay) Batches() [][]*global.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*global.Transaction(nil), r.batches...)
}
