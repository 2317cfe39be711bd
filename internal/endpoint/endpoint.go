// Package endpoint assembles one transaction per relay runtime and fans them out.
package endpoint

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

// SendTimeout bounds each relay submission independently.
const SendTimeout = 10 * time.Second

type Endpoint struct {
	ledger      ledger.Ledger
	runtimes    []*swqos.Runtime
	sendTimeout time.Duration
}

type Option func(*Endpoint)

func WithSendTimeout(d time.Duration) Option {
	return func(e *Endpoint) { e.sendTimeout = d }
}

func New(l ledger.Ledger, runtimes []*swqos.Runtime, opts ...Option) *Endpoint {
	e := &Endpoint{ledger: l, runtimes: runtimes, sendTimeout: SendTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Endpoint) Ledger() ledger.Ledger { return e.ledger }

func (e *Endpoint) Runtimes() []*swqos.Runtime { return e.runtimes }

func (e *Endpoint) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return e.ledger.GetLatestBlockhash(ctx)
}

// BroadcastOptions are the per-call extras of BuildAndBroadcast.
type BroadcastOptions struct {
	// Blockhashes are assigned to runtimes round-robin. Ignored when Nonce is set.
	Blockhashes []solana.Hash
	// Nonce makes every transaction durable: the advance instruction goes first
	// and the nonce value replaces the blockhash.
	Nonce         *global.Nonce
	AdditionalFee *global.PriorityFee
	AdditionalTip uint64
	// Signers sign alongside the payer, e.g. a fresh mint keypair.
	Signers []solana.PrivateKey
	Version global.TxVersion
}

// BuildAndBroadcast builds one transaction per runtime and submits them all
// concurrently. Signatures come back in runtime order even when some relays
// fail; the failures are reported together as a *xerr.BroadcastError. Any
// build or policy error aborts before anything is sent.
func (e *Endpoint) BuildAndBroadcast(ctx context.Context, op global.OperationKind, payer solana.PrivateKey,
	instrs []solana.Instruction, opts BroadcastOptions) ([]solana.Signature, error) {
	if len(e.runtimes) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("no relay runtimes configured")
	}
	if opts.Nonce == nil && len(opts.Blockhashes) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("no blockhash supplied")
	}

	txs := make([]*global.Transaction, len(e.runtimes))
	sigs := make([]solana.Signature, len(e.runtimes))
	for i, rt := range e.runtimes {
		tip, err := ResolveTip(rt, op, opts.AdditionalTip)
		if err != nil {
			return nil, err
		}
		var blockhash solana.Hash
		if opts.Nonce != nil {
			blockhash = opts.Nonce.Hash
		} else {
			blockhash = opts.Blockhashes[i%len(opts.Blockhashes)]
		}

		tx, err := Assemble(payer.PublicKey(), blockhash, AssembleParams{
			Nonce:        opts.Nonce,
			Fee:          ResolveFee(rt.Config, op, opts.AdditionalFee),
			Tip:          tip,
			Instructions: instrs,
		}).BuildAs(opts.Version, payer, opts.Signers...)
		if err != nil {
			return nil, errors.WithMessagef(err, "relay %s", rt.Name())
		}
		txs[i] = tx
		sigs[i] = tx.Signature()
	}

	failures := make([]*xerr.ProviderError, len(e.runtimes))
	group := threading.NewRoutineGroup()
	for i, rt := range e.runtimes {
		group.RunSafe(func() {
			sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
			defer cancel()
			if err := rt.Client.SendTransaction(sendCtx, txs[i]); err != nil {
				failures[i] = &xerr.ProviderError{Provider: rt.Name(), Cause: err}
			}
		})
	}
	group.Wait()

	if err := xerr.NewBroadcastError(failures); err != nil {
		logx.WithContext(ctx).Errorf("⚠️ %s broadcast incomplete: %v", op, err)
		return sigs, err
	}
	logx.WithContext(ctx).Infof("🚀 %s broadcast to %d relays: %s", op, len(sigs), sigs[0])
	return sigs, nil
}

// BatchItem is one payer's leg of a batch.
type BatchItem struct {
	Payer        solana.PrivateKey
	Instructions []solana.Instruction
}

// BuildAndBroadcastBatch sends, through every runtime, one v0 transaction per
// item paid and tipped by the item's payer. Signatures are grouped by runtime,
// items in order within each group.
func (e *Endpoint) BuildAndBroadcastBatch(ctx context.Context, op global.OperationKind, items []BatchItem,
	blockhash solana.Hash, additionalFee *global.PriorityFee, additionalTip uint64) ([]solana.Signature, error) {
	if len(e.runtimes) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("no relay runtimes configured")
	}
	if len(items) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("empty batch")
	}

	batches := make([][]*global.Transaction, len(e.runtimes))
	sigs := make([]solana.Signature, 0, len(e.runtimes)*len(items))
	for i, rt := range e.runtimes {
		tip, err := ResolveTip(rt, op, additionalTip)
		if err != nil {
			return nil, err
		}
		fee := ResolveFee(rt.Config, op, additionalFee)
		batch := make([]*global.Transaction, 0, len(items))
		for _, item := range items {
			tx, err := Assemble(item.Payer.PublicKey(), blockhash, AssembleParams{
				Fee:          fee,
				Tip:          tip,
				Instructions: item.Instructions,
			}).BuildVersioned(item.Payer)
			if err != nil {
				return nil, errors.WithMessagef(err, "relay %s", rt.Name())
			}
			batch = append(batch, tx)
			sigs = append(sigs, tx.Signature())
		}
		batches[i] = batch
	}

	failures := make([]*xerr.ProviderError, len(e.runtimes))
	group := threading.NewRoutineGroup()
	for i, rt := range e.runtimes {
		group.RunSafe(func() {
			sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
			defer cancel()
			if err := rt.Client.SendTransactions(sendCtx, batches[i]); err != nil {
				failures[i] = &xerr.ProviderError{Provider: rt.Name(), Cause: err}
			}
		})
	}
	group.Wait()

	if err := xerr.NewBroadcastError(failures); err != nil {
		logx.WithContext(ctx).Errorf("⚠️ %s batch incomplete: %v", op, err)
		return sigs, err
	}
	logx.WithContext(ctx).Infof("🚀 %s batch of %d sent to %d relays", op, len(items), len(e.runtimes))
	return sigs, nil
}
