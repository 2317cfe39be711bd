package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/kerokon/solana-trading-sdk/internal/amm"
	"github.com/kerokon/solana-trading-sdk/internal/endpoint"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

// Trader runs buy, sell, batch and create against any Venue.
type Trader struct {
	venue    Venue
	endpoint *endpoint.Endpoint
	buyATA   CreateATA
	version  global.TxVersion
}

type TraderOption func(*Trader)

// WithBuyATA changes how Buy provides the buyer's token account.
func WithBuyATA(mode CreateATA) TraderOption {
	return func(t *Trader) { t.buyATA = mode }
}

// WithTxVersion selects legacy or v0 transactions for single-payer calls.
func WithTxVersion(v global.TxVersion) TraderOption {
	return func(t *Trader) { t.version = v }
}

func NewTrader(v Venue, e *endpoint.Endpoint, opts ...TraderOption) *Trader {
	t := &Trader{venue: v, endpoint: e, buyATA: CreateATAAlways}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trader) Venue() Venue { return t.venue }

func (t *Trader) Endpoint() *endpoint.Endpoint { return t.endpoint }

func (t *Trader) poolAndBlockhash(ctx context.Context, mint solana.PublicKey) (PoolInfo, solana.Hash, error) {
	var (
		pool      PoolInfo
		blockhash solana.Hash
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pool, err = t.venue.GetPool(gctx, mint)
		return err
	})
	g.Go(func() (err error) {
		blockhash, err = t.endpoint.GetLatestBlockhash(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PoolInfo{}, solana.Hash{}, err
	}
	return pool, blockhash, nil
}

// Buy spends up to solAmount (plus slippage) on mint at the current pool price.
func (t *Trader) Buy(ctx context.Context, payer solana.PrivateKey, mint solana.PublicKey, solAmount, slippageBps uint64,
	fee *global.PriorityFee, tip uint64) ([]solana.Signature, error) {
	pool, blockhash, err := t.poolAndBlockhash(ctx, mint)
	if err != nil {
		return nil, err
	}
	tokenOut, err := amm.BuyTokenOut(pool.SolReserves, pool.TokenReserves, solAmount)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s pool %s", t.venue.Name(), pool.Pool)
	}
	logx.WithContext(ctx).Infof("🛒 %s buy %s: %d lamports for %d tokens", t.venue.Name(), mint, solAmount, tokenOut)

	return t.BuyImmediately(ctx, BuyRequest{
		Payer:       payer,
		Mint:        mint,
		Extra:       pool.Extra(),
		SolAmount:   amm.WithSlippageBuy(solAmount, slippageBps),
		TokenAmount: tokenOut,
		Blockhashes: []solana.Hash{blockhash},
		CreateATA:   t.buyATA,
		Fee:         fee,
		Tip:         tip,
	})
}

// BuyRequest is a fully priced buy.
type BuyRequest struct {
	Payer       solana.PrivateKey
	Mint        solana.PublicKey
	Extra       *solana.PublicKey
	SolAmount   uint64
	TokenAmount uint64
	Blockhashes []solana.Hash
	Nonce       *global.Nonce
	CreateATA   CreateATA
	Fee         *global.PriorityFee
	Tip         uint64
}

// BuyImmediately builds and broadcasts a buy priced by the caller. No ledger
// reads happen here.
func (t *Trader) BuyImmediately(ctx context.Context, req BuyRequest) ([]solana.Signature, error) {
	owner := req.Payer.PublicKey()
	tokenAccount, prefix, err := req.CreateATA.Instructions(owner, req.Mint)
	if err != nil {
		return nil, err
	}
	buy, err := t.venue.BuildBuyInstruction(owner, req.Mint, req.Extra, tokenAccount,
		SwapInfo{TokenAmount: req.TokenAmount, SolAmount: req.SolAmount})
	if err != nil {
		return nil, err
	}

	return t.endpoint.BuildAndBroadcast(ctx, global.OpBuy, req.Payer, t.buyInstructions(owner, req.SolAmount, prefix, buy),
		endpoint.BroadcastOptions{
			Blockhashes:   req.Blockhashes,
			Nonce:         req.Nonce,
			AdditionalFee: req.Fee,
			AdditionalTip: req.Tip,
			Version:       t.version,
		})
}

func (t *Trader) buyInstructions(owner solana.PublicKey, solAmount uint64, prefix []solana.Instruction, buy solana.Instruction) []solana.Instruction {
	if t.venue.UseWSOL() {
		return global.WSOLBuyInstructions(owner, solAmount, prefix, buy)
	}
	return append(append([]solana.Instruction{}, prefix...), buy)
}

func (t *Trader) sellInstructions(owner, mint solana.PublicKey, sell solana.Instruction, closeMintATA bool) []solana.Instruction {
	if t.venue.UseWSOL() {
		return global.WSOLSellInstructions(owner, mint, sell, closeMintATA)
	}
	return global.SOLSellInstructions(owner, mint, sell, closeMintATA)
}

// Sell sells amount of mint at the current pool price less slippage.
func (t *Trader) Sell(ctx context.Context, payer solana.PrivateKey, mint solana.PublicKey, amount TokenAmount, slippageBps uint64,
	customATA *solana.PublicKey, closeMintATA bool, fee *global.PriorityFee, tip uint64) ([]solana.Signature, error) {
	var (
		pool        PoolInfo
		blockhash   solana.Hash
		tokenAmount uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pool, err = t.venue.GetPool(gctx, mint)
		return err
	})
	g.Go(func() (err error) {
		blockhash, err = t.endpoint.GetLatestBlockhash(gctx)
		return err
	})
	g.Go(func() (err error) {
		tokenAmount, err = amount.Resolve(gctx, t.endpoint.Ledger(), payer.PublicKey(), mint)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	solOut, err := amm.SellSolOut(pool.SolReserves, pool.TokenReserves, tokenAmount)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s pool %s", t.venue.Name(), pool.Pool)
	}
	logx.WithContext(ctx).Infof("💰 %s sell %s: %d tokens for %d lamports", t.venue.Name(), mint, tokenAmount, solOut)

	return t.SellImmediately(ctx, SellRequest{
		Payer:        payer,
		Mint:         mint,
		Extra:        pool.Extra(),
		CustomATA:    customATA,
		TokenAmount:  tokenAmount,
		SolAmount:    amm.WithSlippageSell(solOut, slippageBps),
		CloseMintATA: closeMintATA,
		Blockhashes:  []solana.Hash{blockhash},
		Fee:          fee,
		Tip:          tip,
	})
}

// SellRequest is a fully priced sell.
type SellRequest struct {
	Payer        solana.PrivateKey
	Mint         solana.PublicKey
	Extra        *solana.PublicKey
	CustomATA    *solana.PublicKey
	TokenAmount  uint64
	SolAmount    uint64
	CloseMintATA bool
	Blockhashes  []solana.Hash
	Nonce        *global.Nonce
	Fee          *global.PriorityFee
	Tip          uint64
}

func (t *Trader) SellImmediately(ctx context.Context, req SellRequest) ([]solana.Signature, error) {
	owner := req.Payer.PublicKey()
	sell, err := t.venue.BuildSellInstruction(owner, req.Mint, req.CustomATA, req.Extra,
		SwapInfo{TokenAmount: req.TokenAmount, SolAmount: req.SolAmount})
	if err != nil {
		return nil, err
	}

	return t.endpoint.BuildAndBroadcast(ctx, global.OpSell, req.Payer, t.sellInstructions(owner, req.Mint, sell, req.CloseMintATA),
		endpoint.BroadcastOptions{
			Blockhashes:   req.Blockhashes,
			Nonce:         req.Nonce,
			AdditionalFee: req.Fee,
			AdditionalTip: req.Tip,
			Version:       t.version,
		})
}

// BatchBuy prices every item against the reserves left by the items before it
// and sends one transaction per item. The transactions are independent: any
// subset may land.
func (t *Trader) BatchBuy(ctx context.Context, mint solana.PublicKey, slippageBps uint64, fee *global.PriorityFee, tip uint64,
	items []BatchBuyItem) ([]solana.Signature, error) {
	if len(items) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("empty batch")
	}
	pool, blockhash, err := t.poolAndBlockhash(ctx, mint)
	if err != nil {
		return nil, err
	}

	reserves := amm.Reserves{Sol: pool.SolReserves, Token: pool.TokenReserves}
	batch := make([]endpoint.BatchItem, 0, len(items))
	for i, item := range items {
		tokenOut, err := reserves.Buy(item.SolAmount)
		if err != nil {
			return nil, errors.WithMessagef(err, "batch buy item %d", i)
		}
		solWithSlippage := amm.WithSlippageBuy(item.SolAmount, slippageBps)

		owner := item.Payer.PublicKey()
		tokenAccount, prefix, err := CreateATAIdempotent.Instructions(owner, mint)
		if err != nil {
			return nil, err
		}
		buy, err := t.venue.BuildBuyInstruction(owner, mint, pool.Extra(), tokenAccount,
			SwapInfo{TokenAmount: tokenOut, SolAmount: solWithSlippage})
		if err != nil {
			return nil, err
		}
		batch = append(batch, endpoint.BatchItem{
			Payer:        item.Payer,
			Instructions: t.buyInstructions(owner, solWithSlippage, prefix, buy),
		})
	}

	return t.endpoint.BuildAndBroadcastBatch(ctx, global.OpBuy, batch, blockhash, fee, tip)
}

// BatchSell is the mirror of BatchBuy: each item sells into the reserves left
// by the items before it.
func (t *Trader) BatchSell(ctx context.Context, mint solana.PublicKey, slippageBps uint64, fee *global.PriorityFee, tip uint64,
	items []BatchSellItem) ([]solana.Signature, error) {
	if len(items) == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("empty batch")
	}
	pool, blockhash, err := t.poolAndBlockhash(ctx, mint)
	if err != nil {
		return nil, err
	}

	reserves := amm.Reserves{Sol: pool.SolReserves, Token: pool.TokenReserves}
	batch := make([]endpoint.BatchItem, 0, len(items))
	for i, item := range items {
		solOut, err := reserves.Sell(item.TokenAmount)
		if err != nil {
			return nil, errors.WithMessagef(err, "batch sell item %d", i)
		}

		owner := item.Payer.PublicKey()
		sell, err := t.venue.BuildSellInstruction(owner, mint, item.CustomATA, pool.Extra(),
			SwapInfo{TokenAmount: item.TokenAmount, SolAmount: amm.WithSlippageSell(solOut, slippageBps)})
		if err != nil {
			return nil, err
		}
		batch = append(batch, endpoint.BatchItem{
			Payer:        item.Payer,
			Instructions: t.sellInstructions(owner, mint, sell, item.CloseMintATA),
		})
	}

	return t.endpoint.BuildAndBroadcastBatch(ctx, global.OpSell, batch, blockhash, fee, tip)
}

// Create launches a token on venues that implement Creator. The mint keypair
// co-signs every transaction.
func (t *Trader) Create(ctx context.Context, payer solana.PrivateKey, params CreateParams, fee *global.PriorityFee,
	tip uint64) ([]solana.Signature, error) {
	creator, ok := t.venue.(Creator)
	if !ok {
		return nil, xerr.ErrUnsupported.Withf("%s cannot create tokens", t.venue.Name())
	}
	if params.Mint == nil {
		return nil, xerr.ErrInvalidArgument.Withf("create needs a mint keypair")
	}
	instrs, err := creator.BuildCreateInstructions(payer.PublicKey(), params)
	if err != nil {
		return nil, err
	}
	blockhash, err := t.endpoint.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Infof("🪙 %s create %s (%s)", t.venue.Name(), params.Mint.PublicKey(), params.Symbol)

	return t.endpoint.BuildAndBroadcast(ctx, global.OpCreate, payer, instrs, endpoint.BroadcastOptions{
		Blockhashes:   []solana.Hash{blockhash},
		AdditionalFee: fee,
		AdditionalTip: tip,
		Signers:       []solana.PrivateKey{params.Mint},
		Version:       t.version,
	})
}
