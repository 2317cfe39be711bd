// Package raydium trades Raydium launchpad (letsbonk) bonding curves.
package raydium

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type Bonk struct {
	ledger ledger.Ledger
}

func NewBonk(l ledger.Ledger) *Bonk {
	return &Bonk{ledger: l}
}

func (b *Bonk) Name() dex.VenueName { return dex.RaydiumBonk }

func (b *Bonk) Initialize(context.Context) error { return nil }

func (b *Bonk) Initialized() error { return nil }

func (b *Bonk) UseWSOL() bool { return true }

func (b *Bonk) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	pool, err := PoolPDA(mint)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	acc, err := b.ledger.GetAccount(ctx, pool)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	if len(acc.Data) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("launchpad pool %s not found", pool)
	}
	var state PoolState
	if err = bin.NewBorshDecoder(acc.Data).Decode(&state); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode launchpad pool %s", pool)
	}
	creator := state.Creator
	return dex.PoolInfo{
		Pool:          pool,
		Creator:       &creator,
		TokenReserves: state.VirtualBase,
		SolReserves:   state.VirtualQuote,
	}, nil
}

func (b *Bonk) accounts(payer, mint, userBase solana.PublicKey) (swapAccounts, error) {
	pool, err := PoolPDA(mint)
	if err != nil {
		return swapAccounts{}, err
	}
	baseVault, err := VaultPDA(pool, mint)
	if err != nil {
		return swapAccounts{}, err
	}
	quoteVault, err := VaultPDA(pool, global.WSOL)
	if err != nil {
		return swapAccounts{}, err
	}
	return swapAccounts{
		payer:      payer,
		pool:       pool,
		userBase:   userBase,
		baseVault:  baseVault,
		quoteVault: quoteVault,
		baseMint:   mint,
	}, nil
}

func (b *Bonk) BuildBuyInstruction(payer, mint solana.PublicKey, _ *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	a, err := b.accounts(payer, mint, tokenAccount)
	if err != nil {
		return nil, err
	}
	return swapInstruction(true, a, swap.SolAmount, swap.TokenAmount), nil
}

func (b *Bonk) BuildSellInstruction(payer, mint solana.PublicKey, customATA, _ *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	a, err := b.accounts(payer, mint, ata)
	if err != nil {
		return nil, err
	}
	return swapInstruction(false, a, swap.TokenAmount, swap.SolAmount), nil
}
