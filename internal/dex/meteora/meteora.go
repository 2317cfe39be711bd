// Package meteora trades Meteora dynamic bonding curve pools quoted in WSOL.
package meteora

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

// BaseMintOffset is where a VirtualPool stores its base mint.
const BaseMintOffset = 136

// VirtualPool is the head of the dbc pool account, up to the reserves.
type VirtualPool struct {
	Discriminator     [8]byte
	VolatilityTracker [64]byte
	Config            solana.PublicKey
	Creator           solana.PublicKey
	BaseMint          solana.PublicKey
	BaseVault         solana.PublicKey
	QuoteVault        solana.PublicKey
	BaseReserve       uint64
	QuoteReserve      uint64
}

type DBC struct {
	ledger ledger.Ledger
}

func NewDBC(l ledger.Ledger) *DBC {
	return &DBC{ledger: l}
}

func (d *DBC) Name() dex.VenueName { return dex.MeteoraDBC }

func (d *DBC) Initialize(context.Context) error { return nil }

func (d *DBC) Initialized() error { return nil }

func (d *DBC) UseWSOL() bool { return true }

// GetPool finds the pool by scanning the program for the base mint. The
// returned Config is the extra account the builders need.
func (d *DBC) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	accounts, err := d.ledger.GetProgramAccounts(ctx, DbcProgram, ledger.Filter{
		Memcmp: &ledger.Memcmp{Offset: BaseMintOffset, Bytes: mint.Bytes()},
	})
	if err != nil {
		return dex.PoolInfo{}, err
	}
	if len(accounts) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("no dbc pool for base mint %s", mint)
	}

	var pool VirtualPool
	if err = bin.NewBorshDecoder(accounts[0].Account.Data).Decode(&pool); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode dbc pool %s", accounts[0].Pubkey)
	}
	config, creator := pool.Config, pool.Creator
	return dex.PoolInfo{
		Pool:          accounts[0].Pubkey,
		Creator:       &creator,
		Config:        &config,
		TokenReserves: pool.BaseReserve,
		SolReserves:   pool.QuoteReserve,
	}, nil
}

func (d *DBC) accounts(payer, mint solana.PublicKey, config *solana.PublicKey) (swapAccounts, error) {
	if config == nil {
		return swapAccounts{}, xerr.ErrInstructionBuild.Withf("dbc swap needs the pool config")
	}
	pool, err := DerivePoolPDA(global.WSOL, mint, *config)
	if err != nil {
		return swapAccounts{}, err
	}
	baseVault, err := DeriveTokenVaultPDA(pool, mint)
	if err != nil {
		return swapAccounts{}, err
	}
	quoteVault, err := DeriveTokenVaultPDA(pool, global.WSOL)
	if err != nil {
		return swapAccounts{}, err
	}
	eventAuthority, err := DeriveEventAuthorityPDA()
	if err != nil {
		return swapAccounts{}, err
	}
	return swapAccounts{
		config:      *config,
		pool:        pool,
		baseVault:   baseVault,
		quoteVault:  quoteVault,
		baseMint:    mint,
		payer:       payer,
		eventAuthor: eventAuthority,
	}, nil
}

// BuildBuyInstruction swaps WSOL in for the base token.
func (d *DBC) BuildBuyInstruction(payer, mint solana.PublicKey, config *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	a, err := d.accounts(payer, mint, config)
	if err != nil {
		return nil, err
	}
	a.input = global.AssociatedTokenAddress(payer, global.WSOL)
	a.output = tokenAccount
	return swapInstruction(a, swap.SolAmount, swap.TokenAmount), nil
}

func (d *DBC) BuildSellInstruction(payer, mint solana.PublicKey, customATA, config *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	a, err := d.accounts(payer, mint, config)
	if err != nil {
		return nil, err
	}
	a.input = global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		a.input = *customATA
	}
	a.output = global.AssociatedTokenAddress(payer, global.WSOL)
	return swapInstruction(a, swap.TokenAmount, swap.SolAmount), nil
}
