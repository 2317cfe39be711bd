// Package dex holds the trading algorithm shared by every venue and the
// capability a venue has to provide to take part in it.
package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type VenueName string

const (
	Pumpfun     VenueName = "pumpfun"
	PumpSwap    VenueName = "pumpswap"
	MeteoraDBC  VenueName = "meteora-dbc"
	RaydiumBonk VenueName = "raydium-bonk"
	Boopfun     VenueName = "boopfun"
	Moonit      VenueName = "moonit"
)

// SwapInfo is the two legs of one swap instruction. Which leg is the bound
// depends on direction: a buy caps SolAmount, a sell floors it.
type SwapInfo struct {
	TokenAmount uint64
	SolAmount   uint64
}

// PoolInfo is a snapshot of a pool taken for a single call.
type PoolInfo struct {
	Pool          solana.PublicKey
	Creator       *solana.PublicKey
	CreatorVault  *solana.PublicKey
	Config        *solana.PublicKey
	TokenReserves uint64
	SolReserves   uint64
}

// Extra is the venue specific account the instruction builders need: the
// creator vault where the venue pays creators, the pool config otherwise.
func (p PoolInfo) Extra() *solana.PublicKey {
	if p.CreatorVault != nil {
		return p.CreatorVault
	}
	return p.Config
}

// TokenAmount is either an explicit raw amount or the owner's entire balance.
type TokenAmount struct {
	amount uint64
	all    bool
}

func Amount(n uint64) TokenAmount { return TokenAmount{amount: n} }

func EntireBalance() TokenAmount { return TokenAmount{all: true} }

func (t TokenAmount) IsAll() bool { return t.all }

// Resolve returns the explicit amount, or reads the balance of the owner's
// token account for mint.
func (t TokenAmount) Resolve(ctx context.Context, l ledger.Ledger, owner, mint solana.PublicKey) (uint64, error) {
	if !t.all {
		return t.amount, nil
	}
	return l.GetTokenAccountBalance(ctx, global.AssociatedTokenAddress(owner, mint))
}

type ATAMode int

const (
	ATACreate ATAMode = iota
	ATAIdempotent
	ATANone
	ATACreateWithSeed
)

// CreateATA decides how the buyer's token account is provided.
type CreateATA struct {
	Mode ATAMode
	Seed string
}

var (
	CreateATAAlways     = CreateATA{Mode: ATACreate}
	CreateATAIdempotent = CreateATA{Mode: ATAIdempotent}
	CreateATANone       = CreateATA{Mode: ATANone}
)

func CreateWithSeed(seed string) CreateATA {
	return CreateATA{Mode: ATACreateWithSeed, Seed: seed}
}

// Instructions returns the token account the buy should credit together with
// the instructions that bring it into existence.
func (c CreateATA) Instructions(payer, mint solana.PublicKey) (solana.PublicKey, []solana.Instruction, error) {
	ata := global.AssociatedTokenAddress(payer, mint)
	switch c.Mode {
	case ATACreate:
		return ata, []solana.Instruction{global.CreateATAInstruction(payer, payer, mint)}, nil
	case ATAIdempotent:
		return ata, []solana.Instruction{global.CreateATAIdempotentInstruction(payer, payer, mint, global.TokenProgram)}, nil
	case ATANone:
		return ata, nil, nil
	case ATACreateWithSeed:
		if c.Seed == "" {
			return solana.PublicKey{}, nil, xerr.ErrInvalidArgument.Withf("seeded token account needs a seed")
		}
		account, instrs, err := global.CreateSeededTokenAccountInstructions(payer, mint, c.Seed)
		if err != nil {
			return solana.PublicKey{}, nil, xerr.Build(err, "seeded token account")
		}
		return account, instrs, nil
	}
	return solana.PublicKey{}, nil, xerr.ErrInvalidArgument.Withf("unknown token account mode %d", c.Mode)
}

type BatchBuyItem struct {
	Payer     solana.PrivateKey
	SolAmount uint64
}

type BatchSellItem struct {
	Payer        solana.PrivateKey
	TokenAmount  uint64
	CustomATA    *solana.PublicKey
	CloseMintATA bool
}

// CreateParams describes a new token. BuySolAmount, when set, buys into the
// fresh curve in the same transaction.
type CreateParams struct {
	Mint         solana.PrivateKey
	Name         string
	Symbol       string
	URI          string
	BuySolAmount *uint64
	SlippageBps  *uint64
}

// Venue is what a market has to provide to be traded by a Trader.
type Venue interface {
	Name() VenueName
	Initialize(ctx context.Context) error
	Initialized() error
	// UseWSOL reports whether the quote side settles in wrapped SOL.
	UseWSOL() bool
	GetPool(ctx context.Context, mint solana.PublicKey) (PoolInfo, error)
	// BuildBuyInstruction credits tokenAccount with at least swap.TokenAmount
	// for at most swap.SolAmount.
	BuildBuyInstruction(payer, mint solana.PublicKey, extra *solana.PublicKey, tokenAccount solana.PublicKey, swap SwapInfo) (solana.Instruction, error)
	// BuildSellInstruction sells swap.TokenAmount from customATA, or the payer's
	// ATA, for at least swap.SolAmount.
	BuildSellInstruction(payer, mint solana.PublicKey, customATA, extra *solana.PublicKey, swap SwapInfo) (solana.Instruction, error)
}

// Creator is implemented by venues that can launch tokens.
type Creator interface {
	BuildCreateInstructions(payer solana.PublicKey, params CreateParams) ([]solana.Instruction, error)
}
