// Package moonit trades the Moonit bonding curves.
package moonit

import (
	"bytes"
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var (
	Program  = solana.MustPublicKeyFromBase58("MoonCVVNZFSYkqNXP6bxHLPL6QQJiMagDL3qcqUQTrG")
	Config   = solana.MustPublicKeyFromBase58("36Eru7v11oU5Pfrojyn5oY3nETA1a1iqsw2WUu6afkM9")
	DexFee   = solana.MustPublicKeyFromBase58("3udvfL24waJcLhskRAsStNMoNUvtyXdxrWQz4hgi953N")
	HelioFee = solana.MustPublicKeyFromBase58("5K5RtTWzzLp4P8Npi84ocf7F1vBsAu29N1irG4iiUnzt")
)

// InitialVirtualSolReserves is added to the curve's lamports to price it.
const InitialVirtualSolReserves uint64 = 30_000_000_000

const (
	buyMethod  uint64 = 16927863322537952870
	sellMethod uint64 = 12502976635542562355
)

const (
	FixedSideExactIn uint8 = iota
	FixedSideExactOut
)

var seedCurve = []byte("token")

// CurveAccount is the head of the curve account; the rest is not read.
type CurveAccount struct {
	Discriminator [8]byte
	TotalSupply   uint64
	CurveAmount   uint64
	Mint          solana.PublicKey
}

// tradeParams is shared by buy and sell. Slippage is enforced through the
// amounts, so the program side check stays zero.
type tradeParams struct {
	Discriminator    uint64
	TokenAmount      uint64
	CollateralAmount uint64
	FixedSide        uint8
	SlippageBps      uint64
}

// Moonit holds no global state. The curve's collateral is its own lamport
// balance.
type Moonit struct {
	ledger ledger.Ledger
}

func New(l ledger.Ledger) *Moonit {
	return &Moonit{ledger: l}
}

func (m *Moonit) Name() dex.VenueName { return dex.Moonit }

func (m *Moonit) UseWSOL() bool { return false }

func (m *Moonit) Initialize(context.Context) error { return nil }

func (m *Moonit) Initialized() error { return nil }

func CurvePDA(mint solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{seedCurve, mint[:]}, Program)
	if err != nil {
		return solana.PublicKey{}, xerr.Build(err, "derive moonit curve")
	}
	return pda, nil
}

func (m *Moonit) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	curve, err := CurvePDA(mint)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	acc, err := m.ledger.GetAccount(ctx, curve)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	if len(acc.Data) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("moonit curve %s not found", curve)
	}
	var ca CurveAccount
	if err = bin.NewBorshDecoder(acc.Data).Decode(&ca); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode moonit curve %s", curve)
	}
	if acc.Lamports > ^uint64(0)-InitialVirtualSolReserves {
		return dex.PoolInfo{}, xerr.ErrLedgerQuery.Withf("moonit curve %s lamports %d out of range", curve, acc.Lamports)
	}
	return dex.PoolInfo{
		Pool:          curve,
		TokenReserves: ca.CurveAmount,
		SolReserves:   InitialVirtualSolReserves + acc.Lamports,
	}, nil
}

func (m *Moonit) trade(method uint64, payer, mint, tokenAccount solana.PublicKey, swap dex.SwapInfo) (solana.Instruction, error) {
	curve, err := CurvePDA(mint)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err = bin.NewBorshEncoder(buf).Encode(&tradeParams{
		Discriminator:    method,
		TokenAmount:      swap.TokenAmount,
		CollateralAmount: swap.SolAmount,
		FixedSide:        FixedSideExactIn,
	}); err != nil {
		return nil, xerr.Build(err, "encode moonit trade")
	}
	return solana.NewInstruction(Program, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(tokenAccount).WRITE(),
		solana.Meta(curve).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(curve, mint)).WRITE(),
		solana.Meta(DexFee).WRITE(),
		solana.Meta(HelioFee).WRITE(),
		solana.Meta(mint),
		solana.Meta(Config),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.AssociatedTokenProgram),
		solana.Meta(global.SystemProgram),
	}, buf.Bytes()), nil
}

func (m *Moonit) BuildBuyInstruction(payer, mint solana.PublicKey, _ *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	return m.trade(buyMethod, payer, mint, tokenAccount, swap)
}

func (m *Moonit) BuildSellInstruction(payer, mint solana.PublicKey, customATA, _ *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	return m.trade(sellMethod, payer, mint, ata, swap)
}
