// Package boopfun trades the boop.fun bonding curves.
package boopfun

import (
	"context"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var Program = solana.MustPublicKeyFromBase58("boop8hVGQGqehUK2iVEMEnMrL5RbjywRzHKBmBE7ry4")

var (
	buyDisc  = []byte{138, 127, 14, 91, 38, 87, 115, 105}
	sellDisc = []byte{109, 61, 40, 187, 230, 176, 135, 174}
)

var (
	seedConfig               = []byte("config")
	seedVaultAuthority       = []byte("vault_authority")
	seedBondingCurve         = []byte("bonding_curve")
	seedBondingCurveVault    = []byte("bonding_curve_vault")
	seedBondingCurveSolVault = []byte("bonding_curve_sol_vault")
	seedTradingFeesVault     = []byte("trading_fees_vault")
)

// BondingCurve is the head of the curve account; the rest is not read.
type BondingCurve struct {
	Discriminator        [8]byte
	Creator              solana.PublicKey
	Mint                 solana.PublicKey
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

// Boopfun has no global state to load and pays no creator vault. Buys spend
// exactly the sol amount and sells exactly the token amount.
type Boopfun struct {
	ledger ledger.Ledger
}

func New(l ledger.Ledger) *Boopfun {
	return &Boopfun{ledger: l}
}

func (b *Boopfun) Name() dex.VenueName { return dex.Boopfun }

func (b *Boopfun) UseWSOL() bool { return false }

func (b *Boopfun) Initialize(context.Context) error { return nil }

func (b *Boopfun) Initialized() error { return nil }

func find(seeds ...[]byte) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(seeds, Program)
	if err != nil {
		return solana.PublicKey{}, xerr.Build(err, "derive boopfun address")
	}
	return pda, nil
}

func ConfigPDA() (solana.PublicKey, error) { return find(seedConfig) }

func VaultAuthorityPDA() (solana.PublicKey, error) { return find(seedVaultAuthority) }

func BondingCurvePDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return find(seedBondingCurve, mint[:])
}

func (b *Boopfun) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	curve, err := BondingCurvePDA(mint)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	acc, err := b.ledger.GetAccount(ctx, curve)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	if len(acc.Data) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("boopfun bonding curve %s not found", curve)
	}
	var bc BondingCurve
	if err = bin.NewBorshDecoder(acc.Data).Decode(&bc); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode boopfun bonding curve %s", curve)
	}
	creator := bc.Creator
	return dex.PoolInfo{
		Pool:          curve,
		Creator:       &creator,
		TokenReserves: bc.VirtualTokenReserves,
		SolReserves:   bc.VirtualSolReserves,
	}, nil
}

type curveAccounts struct {
	curve, tradingFees, vault, solVault, config solana.PublicKey
}

func accountsFor(mint solana.PublicKey) (curveAccounts, error) {
	var (
		a   curveAccounts
		err error
	)
	if a.curve, err = BondingCurvePDA(mint); err != nil {
		return a, err
	}
	if a.tradingFees, err = find(seedTradingFeesVault, mint[:]); err != nil {
		return a, err
	}
	if a.vault, err = find(seedBondingCurveVault, mint[:]); err != nil {
		return a, err
	}
	if a.solVault, err = find(seedBondingCurveSolVault, mint[:]); err != nil {
		return a, err
	}
	a.config, err = ConfigPDA()
	return a, err
}

func instructionData(disc []byte, amountIn, minOut uint64) []byte {
	buf := make([]byte, 8+8+8)
	copy(buf, disc)
	binary.LittleEndian.PutUint64(buf[8:], amountIn)
	binary.LittleEndian.PutUint64(buf[16:], minOut)
	return buf
}

// BuildBuyInstruction spends swap.SolAmount for at least swap.TokenAmount.
func (b *Boopfun) BuildBuyInstruction(payer, mint solana.PublicKey, _ *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	a, err := accountsFor(mint)
	if err != nil {
		return nil, err
	}
	authority, err := VaultAuthorityPDA()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(Program, solana.AccountMetaSlice{
		solana.Meta(mint),
		solana.Meta(a.curve).WRITE(),
		solana.Meta(a.tradingFees).WRITE(),
		solana.Meta(a.vault).WRITE(),
		solana.Meta(a.solVault).WRITE(),
		solana.Meta(tokenAccount).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(a.config),
		solana.Meta(authority),
		solana.Meta(global.WSOL),
		solana.Meta(global.SystemProgram),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.AssociatedTokenProgram),
	}, instructionData(buyDisc, swap.SolAmount, swap.TokenAmount)), nil
}

// BuildSellInstruction sells swap.TokenAmount for at least swap.SolAmount.
// The payer signs both as seller and as recipient.
func (b *Boopfun) BuildSellInstruction(payer, mint solana.PublicKey, customATA, _ *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	a, err := accountsFor(mint)
	if err != nil {
		return nil, err
	}
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	return solana.NewInstruction(Program, solana.AccountMetaSlice{
		solana.Meta(mint),
		solana.Meta(a.curve).WRITE(),
		solana.Meta(a.tradingFees).WRITE(),
		solana.Meta(a.vault).WRITE(),
		solana.Meta(a.solVault).WRITE(),
		solana.Meta(ata).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(a.config),
		solana.Meta(global.SystemProgram),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.AssociatedTokenProgram),
	}, instructionData(sellDisc, swap.TokenAmount, swap.SolAmount)), nil
}
