package pump

import (
	"bytes"
	"context"
	"sync/atomic"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/amm"
	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var (
	PumpfunProgram       = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PumpfunGlobalAccount = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	PumpfunEventAuth     = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	PumpfunFeeRecipient  = solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV")
)

const (
	InitialVirtualTokenReserves uint64 = 1_073_000_000_000_000
	InitialVirtualSolReserves   uint64 = 30_000_000_000

	createMethod uint64 = 8576854823835016728
)

var (
	seedGlobal                  = []byte("global")
	seedMintAuthority           = []byte("mint-authority")
	seedBondingCurve            = []byte("bonding-curve")
	seedCreatorVault            = []byte("creator-vault")
	seedGlobalVolumeAccumulator = []byte("global_volume_accumulator")
	seedUserVolumeAccumulator   = []byte("user_volume_accumulator")
	seedMetadata                = []byte("metadata")
)

type GlobalAccount struct {
	Discriminator               uint64
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

type BondingCurveAccount struct {
	Discriminator        uint64
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

type createArgs struct {
	Discriminator uint64
	Name          string
	Symbol        string
	URI           string
	Creator       solana.PublicKey
}

// Pumpfun trades the pump.fun bonding curves. The quote side is native SOL.
type Pumpfun struct {
	ledger ledger.Ledger
	global atomic.Pointer[GlobalAccount]
}

func NewPumpfun(l ledger.Ledger) *Pumpfun {
	return &Pumpfun{ledger: l}
}

func (p *Pumpfun) Name() dex.VenueName { return dex.Pumpfun }

func (p *Pumpfun) UseWSOL() bool { return false }

// Initialize loads the program's global account. It may succeed only once.
func (p *Pumpfun) Initialize(ctx context.Context) error {
	acc, err := p.ledger.GetAccount(ctx, PumpfunGlobalAccount)
	if err != nil {
		return err
	}
	var g GlobalAccount
	if err = decode(acc.Data, &g); err != nil {
		return xerr.Ledger(err, "decode pumpfun global account")
	}
	if !p.global.CompareAndSwap(nil, &g) {
		return xerr.ErrInvalidArgument.Withf("pumpfun already initialized")
	}
	logx.Infof("✅ pumpfun initialized, fee %d bps", g.FeeBasisPoints)
	return nil
}

func (p *Pumpfun) Initialized() error {
	if p.global.Load() == nil {
		return xerr.ErrNotInitialized.Withf("pumpfun not initialized")
	}
	return nil
}

func (p *Pumpfun) Global() *GlobalAccount { return p.global.Load() }

func BondingCurvePDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(PumpfunProgram, seedBondingCurve, mint[:])
}

func CreatorVaultPDA(creator solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(PumpfunProgram, seedCreatorVault, creator[:])
}

func GlobalVolumeAccumulatorPDA() (solana.PublicKey, error) {
	return findPDA(PumpfunProgram, seedGlobalVolumeAccumulator)
}

func UserVolumeAccumulatorPDA(user solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(PumpfunProgram, seedUserVolumeAccumulator, user[:])
}

func MetadataPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(global.MetadataProgram, seedMetadata, global.MetadataProgram[:], mint[:])
}

func (p *Pumpfun) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	curve, err := BondingCurvePDA(mint)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	acc, err := p.ledger.GetAccount(ctx, curve)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	if len(acc.Data) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("bonding curve %s not found", curve)
	}
	var bc BondingCurveAccount
	if err = decode(acc.Data, &bc); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode bonding curve %s", curve)
	}
	vault, err := CreatorVaultPDA(bc.Creator)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	creator := bc.Creator
	return dex.PoolInfo{
		Pool:          curve,
		Creator:       &creator,
		CreatorVault:  &vault,
		TokenReserves: bc.VirtualTokenReserves,
		SolReserves:   bc.VirtualSolReserves,
	}, nil
}

// tradeAccounts lays out the accounts buy and sell share. The two differ only
// in where the creator vault sits relative to the token program.
func (p *Pumpfun) tradeAccounts(payer, mint, tokenAccount, creatorVault solana.PublicKey, sell bool) (solana.AccountMetaSlice, error) {
	curve, err := BondingCurvePDA(mint)
	if err != nil {
		return nil, err
	}
	globalVolume, err := GlobalVolumeAccumulatorPDA()
	if err != nil {
		return nil, err
	}
	userVolume, err := UserVolumeAccumulatorPDA(payer)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(PumpfunGlobalAccount),
		solana.Meta(PumpfunFeeRecipient).WRITE(),
		solana.Meta(mint),
		solana.Meta(curve).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(curve, mint)).WRITE(),
		solana.Meta(tokenAccount).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(global.SystemProgram),
	}
	if sell {
		accounts = append(accounts, solana.Meta(creatorVault).WRITE(), solana.Meta(global.TokenProgram))
	} else {
		accounts = append(accounts, solana.Meta(global.TokenProgram), solana.Meta(creatorVault).WRITE())
	}
	return append(accounts,
		solana.Meta(PumpfunEventAuth),
		solana.Meta(PumpfunProgram),
		solana.Meta(globalVolume).WRITE(),
		solana.Meta(userVolume).WRITE(),
	), nil
}

func (p *Pumpfun) BuildBuyInstruction(payer, mint solana.PublicKey, creatorVault *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	if err := p.Initialized(); err != nil {
		return nil, err
	}
	if creatorVault == nil {
		return nil, xerr.ErrInstructionBuild.Withf("pumpfun buy needs the creator vault")
	}
	accounts, err := p.tradeAccounts(payer, mint, tokenAccount, *creatorVault, false)
	if err != nil {
		return nil, err
	}
	return newSwapInstruction(PumpfunProgram, BuyMethod, swap, accounts), nil
}

func (p *Pumpfun) BuildSellInstruction(payer, mint solana.PublicKey, customATA, creatorVault *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	if err := p.Initialized(); err != nil {
		return nil, err
	}
	if creatorVault == nil {
		return nil, xerr.ErrInstructionBuild.Withf("pumpfun sell needs the creator vault")
	}
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	accounts, err := p.tradeAccounts(payer, mint, ata, *creatorVault, true)
	if err != nil {
		return nil, err
	}
	return newSwapInstruction(PumpfunProgram, SellMethod, swap, accounts), nil
}

// BuildCreateInstructions mints a new curve and, when params.BuySolAmount is
// set, buys into it at the initial reserves.
func (p *Pumpfun) BuildCreateInstructions(payer solana.PublicKey, params dex.CreateParams) ([]solana.Instruction, error) {
	mint := params.Mint.PublicKey()
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(&createArgs{
		Discriminator: createMethod,
		Name:          params.Name,
		Symbol:        params.Symbol,
		URI:           params.URI,
		Creator:       payer,
	}); err != nil {
		return nil, xerr.Build(err, "encode pumpfun create")
	}

	curve, err := BondingCurvePDA(mint)
	if err != nil {
		return nil, err
	}
	mintAuthority, err := findPDA(PumpfunProgram, seedMintAuthority)
	if err != nil {
		return nil, err
	}
	globalPDA, err := findPDA(PumpfunProgram, seedGlobal)
	if err != nil {
		return nil, err
	}
	metadata, err := MetadataPDA(mint)
	if err != nil {
		return nil, err
	}

	instrs := []solana.Instruction{solana.NewInstruction(PumpfunProgram, solana.AccountMetaSlice{
		solana.Meta(mint).WRITE().SIGNER(),
		solana.Meta(mintAuthority).WRITE(),
		solana.Meta(curve).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(curve, mint)).WRITE(),
		solana.Meta(globalPDA),
		solana.Meta(global.MetadataProgram),
		solana.Meta(metadata).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(global.SystemProgram),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.AssociatedTokenProgram),
		solana.Meta(global.RentSysvar),
		solana.Meta(PumpfunEventAuth),
		solana.Meta(PumpfunProgram),
		solana.Meta(PumpfunProgram),
		solana.Meta(PumpfunProgram),
	}, buf.Bytes())}

	if params.BuySolAmount == nil {
		return instrs, nil
	}

	var slippage uint64
	if params.SlippageBps != nil {
		slippage = *params.SlippageBps
	}
	tokenOut, err := amm.BuyTokenOut(InitialVirtualSolReserves, InitialVirtualTokenReserves, *params.BuySolAmount)
	if err != nil {
		return nil, errors.WithMessage(err, "price initial buy")
	}
	vault, err := CreatorVaultPDA(payer)
	if err != nil {
		return nil, err
	}
	buy, err := p.BuildBuyInstruction(payer, mint, &vault, global.AssociatedTokenAddress(payer, mint), dex.SwapInfo{
		TokenAmount: tokenOut,
		SolAmount:   amm.WithSlippageBuy(*params.BuySolAmount, slippage),
	})
	if err != nil {
		return nil, err
	}
	return append(instrs, global.CreateATAInstruction(payer, payer, mint), buy), nil
}
