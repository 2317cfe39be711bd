package pump

import (
	"context"
	"encoding/binary"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var (
	PumpSwapProgram      = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	PumpSwapGlobalConfig = solana.MustPublicKeyFromBase58("ADyA8hdefvWN2dbGGWFotbzWxrAvLW83WG6QCVXvJKqw")
	PumpSwapEventAuth    = solana.MustPublicKeyFromBase58("GS4CU59F31iL7aR2Q8zVS8DRrcRnXX1yjQ66TqNVQnaR")
)

var (
	seedPool          = []byte("pool")
	seedPoolAuthority = []byte("pool-authority")
	seedAmmCreator    = []byte("creator_vault")
)

type GlobalConfig struct {
	Discriminator                uint64
	Admin                        solana.PublicKey
	LpFeeBasisPoints             uint64
	ProtocolFeeBasisPoints       uint64
	DisableFlags                 uint8
	ProtocolFeeRecipients        [8]solana.PublicKey
	CoinCreatorFeeBasisPoints    uint64
	AdminSetCoinCreatorAuthority solana.PublicKey
}

type PoolAccount struct {
	Discriminator         uint64
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LpMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LpSupply              uint64
	CoinCreator           solana.PublicKey
}

// PumpSwap trades graduated pump.fun tokens on the pump AMM. The quote side is WSOL.
type PumpSwap struct {
	ledger ledger.Ledger
	config atomic.Pointer[GlobalConfig]

	mu  sync.Mutex
	rnd *rand.Rand
}

type PumpSwapOption func(*PumpSwap)

// WithFeeRecipientRand makes protocol fee recipient selection reproducible.
func WithFeeRecipientRand(rnd *rand.Rand) PumpSwapOption {
	return func(p *PumpSwap) { p.rnd = rnd }
}

func NewPumpSwap(l ledger.Ledger, opts ...PumpSwapOption) *PumpSwap {
	p := &PumpSwap{ledger: l}
	for _, opt := range opts {
		opt(p)
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p
}

func (p *PumpSwap) Name() dex.VenueName { return dex.PumpSwap }

func (p *PumpSwap) UseWSOL() bool { return true }

func (p *PumpSwap) Initialize(ctx context.Context) error {
	acc, err := p.ledger.GetAccount(ctx, PumpSwapGlobalConfig)
	if err != nil {
		return err
	}
	var cfg GlobalConfig
	if err = decode(acc.Data, &cfg); err != nil {
		return xerr.Ledger(err, "decode pumpswap global config")
	}
	if !p.config.CompareAndSwap(nil, &cfg) {
		return xerr.ErrInvalidArgument.Withf("pumpswap already initialized")
	}
	logx.Infof("✅ pumpswap initialized, %d fee recipients", len(p.recipients()))
	return nil
}

func (p *PumpSwap) Initialized() error {
	if p.config.Load() == nil {
		return xerr.ErrNotInitialized.Withf("pumpswap not initialized")
	}
	return nil
}

func (p *PumpSwap) recipients() []solana.PublicKey {
	cfg := p.config.Load()
	if cfg == nil {
		return nil
	}
	out := make([]solana.PublicKey, 0, len(cfg.ProtocolFeeRecipients))
	for _, r := range cfg.ProtocolFeeRecipients {
		if !r.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

func (p *PumpSwap) feeRecipient() (solana.PublicKey, error) {
	recipients := p.recipients()
	if len(recipients) == 0 {
		return solana.PublicKey{}, xerr.ErrInstructionBuild.Withf("pumpswap global config has no fee recipients")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return recipients[p.rnd.Intn(len(recipients))], nil
}

func PoolAuthorityPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(PumpfunProgram, seedPoolAuthority, mint[:])
}

// PoolPDA is the canonical pool a graduated pump.fun token migrates into.
func PoolPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	authority, err := PoolAuthorityPDA(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	index := make([]byte, 2)
	binary.LittleEndian.PutUint16(index, 0)
	return findPDA(PumpSwapProgram, seedPool, index, authority[:], mint[:], global.WSOL[:])
}

func AmmCreatorVaultPDA(coinCreator solana.PublicKey) (solana.PublicKey, error) {
	return findPDA(PumpSwapProgram, seedAmmCreator, coinCreator[:])
}

// GetPool reads the pool account and both vault balances concurrently.
func (p *PumpSwap) GetPool(ctx context.Context, mint solana.PublicKey) (dex.PoolInfo, error) {
	pool, err := PoolPDA(mint)
	if err != nil {
		return dex.PoolInfo{}, err
	}

	var (
		acc          ledger.Account
		base, quote  uint64
		g, gctx      = errgroup.WithContext(ctx)
		baseAccount  = global.AssociatedTokenAddress(pool, mint)
		quoteAccount = global.AssociatedTokenAddress(pool, global.WSOL)
	)
	g.Go(func() (err error) {
		acc, err = p.ledger.GetAccount(gctx, pool)
		return err
	})
	g.Go(func() (err error) {
		base, err = p.ledger.GetTokenAccountBalance(gctx, baseAccount)
		return err
	})
	g.Go(func() (err error) {
		quote, err = p.ledger.GetTokenAccountBalance(gctx, quoteAccount)
		return err
	})
	if err = g.Wait(); err != nil {
		return dex.PoolInfo{}, err
	}
	if len(acc.Data) == 0 {
		return dex.PoolInfo{}, xerr.ErrPoolUninitialized.Withf("pumpswap pool for %s not found", mint)
	}

	var pa PoolAccount
	if err = decode(acc.Data, &pa); err != nil {
		return dex.PoolInfo{}, xerr.Ledger(err, "decode pumpswap pool %s", pool)
	}
	vault, err := AmmCreatorVaultPDA(pa.CoinCreator)
	if err != nil {
		return dex.PoolInfo{}, err
	}
	creator := pa.CoinCreator
	return dex.PoolInfo{
		Pool:          pool,
		Creator:       &creator,
		CreatorVault:  &vault,
		TokenReserves: base,
		SolReserves:   quote,
	}, nil
}

func (p *PumpSwap) tradeAccounts(payer, mint, userBase, creatorVault solana.PublicKey) (solana.AccountMetaSlice, error) {
	pool, err := PoolPDA(mint)
	if err != nil {
		return nil, err
	}
	recipient, err := p.feeRecipient()
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(pool),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(PumpSwapGlobalConfig),
		solana.Meta(mint),
		solana.Meta(global.WSOL),
		solana.Meta(userBase).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(payer, global.WSOL)).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(pool, mint)).WRITE(),
		solana.Meta(global.AssociatedTokenAddress(pool, global.WSOL)).WRITE(),
		solana.Meta(recipient),
		solana.Meta(global.AssociatedTokenAddress(recipient, global.WSOL)).WRITE(),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.TokenProgram),
		solana.Meta(global.SystemProgram),
		solana.Meta(global.AssociatedTokenProgram),
		solana.Meta(PumpSwapEventAuth),
		solana.Meta(PumpSwapProgram),
		solana.Meta(global.AssociatedTokenAddress(creatorVault, global.WSOL)).WRITE(),
		solana.Meta(creatorVault),
	}, nil
}

func (p *PumpSwap) BuildBuyInstruction(payer, mint solana.PublicKey, creatorVault *solana.PublicKey, tokenAccount solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	if err := p.Initialized(); err != nil {
		return nil, err
	}
	if creatorVault == nil {
		return nil, xerr.ErrInstructionBuild.Withf("pumpswap buy needs the creator vault")
	}
	accounts, err := p.tradeAccounts(payer, mint, tokenAccount, *creatorVault)
	if err != nil {
		return nil, err
	}
	return newSwapInstruction(PumpSwapProgram, BuyMethod, swap, accounts), nil
}

// BuildSellInstruction sells base for quote. The program's sell takes base in
// and a minimum quote out, which is the same token/sol ordering as buy.
func (p *PumpSwap) BuildSellInstruction(payer, mint solana.PublicKey, customATA, creatorVault *solana.PublicKey,
	swap dex.SwapInfo) (solana.Instruction, error) {
	if err := p.Initialized(); err != nil {
		return nil, err
	}
	if creatorVault == nil {
		return nil, xerr.ErrInstructionBuild.Withf("pumpswap sell needs the creator vault")
	}
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	accounts, err := p.tradeAccounts(payer, mint, ata, *creatorVault)
	if err != nil {
		return nil, err
	}
	return newSwapInstruction(PumpSwapProgram, SellMethod, swap, accounts), nil
}
