// Package client assembles the ledger, the relay runtimes and every venue into
// one TradingClient.
package client

import (
	"context"
	"slices"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/dex/boopfun"
	"github.com/kerokon/solana-trading-sdk/internal/dex/meteora"
	"github.com/kerokon/solana-trading-sdk/internal/dex/moonit"
	"github.com/kerokon/solana-trading-sdk/internal/dex/pump"
	"github.com/kerokon/solana-trading-sdk/internal/dex/raydium"
	"github.com/kerokon/solana-trading-sdk/internal/endpoint"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type Config struct {
	RPCURL      string
	SWQoS       []swqos.Config
	SendTimeout time.Duration
	TxVersion   global.TxVersion
}

type Option func(*options)

type options struct {
	ledger   ledger.Ledger
	runtimes []*swqos.Runtime
	build    []swqos.BuildOption
	buyATA   *dex.CreateATA
}

// WithLedger replaces the RPC ledger built from Config.RPCURL.
func WithLedger(l ledger.Ledger) Option {
	return func(o *options) { o.ledger = l }
}

// WithRuntimes replaces the runtimes built from Config.SWQoS.
func WithRuntimes(rts []*swqos.Runtime) Option {
	return func(o *options) { o.runtimes = rts }
}

func WithBuildOptions(opts ...swqos.BuildOption) Option {
	return func(o *options) { o.build = append(o.build, opts...) }
}

func WithBuyATA(mode dex.CreateATA) Option {
	return func(o *options) { o.buyATA = &mode }
}

type TradingClient struct {
	ledger   ledger.Ledger
	endpoint *endpoint.Endpoint
	version  global.TxVersion
	venues   map[dex.VenueName]dex.Venue
	traders  map[dex.VenueName]*dex.Trader
}

func New(cfg Config, opts ...Option) (*TradingClient, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.ledger == nil {
		if cfg.RPCURL == "" {
			return nil, xerr.ErrInvalidArgument.Withf("no rpc url configured")
		}
		o.ledger = ledger.NewRPC(cfg.RPCURL)
	}
	if o.runtimes == nil {
		rts, err := swqos.BuildAll(cfg.SWQoS, o.build...)
		if err != nil {
			return nil, err
		}
		o.runtimes = rts
	}

	var epOpts []endpoint.Option
	if cfg.SendTimeout > 0 {
		epOpts = append(epOpts, endpoint.WithSendTimeout(cfg.SendTimeout))
	}
	c := &TradingClient{
		ledger:   o.ledger,
		endpoint: endpoint.New(o.ledger, o.runtimes, epOpts...),
		version:  cfg.TxVersion,
		venues:   make(map[dex.VenueName]dex.Venue),
		traders:  make(map[dex.VenueName]*dex.Trader),
	}

	traderOpts := []dex.TraderOption{dex.WithTxVersion(cfg.TxVersion)}
	if o.buyATA != nil {
		traderOpts = append(traderOpts, dex.WithBuyATA(*o.buyATA))
	}
	for _, v := range []dex.Venue{
		pump.NewPumpfun(o.ledger),
		pump.NewPumpSwap(o.ledger),
		meteora.NewDBC(o.ledger),
		raydium.NewBonk(o.ledger),
		boopfun.New(o.ledger),
		moonit.New(o.ledger),
	} {
		c.venues[v.Name()] = v
		c.traders[v.Name()] = dex.NewTrader(v, c.endpoint, traderOpts...)
	}
	logx.Infof("🔧 trading client ready: %d relay runtimes, %d venues", len(o.runtimes), len(c.venues))
	return c, nil
}

// Initialize loads the on-chain state of every venue concurrently.
func (c *TradingClient) Initialize(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range c.venues {
		g.Go(func() error {
			return v.Initialize(gctx)
		})
	}
	return g.Wait()
}

func (c *TradingClient) Ledger() ledger.Ledger { return c.ledger }

func (c *TradingClient) Endpoint() *endpoint.Endpoint { return c.endpoint }

// Venues lists the registered venue names in sorted order.
func (c *TradingClient) Venues() []dex.VenueName {
	names := make([]dex.VenueName, 0, len(c.venues))
	for name := range c.venues {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *TradingClient) Trader(name dex.VenueName) (*dex.Trader, error) {
	t, ok := c.traders[name]
	if !ok {
		return nil, xerr.ErrInvalidArgument.Withf("unknown venue %q", name)
	}
	return t, nil
}

// Nonce reads a durable nonce account for use in a buy or sell request.
func (c *TradingClient) Nonce(ctx context.Context, account solana.PublicKey) (*global.Nonce, error) {
	n, err := c.ledger.GetNonce(ctx, account)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type TransferOptions struct {
	Memo  string
	Nonce *solana.PublicKey
	Fee   *global.PriorityFee
	Tip   uint64
	// CreateATA adds an idempotent create of the recipient's token account.
	// Token transfers only.
	CreateATA bool
}

// Transfer sends lamports from payer to to through every relay, priced with
// the buy fee and tip of each relay.
func (c *TradingClient) Transfer(ctx context.Context, payer solana.PrivateKey, to solana.PublicKey, amount uint64,
	opts TransferOptions) ([]solana.Signature, error) {
	if amount == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("transfer amount is zero")
	}
	from := payer.PublicKey()
	instrs := []solana.Instruction{system.NewTransferInstruction(amount, from, to).Build()}

	logx.WithContext(ctx).Infof("💸 transfer %d lamports %s -> %s", amount, from, to)
	return c.broadcast(ctx, payer, instrs, opts)
}

// TransferToken moves raw token units of mint from the payer's associated
// token account to the recipient's.
func (c *TradingClient) TransferToken(ctx context.Context, payer solana.PrivateKey, to, mint solana.PublicKey, amount uint64,
	opts TransferOptions) ([]solana.Signature, error) {
	if amount == 0 {
		return nil, xerr.ErrInvalidArgument.Withf("transfer amount is zero")
	}
	from := payer.PublicKey()
	source := global.AssociatedTokenAddress(from, mint)
	dest := global.AssociatedTokenAddress(to, mint)

	var instrs []solana.Instruction
	if opts.CreateATA {
		instrs = append(instrs, global.CreateATAIdempotentInstruction(from, to, mint, global.TokenProgram))
	}
	instrs = append(instrs, token.NewTransferInstruction(amount, source, dest, from, []solana.PublicKey{}).Build())

	logx.WithContext(ctx).Infof("💸 transfer %d of %s %s -> %s", amount, mint, from, to)
	return c.broadcast(ctx, payer, instrs, opts)
}

// broadcast appends the memo and sends instrs against the nonce, or the latest
// blockhash when none is set.
func (c *TradingClient) broadcast(ctx context.Context, payer solana.PrivateKey, instrs []solana.Instruction,
	opts TransferOptions) ([]solana.Signature, error) {
	if opts.Memo != "" {
		instrs = append(instrs, memo.NewMemoInstruction([]byte(opts.Memo), payer.PublicKey()).Build())
	}

	bo := endpoint.BroadcastOptions{AdditionalFee: opts.Fee, AdditionalTip: opts.Tip, Version: c.version}
	if opts.Nonce != nil {
		n, err := c.Nonce(ctx, *opts.Nonce)
		if err != nil {
			return nil, err
		}
		bo.Nonce = n
	} else {
		blockhash, err := c.endpoint.GetLatestBlockhash(ctx)
		if err != nil {
			return nil, err
		}
		bo.Blockhashes = []solana.Hash{blockhash}
	}
	return c.endpoint.BuildAndBroadcast(ctx, global.OpBuy, payer, instrs, bo)
}
