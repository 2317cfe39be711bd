// Package swqos turns relay configurations into broadcast runtimes.
package swqos

import (
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/rpcs"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type Kind string

const (
	KindDefault        Kind = "default"
	KindJito           Kind = "jito"
	KindNextBlock      Kind = "nextblock"
	KindBlox           Kind = "blox"
	KindTemporal       Kind = "temporal"
	KindZeroSlot       Kind = "zeroslot"
	KindBlockRazor     Kind = "blockrazor"
	KindBlockRazorGrpc Kind = "blockrazor-grpc"
	KindAstralane      Kind = "astralane"
)

var defaultEndpoints = map[Kind]string{
	KindJito:           "https://mainnet.block-engine.jito.wtf/api/v1",
	KindNextBlock:      "https://ny.nextblock.io",
	KindBlox:           "https://ny.solana.dex.blxrbdn.com",
	KindTemporal:       "http://ewr1.nozomi.temporal.xyz/",
	KindZeroSlot:       "https://ny.0slot.trade",
	KindBlockRazor:     "http://newyork.solana.blockrazor.xyz:443",
	KindBlockRazorGrpc: "newyork.solana-grpc.blockrazor.xyz:80",
	KindAstralane:      "http://ny.gateway.astralane.io/iris",
}

// DefaultEndpoint is the New York region endpoint of a provider, if it has one.
func DefaultEndpoint(k Kind) string { return defaultEndpoints[k] }

// TipAccounts is the provider's published tip-account table.
func (k Kind) TipAccounts() []solana.PublicKey {
	switch k {
	case KindJito:
		return rpcs.JitoTipAccounts()
	case KindNextBlock:
		return rpcs.NextBlockTipAccounts()
	case KindBlox:
		return rpcs.BloxTipAccounts()
	case KindTemporal:
		return rpcs.TemporalTipAccounts()
	case KindZeroSlot:
		return rpcs.ZeroSlotTipAccounts()
	case KindBlockRazor, KindBlockRazorGrpc:
		return rpcs.BlockRazorTipAccounts()
	case KindAstralane:
		return rpcs.AstralaneTipAccounts()
	}
	return nil
}

func (k Kind) Valid() bool {
	if k == KindDefault {
		return true
	}
	_, ok := defaultEndpoints[k]
	return ok
}

// Config is one relay plus its per-operation fee and tip policy. Unset fields are nil.
type Config struct {
	Kind     Kind
	Endpoint string
	// Token is the provider credential: auth token, api key or jito uuid.
	Token string
	// Header is sent with every request by the Default kind.
	Header  rpcs.Header
	Threads int

	BuyTip  *uint64
	BuyFee  *global.PriorityFee
	SellTip *uint64
	SellFee *global.PriorityFee
}

func NewConfig(kind Kind, endpoint, token string) Config {
	if endpoint == "" {
		endpoint = DefaultEndpoint(kind)
	}
	return Config{Kind: kind, Endpoint: endpoint, Token: token, Threads: 1}
}

// WithThreads sets the runtime fan-out; values below one become one.
func (c Config) WithThreads(n int) Config {
	c.Threads = max(n, 1)
	return c
}

func (c Config) WithHeader(key, value string) Config {
	c.Header = rpcs.Header{Key: key, Value: value}
	return c
}

func (c Config) WithBuyConfig(tip *uint64, fee *global.PriorityFee) Config {
	c.BuyTip, c.BuyFee = tip, fee
	return c
}

func (c Config) WithSellConfig(tip *uint64, fee *global.PriorityFee) Config {
	c.SellTip, c.SellFee = tip, fee
	return c
}

func (c Config) WithBuyTip(tip uint64) Config {
	c.BuyTip = &tip
	return c
}

func (c Config) WithBuyFee(fee global.PriorityFee) Config {
	c.BuyFee = &fee
	return c
}

func (c Config) WithSellTip(tip uint64) Config {
	c.SellTip = &tip
	return c
}

func (c Config) WithSellFee(fee global.PriorityFee) Config {
	c.SellFee = &fee
	return c
}

// Runtime binds one client to the config it was built from.
type Runtime struct {
	Config Config
	Client rpcs.Client
}

func (r *Runtime) Name() string { return r.Client.Name() }

// ChunkAccounts splits accounts into min(degree, len) contiguous chunks of
// ceil(len/chunks) accounts. An empty pool yields one empty chunk.
func ChunkAccounts(accounts []solana.PublicKey, degree int) [][]solana.PublicKey {
	chunks := max(min(degree, len(accounts)), 1)
	if len(accounts) == 0 {
		return [][]solana.PublicKey{{}}
	}
	size := (len(accounts) + chunks - 1) / chunks
	out := make([][]solana.PublicKey, 0, chunks)
	for start := 0; start < len(accounts); start += size {
		end := min(start+size, len(accounts))
		chunk := make([]solana.PublicKey, end-start)
		copy(chunk, accounts[start:end])
		out = append(out, chunk)
	}
	return out
}

type buildOptions struct {
	rnd *rand.Rand
}

type BuildOption func(*buildOptions)

// WithRand seeds every tip picker from rnd so runs are reproducible.
func WithRand(rnd *rand.Rand) BuildOption {
	return func(o *buildOptions) { o.rnd = rnd }
}

// BuildRuntimes expands cfg into its runtimes. Default kind yields Threads
// untipped clients; every other kind yields one client per tip-account chunk,
// each picking only from its own chunk.
func BuildRuntimes(cfg Config, opts ...BuildOption) ([]*Runtime, error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cfg.Threads = max(cfg.Threads, 1)
	if !cfg.Kind.Valid() {
		return nil, xerr.ErrInvalidArgument.Withf("unknown relay kind %q", cfg.Kind)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(cfg.Kind)
	}
	if cfg.Endpoint == "" {
		return nil, xerr.ErrInvalidArgument.Withf("relay %s has no endpoint", cfg.Kind)
	}

	if cfg.Kind == KindDefault {
		runtimes := make([]*Runtime, 0, cfg.Threads)
		for i := 0; i < cfg.Threads; i++ {
			runtimes = append(runtimes, &Runtime{Config: cfg, Client: rpcs.NewDefaultChannel(cfg.Endpoint, cfg.Header)})
		}
		return runtimes, nil
	}

	chunks := ChunkAccounts(cfg.Kind.TipAccounts(), cfg.Threads)
	runtimes := make([]*Runtime, 0, len(chunks))
	for _, chunk := range chunks {
		picker := rpcs.NewTipPicker(chunk, rand.New(rand.NewSource(o.rnd.Int63())))
		client, err := newClient(cfg, picker)
		if err != nil {
			return nil, err
		}
		runtimes = append(runtimes, &Runtime{Config: cfg, Client: client})
	}
	return runtimes, nil
}

// BuildAll expands every config, preserving order.
func BuildAll(cfgs []Config, opts ...BuildOption) ([]*Runtime, error) {
	var all []*Runtime
	for _, cfg := range cfgs {
		runtimes, err := BuildRuntimes(cfg, opts...)
		if err != nil {
			return nil, errors.WithMessagef(err, "relay %s", cfg.Kind)
		}
		all = append(all, runtimes...)
	}
	return all, nil
}

func newClient(cfg Config, tips *rpcs.TipPicker) (rpcs.Client, error) {
	switch cfg.Kind {
	case KindJito:
		return rpcs.NewJitoChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindNextBlock:
		return rpcs.NewNextBlockChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindBlox:
		return rpcs.NewBloxChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindTemporal:
		return rpcs.NewTemporalChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindZeroSlot:
		return rpcs.NewZeroSlotChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindBlockRazor:
		return rpcs.NewBlockRazorChannel(cfg.Endpoint, cfg.Token, tips), nil
	case KindBlockRazorGrpc:
		return rpcs.NewBlzChannel(cfg.Endpoint, cfg.Token, tips)
	case KindAstralane:
		return rpcs.NewAstralaneChannel(cfg.Endpoint, cfg.Token, tips), nil
	}
	return nil, xerr.ErrInvalidArgument.Withf("unknown relay kind %q", cfg.Kind)
}
