package config

import (
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

var C Config

type Config struct {
	Log    LogConf
	Banner BannerConf
	Trader TraderConf
	Keys   KeysConf
}

type LogConf struct {
	logx.LogConf
}

type BannerConf struct {
	Text     string `json:",default=TRADER"`
	Color    string `json:",default=green"`
	FontName string `json:",default=starwars,options=big|larry3d|starwars|standard"`
}

type TraderConf struct {
	RPC         string        `json:",default=https://api.mainnet-beta.solana.com" validate:"required,url"`
	SendTimeout time.Duration `json:",default=10s" validate:"gt=0"`
	TxVersion   string        `json:",default=v0,options=legacy|v0"`
	// Slippage applies when a command does not pass its own, in basis points.
	SlippageBps uint64      `json:",default=300" validate:"lte=10000"`
	SWQoS       []SWQoSConf `json:"SWQoS" validate:"required,min=1,dive"`
}

// FeeConf is a compute-budget request. An all-zero request means unset; a
// price needs a limit.
type FeeConf struct {
	UnitLimit uint32 `json:",optional" validate:"required_with=UnitPrice"`
	UnitPrice uint64 `json:",optional"`
}

func (f FeeConf) fee() (*global.PriorityFee, error) {
	if f.UnitLimit == 0 {
		if f.UnitPrice != 0 {
			return nil, errors.Errorf("unit price %d set without a unit limit", f.UnitPrice)
		}
		return nil, nil
	}
	return &global.PriorityFee{UnitLimit: f.UnitLimit, UnitPrice: f.UnitPrice}, nil
}

// SWQoSConf is one relay. Tips are SOL amounts written as strings, e.g. "0.001".
type SWQoSConf struct {
	Kind     string `json:"Kind" validate:"required,oneof=default jito nextblock blox temporal zeroslot blockrazor blockrazor-grpc astralane"`
	Endpoint string `json:",optional" validate:"omitempty,url|hostname_port"`
	Token    string `json:",optional"`
	// Header is "Key: Value", sent with every request of the default kind.
	Header  string  `json:",optional"`
	Threads int     `json:",default=1" validate:"gte=1,lte=64"`
	BuyTip  string  `json:",optional" validate:"omitempty,numeric"`
	SellTip string  `json:",optional" validate:"omitempty,numeric"`
	BuyFee  FeeConf `json:",optional"`
	SellFee FeeConf `json:",optional"`
}

func parseTip(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	l, err := lamports.ParseSol(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "tip %q", s)
	}
	v := l.Uint64()
	return &v, nil
}

// Build turns the yaml entry into a relay config.
func (c SWQoSConf) Build() (swqos.Config, error) {
	cfg := swqos.NewConfig(swqos.Kind(c.Kind), c.Endpoint, c.Token).WithThreads(c.Threads)
	if key, value, ok := strings.Cut(c.Header, ":"); ok {
		cfg = cfg.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	buyTip, err := parseTip(c.BuyTip)
	if err != nil {
		return swqos.Config{}, errors.WithMessagef(err, "%s buy", c.Kind)
	}
	sellTip, err := parseTip(c.SellTip)
	if err != nil {
		return swqos.Config{}, errors.WithMessagef(err, "%s sell", c.Kind)
	}
	buyFee, err := c.BuyFee.fee()
	if err != nil {
		return swqos.Config{}, errors.WithMessagef(err, "%s buy", c.Kind)
	}
	sellFee, err := c.SellFee.fee()
	if err != nil {
		return swqos.Config{}, errors.WithMessagef(err, "%s sell", c.Kind)
	}
	return cfg.WithBuyConfig(buyTip, buyFee).WithSellConfig(sellTip, sellFee), nil
}

// Relays builds every configured relay in order.
func (t TraderConf) Relays() ([]swqos.Config, error) {
	out := make([]swqos.Config, 0, len(t.SWQoS))
	for i, s := range t.SWQoS {
		cfg, err := s.Build()
		if err != nil {
			return nil, errors.WithMessagef(err, "swqos[%d]", i)
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (t TraderConf) Version() global.TxVersion {
	if t.TxVersion == "legacy" {
		return global.TxLegacy
	}
	return global.TxV0
}

type KeysConf struct {
	// Payer is a base58 private key, usually "${TRADER_PAYER_KEY}".
	Payer string `json:",optional"`
	// Nonce is an optional durable nonce account the payer is authority of.
	Nonce string `json:",optional"`
}

func (k KeysConf) PayerKey() (solana.PrivateKey, error) {
	if k.Payer == "" {
		return nil, errors.New("no payer key configured")
	}
	key, err := solana.PrivateKeyFromBase58(k.Payer)
	if err != nil {
		return nil, errors.Wrap(err, "parse payer key")
	}
	return key, nil
}

func (k KeysConf) NonceAccount() (*solana.PublicKey, error) {
	if k.Nonce == "" {
		return nil, nil
	}
	key, err := solana.PublicKeyFromBase58(k.Nonce)
	if err != nil {
		return nil, errors.Wrap(err, "parse nonce account")
	}
	return &key, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c.Trader); err != nil {
		return errors.Wrap(err, "invalid trader config")
	}
	return nil
}

// Load reads a yaml file, expanding ${ENV} references, and validates it.
func Load(file string) (Config, error) {
	var c Config
	if err := conf.Load(file, &c, conf.UseEnv()); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func MustLoad(file string) Config {
	c, err := Load(file)
	logx.Must(err)
	return c
}
