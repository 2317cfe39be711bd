package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/kerokon/solana-trading-sdk/internal/config"
	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/svc"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Solana AMM trader",
	Long: `trader buys, sells and launches tokens on pump.fun, PumpSwap,
Meteora DBC, Raydium Launchpad, boop.fun and Moonit, broadcasting every
transaction through all configured relays at once.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "etc/trader.yaml", "config file")
	rootCmd.PersistentFlags().String("venue", string(dex.Pumpfun), "pumpfun | pumpswap | meteora-dbc | raydium-bonk | boopfun | moonit")
	rootCmd.PersistentFlags().Uint64("slippage", 0, "slippage in basis points, unset uses the config value")
	rootCmd.PersistentFlags().Uint32("fee-limit", 0, "extra compute unit limit")
	rootCmd.PersistentFlags().Uint64("fee-price", 0, "extra compute unit price in micro-lamports")
	rootCmd.PersistentFlags().String("tip", "0", "extra tip in SOL added to every relay")
	rootCmd.PersistentFlags().Bool("no-banner", false, "skip the banner")
}

func initEnv() {
	_ = godotenv.Load()
	viper.SetEnvPrefix("TRADER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

type session struct {
	ctx    context.Context
	svc    *svc.ServiceContext
	trader *dex.Trader
	fee    *global.PriorityFee
	tip    uint64
	// bps is the explicit slippage, nil when neither flag nor env set one.
	bps *uint64
}

// start loads the config, prints the banner and initializes every venue.
func start(cmd *cobra.Command) (*session, error) {
	c := config.MustLoad(cfgFile)
	config.C = c
	logx.MustSetup(c.Log.LogConf)

	if !viper.GetBool("no-banner") {
		figure.NewColorFigure(c.Banner.Text, c.Banner.FontName, c.Banner.Color, true).Print()
	}

	sc, err := svc.NewServiceContext(c)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err = sc.Client.Initialize(ctx); err != nil {
		return nil, err
	}
	trader, err := sc.Client.Trader(dex.VenueName(viper.GetString("venue")))
	if err != nil {
		return nil, err
	}
	tip, err := lamports.FromAny(viper.GetString("tip"))
	if err != nil {
		return nil, err
	}

	s := &session{ctx: ctx, svc: sc, trader: trader, tip: tip.Uint64(), bps: slippageFlag(cmd)}
	if limit := viper.GetUint32("fee-limit"); limit > 0 {
		s.fee = &global.PriorityFee{UnitLimit: limit, UnitPrice: viper.GetUint64("fee-price")}
	}
	return s, nil
}

// slippageFlag returns the slippage the user asked for, zero included.
func slippageFlag(cmd *cobra.Command) *uint64 {
	if !cmd.Flags().Changed("slippage") && !viper.IsSet("slippage") {
		return nil
	}
	bps := viper.GetUint64("slippage")
	return &bps
}

func (s *session) slippage() uint64 {
	if s.bps != nil {
		return *s.bps
	}
	return s.svc.Config.Trader.SlippageBps
}

func (s *session) payer() (solana.PrivateKey, error) {
	return s.svc.Config.Keys.PayerKey()
}

func printSignatures(sigs []solana.Signature) {
	for _, sig := range sigs {
		fmt.Println(sig)
	}
}

func parseKeys(values []string) ([]solana.PrivateKey, error) {
	keys := make([]solana.PrivateKey, 0, len(values))
	for _, v := range values {
		k, err := solana.PrivateKeyFromBase58(os.ExpandEnv(v))
		if err != nil {
			return nil, errors.Wrap(err, "parse key")
		}
		keys = append(keys, k)
	}
	return keys, nil
}
