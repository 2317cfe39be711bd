package cmd

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

var buyCmd = &cobra.Command{
	Use:   "buy <mint>",
	Short: "Buy a token with SOL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		amount, err := lamports.ParseSol(viper.GetString("sol"))
		if err != nil {
			return err
		}
		s, err := start(cmd)
		if err != nil {
			return err
		}
		payer, err := s.payer()
		if err != nil {
			return err
		}
		sigs, err := s.trader.Buy(s.ctx, payer, mint, amount.Uint64(), s.slippage(), s.fee, s.tip)
		printSignatures(sigs)
		return err
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <mint>",
	Short: "Sell a token for SOL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		s, err := start(cmd)
		if err != nil {
			return err
		}
		payer, err := s.payer()
		if err != nil {
			return err
		}

		amount := dex.EntireBalance()
		if n := viper.GetUint64("amount"); n > 0 {
			amount = dex.Amount(n)
		}
		var customATA *solana.PublicKey
		if ata := viper.GetString("ata"); ata != "" {
			key, err := solana.PublicKeyFromBase58(ata)
			if err != nil {
				return err
			}
			customATA = &key
		}
		sigs, err := s.trader.Sell(s.ctx, payer, mint, amount, s.slippage(), customATA, viper.GetBool("close"), s.fee, s.tip)
		printSignatures(sigs)
		return err
	},
}

func init() {
	buyCmd.Flags().String("sol", "", "SOL to spend, e.g. 0.1")
	_ = buyCmd.MarkFlagRequired("sol")
	rootCmd.AddCommand(buyCmd)

	sellCmd.Flags().Uint64("amount", 0, "raw token amount, 0 sells the whole balance")
	sellCmd.Flags().String("ata", "", "sell from this token account instead of the associated one")
	sellCmd.Flags().Bool("close", false, "close the token account after selling")
	rootCmd.AddCommand(sellCmd)
}
