package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Launch a new token, optionally buying in the same transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		params := dex.CreateParams{
			Mint:   mint,
			Name:   viper.GetString("name"),
			Symbol: viper.GetString("symbol"),
			URI:    viper.GetString("uri"),
		}
		if raw := viper.GetString("buy-sol"); raw != "" {
			amount, err := lamports.ParseSol(raw)
			if err != nil {
				return err
			}
			sol := amount.Uint64()
			params.BuySolAmount = &sol
		}

		s, err := start(cmd)
		if err != nil {
			return err
		}
		params.SlippageBps = s.bps
		payer, err := s.payer()
		if err != nil {
			return err
		}
		fmt.Println("mint:", mint.PublicKey())
		sigs, err := s.trader.Create(s.ctx, payer, params, s.fee, s.tip)
		printSignatures(sigs)
		return err
	},
}

func init() {
	createCmd.Flags().String("name", "", "token name")
	createCmd.Flags().String("symbol", "", "token symbol")
	createCmd.Flags().String("uri", "", "metadata uri, already uploaded")
	createCmd.Flags().String("buy-sol", "", "SOL to buy with in the create transaction")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("symbol")
	_ = createCmd.MarkFlagRequired("uri")
	rootCmd.AddCommand(createCmd)
}
