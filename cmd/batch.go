package cmd

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

// Each wallet gets its own transaction; any subset of them may land.
var batchBuyCmd = &cobra.Command{
	Use:   "batch-buy <mint>",
	Short: "Buy a token from several wallets at once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		keys, err := parseKeys(viper.GetStringSlice("keys"))
		if err != nil {
			return err
		}
		amounts := viper.GetStringSlice("sol")
		if len(amounts) != 1 && len(amounts) != len(keys) {
			return errors.Errorf("need one --sol or one per key, got %d for %d keys", len(amounts), len(keys))
		}

		items := make([]dex.BatchBuyItem, len(keys))
		for i, key := range keys {
			raw := amounts[0]
			if len(amounts) > 1 {
				raw = amounts[i]
			}
			amount, err := lamports.ParseSol(raw)
			if err != nil {
				return err
			}
			items[i] = dex.BatchBuyItem{Payer: key, SolAmount: amount.Uint64()}
		}

		s, err := start(cmd)
		if err != nil {
			return err
		}
		sigs, err := s.trader.BatchBuy(s.ctx, mint, s.slippage(), s.fee, s.tip, items)
		printSignatures(sigs)
		return err
	},
}

var batchSellCmd = &cobra.Command{
	Use:   "batch-sell <mint>",
	Short: "Sell a token from several wallets at once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		keys, err := parseKeys(viper.GetStringSlice("keys"))
		if err != nil {
			return err
		}
		s, err := start(cmd)
		if err != nil {
			return err
		}

		ledger := s.svc.Client.Ledger()
		items := make([]dex.BatchSellItem, len(keys))
		for i, key := range keys {
			amount := dex.EntireBalance()
			if n := viper.GetUint64("amount"); n > 0 {
				amount = dex.Amount(n)
			}
			tokens, err := amount.Resolve(s.ctx, ledger, key.PublicKey(), mint)
			if err != nil {
				return err
			}
			items[i] = dex.BatchSellItem{Payer: key, TokenAmount: tokens, CloseMintATA: viper.GetBool("close")}
		}
		sigs, err := s.trader.BatchSell(s.ctx, mint, s.slippage(), s.fee, s.tip, items)
		printSignatures(sigs)
		return err
	},
}

func init() {
	batchBuyCmd.Flags().StringSlice("keys", nil, "base58 private keys, ${ENV} references are expanded")
	batchBuyCmd.Flags().StringSlice("sol", nil, "SOL per wallet, one value for all or one per key")
	_ = batchBuyCmd.MarkFlagRequired("keys")
	_ = batchBuyCmd.MarkFlagRequired("sol")
	rootCmd.AddCommand(batchBuyCmd)

	batchSellCmd.Flags().StringSlice("keys", nil, "base58 private keys, ${ENV} references are expanded")
	batchSellCmd.Flags().Uint64("amount", 0, "raw token amount per wallet, 0 sells each whole balance")
	batchSellCmd.Flags().Bool("close", false, "close each token account after selling")
	_ = batchSellCmd.MarkFlagRequired("keys")
	rootCmd.AddCommand(batchSellCmd)
}
