package cmd

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kerokon/solana-trading-sdk/internal/client"
	"github.com/kerokon/solana-trading-sdk/pkg/lamports"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <to>",
	Short: "Send SOL, or a token with --mint, through every relay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		mint, amount, err := transferAmount(viper.GetString("mint"), viper.GetString("sol"), viper.GetUint64("amount"))
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
		nonce, err := s.svc.Config.Keys.NonceAccount()
		if err != nil {
			return err
		}
		opts := client.TransferOptions{
			Memo:      viper.GetString("memo"),
			Nonce:     nonce,
			Fee:       s.fee,
			Tip:       s.tip,
			CreateATA: viper.GetBool("create-ata"),
		}

		var sigs []solana.Signature
		if mint != nil {
			sigs, err = s.svc.Client.TransferToken(s.ctx, payer, to, *mint, amount, opts)
		} else {
			sigs, err = s.svc.Client.Transfer(s.ctx, payer, to, amount, opts)
		}
		printSignatures(sigs)
		return err
	},
}

// transferAmount picks SOL or token mode: --sol alone sends lamports, --mint
// with --amount sends raw token units.
func transferAmount(mint, sol string, raw uint64) (*solana.PublicKey, uint64, error) {
	if mint == "" {
		if sol == "" {
			return nil, 0, errors.New("--sol is required without --mint")
		}
		amount, err := lamports.ParseSol(sol)
		if err != nil {
			return nil, 0, err
		}
		return nil, amount.Uint64(), nil
	}
	if sol != "" {
		return nil, 0, errors.New("--sol and --mint are exclusive")
	}
	key, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, 0, errors.Wrap(err, "parse mint")
	}
	if raw == 0 {
		return nil, 0, errors.New("--amount is required with --mint")
	}
	return &key, raw, nil
}

func init() {
	transferCmd.Flags().String("sol", "", "SOL to send")
	transferCmd.Flags().String("mint", "", "send this token instead of SOL")
	transferCmd.Flags().Uint64("amount", 0, "raw token amount, with --mint")
	transferCmd.Flags().Bool("create-ata", false, "create the recipient token account if missing")
	transferCmd.Flags().String("memo", "", "attach a memo")
	rootCmd.AddCommand(transferCmd)
}
