package global

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/pkg/errors"
)

// Nonce is a durable-nonce account snapshot. Its Hash replaces the recent blockhash
// and the advance instruction must be the first instruction of the transaction.
type Nonce struct {
	Account   solana.PublicKey
	Authority solana.PublicKey
	Hash      solana.Hash
}

func DecodeNonce(account solana.PublicKey, data []byte) (Nonce, error) {
	acc := new(system.NonceAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return Nonce{}, errors.Wrapf(err, "decode nonce account %s", account)
	}
	return Nonce{
		Account:   account,
		Authority: acc.AuthorizedPubkey,
		Hash:      solana.Hash(acc.Nonce),
	}, nil
}

func (n Nonce) AdvanceInstruction() solana.Instruction {
	return system.NewAdvanceNonceAccountInstruction(
		n.Account,
		solana.SysVarRecentBlockHashesPubkey,
		n.Authority,
	).Build()
}
