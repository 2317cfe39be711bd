package global

import (
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

type TxVersion int

const (
	TxLegacy TxVersion = iota
	TxV0
)

func (v TxVersion) String() string {
	if v == TxV0 {
		return "v0"
	}
	return "legacy"
}

// Transaction is a signed transaction. It is never mutated after Build.
type Transaction struct {
	version TxVersion
	tx      *solana.Transaction
	raw     []byte
}

// Signature is the fee payer's signature, the transaction's identity.
func (t *Transaction) Signature() solana.Signature {
	return t.tx.Signatures[0]
}

func (t *Transaction) Signatures() []solana.Signature {
	out := make([]solana.Signature, len(t.tx.Signatures))
	copy(out, t.tx.Signatures)
	return out
}

func (t *Transaction) Version() TxVersion { return t.version }

func (t *Transaction) Payer() solana.PublicKey {
	return t.tx.Message.AccountKeys[0]
}

func (t *Transaction) NumInstructions() int {
	return len(t.tx.Message.Instructions)
}

// ProgramAt returns the program invoked by the i-th instruction.
func (t *Transaction) ProgramAt(i int) (solana.PublicKey, error) {
	return t.tx.Message.Program(t.tx.Message.Instructions[i].ProgramIDIndex)
}

func (t *Transaction) RecentBlockhash() solana.Hash {
	return t.tx.Message.RecentBlockhash
}

// Bytes is the wire encoding.
func (t *Transaction) Bytes() []byte {
	out := make([]byte, len(t.raw))
	copy(out, t.raw)
	return out
}

func (t *Transaction) Base64() string {
	return base64.StdEncoding.EncodeToString(t.raw)
}

func (t *Transaction) Base58() string {
	return base58.Encode(t.raw)
}

// TxBuilder accumulates instructions for one payer and blockhash.
type TxBuilder struct {
	payer        solana.PublicKey
	blockhash    solana.Hash
	instructions []solana.Instruction
}

func NewTxBuilder(payer solana.PublicKey, blockhash solana.Hash) *TxBuilder {
	return &TxBuilder{
		payer:        payer,
		blockhash:    blockhash,
		instructions: make([]solana.Instruction, 0),
	}
}

func (b *TxBuilder) AddInstruction(instrs ...solana.Instruction) *TxBuilder {
	b.instructions = append(b.instructions, instrs...)
	return b
}

// Build signs a legacy transaction with the payer key plus any extra signers.
func (b *TxBuilder) Build(payer solana.PrivateKey, others ...solana.PrivateKey) (*Transaction, error) {
	return b.build(TxLegacy, payer, others)
}

// BuildVersioned signs a v0 transaction.
func (b *TxBuilder) BuildVersioned(payer solana.PrivateKey, others ...solana.PrivateKey) (*Transaction, error) {
	return b.build(TxV0, payer, others)
}

func (b *TxBuilder) BuildAs(version TxVersion, payer solana.PrivateKey, others ...solana.PrivateKey) (*Transaction, error) {
	return b.build(version, payer, others)
}

func (b *TxBuilder) build(version TxVersion, payer solana.PrivateKey, others []solana.PrivateKey) (*Transaction, error) {
	if !payer.PublicKey().Equals(b.payer) {
		return nil, xerr.Signing(errors.Errorf("payer key %s does not match builder payer %s", payer.PublicKey(), b.payer))
	}
	if len(b.instructions) == 0 {
		return nil, xerr.Build(errors.New("no instructions"), "build transaction")
	}

	tx, err := solana.NewTransaction(
		b.instructions,
		b.blockhash,
		solana.TransactionPayer(b.payer),
	)
	if err != nil {
		return nil, xerr.Build(err, "compile message")
	}
	if version == TxV0 {
		tx.Message.SetVersion(solana.MessageVersionV0)
	}

	keys := make(map[solana.PublicKey]*solana.PrivateKey, len(others)+1)
	keys[payer.PublicKey()] = &payer
	for i := range others {
		keys[others[i].PublicKey()] = &others[i]
	}
	if _, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return keys[key]
	}); err != nil {
		return nil, xerr.Signing(err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, xerr.Build(err, "serialize transaction")
	}
	return &Transaction{version: version, tx: tx, raw: raw}, nil
}
