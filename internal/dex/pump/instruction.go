package pump

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var (
	BuyMethod  = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	SellMethod = []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// SwapInstruction is the buy/sell layout both pump programs share:
// method, token amount, sol amount.
type SwapInstruction struct {
	bin.BaseVariant
	program                 solana.PublicKey
	MethodId                []byte
	TokenAmount             uint64
	SolAmount               uint64
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func newSwapInstruction(program solana.PublicKey, method []byte, swap dex.SwapInfo, accounts solana.AccountMetaSlice) *SwapInstruction {
	inst := &SwapInstruction{
		program:          program,
		MethodId:         method,
		TokenAmount:      swap.TokenAmount,
		SolAmount:        swap.SolAmount,
		AccountMetaSlice: accounts,
	}
	inst.BaseVariant = bin.BaseVariant{Impl: inst}
	return inst
}

func (inst *SwapInstruction) ProgramID() solana.PublicKey {
	return inst.program
}

func (inst *SwapInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *SwapInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(inst); err != nil {
		return nil, errors.Wrap(err, "unable to encode instruction")
	}
	return buf.Bytes(), nil
}

func (inst *SwapInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(inst.MethodId, false); err != nil {
		return err
	}
	if err = encoder.WriteUint64(inst.TokenAmount, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(inst.SolAmount, binary.LittleEndian)
}

func findPDA(program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.PublicKey{}, xerr.Build(err, "derive program address under %s", program)
	}
	return addr, nil
}

func decode(data []byte, v any) error {
	return bin.NewBorshDecoder(data).Decode(v)
}
