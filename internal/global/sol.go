package global

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associated_token_account "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	token_program "github.com/gagliardetto/solana-go/programs/token"
	"github.com/pkg/errors"
)

const (
	ataInstructionIdempotent    = 1
	systemCreateAccountWithSeed = 3
	tokenInitializeAccount3     = 18
)

func AssociatedTokenAddress(owner, mint solana.PublicKey) solana.PublicKey {
	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)
	return ata
}

// AssociatedTokenAddressWithProgram derives an ATA under an explicit token program,
// so Token-2022 mints resolve correctly.
func AssociatedTokenAddressWithProgram(owner, mint, tokenProgram solana.PublicKey) solana.PublicKey {
	ata, _, _ := solana.FindProgramAddress([][]byte{
		owner[:],
		tokenProgram[:],
		mint[:],
	}, AssociatedTokenProgram)
	return ata
}

func CreateATAInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	return associated_token_account.NewCreateInstruction(payer, owner, mint).Build()
}

// CreateATAIdempotentInstruction succeeds whether or not the account exists.
func CreateATAIdempotentInstruction(payer, owner, mint, tokenProgram solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		AssociatedTokenProgram,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(AssociatedTokenAddressWithProgram(owner, mint, tokenProgram)).WRITE(),
			solana.Meta(owner),
			solana.Meta(mint),
			solana.Meta(SystemProgram),
			solana.Meta(tokenProgram),
		},
		[]byte{ataInstructionIdempotent},
	)
}

// CreateSeededTokenAccountInstructions creates a token account at an address derived
// from the payer and seed instead of the ATA. Returns the account address.
func CreateSeededTokenAccountInstructions(payer, mint solana.PublicKey, seed string) (solana.PublicKey, []solana.Instruction, error) {
	account, err := solana.CreateWithSeed(payer, seed, TokenProgram)
	if err != nil {
		return solana.PublicKey{}, nil, errors.Wrapf(err, "derive seeded account %q", seed)
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err = encodeAll(
		func() error { return enc.WriteUint32(systemCreateAccountWithSeed, binary.LittleEndian) },
		func() error { return enc.WriteBytes(payer[:], false) },
		func() error { return enc.WriteRustString(seed) },
		func() error { return enc.WriteUint64(TokenAccountRent, binary.LittleEndian) },
		func() error { return enc.WriteUint64(TokenAccountSize, binary.LittleEndian) },
		func() error { return enc.WriteBytes(TokenProgram[:], false) },
	); err != nil {
		return solana.PublicKey{}, nil, errors.Wrap(err, "encode create account with seed")
	}
	create := solana.NewInstruction(
		SystemProgram,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(account).WRITE(),
			solana.Meta(payer).SIGNER(),
		},
		buf.Bytes(),
	)

	initData := make([]byte, 0, 33)
	initData = append(initData, tokenInitializeAccount3)
	initData = append(initData, payer[:]...)
	initialize := solana.NewInstruction(
		TokenProgram,
		solana.AccountMetaSlice{
			solana.Meta(account).WRITE(),
			solana.Meta(mint),
		},
		initData,
	)

	return account, []solana.Instruction{create, initialize}, nil
}

func encodeAll(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func CloseAccountInstruction(account, owner solana.PublicKey) solana.Instruction {
	return token_program.NewCloseAccountInstruction(account, owner, owner, []solana.PublicKey{}).Build()
}

// WrapSOLInstructions funds the owner's WSOL ATA with amount lamports.
func WrapSOLInstructions(owner solana.PublicKey, amount uint64) []solana.Instruction {
	wsolATA := AssociatedTokenAddress(owner, WSOL)
	return []solana.Instruction{
		CreateATAIdempotentInstruction(owner, owner, WSOL, TokenProgram),
		system.NewTransferInstruction(amount, owner, wsolATA).Build(),
		token_program.NewSyncNativeInstruction(wsolATA).Build(),
	}
}

// WSOLBuyInstructions wraps the quote leg around a buy: prefix, wrap, buy, unwrap.
func WSOLBuyInstructions(owner solana.PublicKey, amount uint64, prefix []solana.Instruction, buy solana.Instruction) []solana.Instruction {
	instrs := make([]solana.Instruction, 0, len(prefix)+5)
	instrs = append(instrs, prefix...)
	instrs = append(instrs, WrapSOLInstructions(owner, amount)...)
	instrs = append(instrs, buy)
	instrs = append(instrs, CloseAccountInstruction(AssociatedTokenAddress(owner, WSOL), owner))
	return instrs
}

// WSOLSellInstructions: WSOL ATA, sell, close WSOL ATA, optionally close the mint ATA.
func WSOLSellInstructions(owner, mint solana.PublicKey, sell solana.Instruction, closeMintATA bool) []solana.Instruction {
	instrs := []solana.Instruction{
		CreateATAIdempotentInstruction(owner, owner, WSOL, TokenProgram),
		sell,
		CloseAccountInstruction(AssociatedTokenAddress(owner, WSOL), owner),
	}
	if closeMintATA {
		instrs = append(instrs, CloseAccountInstruction(AssociatedTokenAddress(owner, mint), owner))
	}
	return instrs
}

func SOLSellInstructions(owner, mint solana.PublicKey, sell solana.Instruction, closeMintATA bool) []solana.Instruction {
	instrs := []solana.Instruction{sell}
	if closeMintATA {
		instrs = append(instrs, CloseAccountInstruction(AssociatedTokenAddress(owner, mint), owner))
	}
	return instrs
}
