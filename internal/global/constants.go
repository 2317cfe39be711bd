package global

import (
	"github.com/gagliardetto/solana-go"
)

var (
	WSOL                   = solana.WrappedSol
	TokenProgram           = solana.TokenProgramID
	Token2022Program       = solana.Token2022ProgramID
	AssociatedTokenProgram = solana.SPLAssociatedTokenAccountProgramID
	SystemProgram          = solana.SystemProgramID
	RentSysvar             = solana.SysVarRentPubkey
	MetadataProgram        = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

const (
	LamportsPerSol = 1_000_000_000

	// SPL token account size and its rent-exempt minimum, used for seeded token accounts.
	TokenAccountSize = 165
	TokenAccountRent = 2_039_280
)
