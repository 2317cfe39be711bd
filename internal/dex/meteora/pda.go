package meteora

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var (
	DbcProgram    = solana.MustPublicKeyFromBase58("dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN")
	PoolAuthority = solana.MustPublicKeyFromBase58("FhVo3mqL8PW5pH5U2CN4XE33DokiyZnUwuGpH2hmHLuM")
)

func find(seeds ...[]byte) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(seeds, DbcProgram)
	if err != nil {
		return solana.PublicKey{}, xerr.Build(err, "derive dbc address")
	}
	return pda, nil
}

// DerivePoolPDA derives the dbc pool address. The larger mint goes first.
func DerivePoolPDA(quoteMint, baseMint, config solana.PublicKey) (solana.PublicKey, error) {
	mintA, mintB := baseMint, quoteMint
	if bytes.Compare(quoteMint.Bytes(), baseMint.Bytes()) > 0 {
		mintA, mintB = quoteMint, baseMint
	}
	return find([]byte("pool"), config.Bytes(), mintA.Bytes(), mintB.Bytes())
}

func DeriveTokenVaultPDA(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	return find([]byte("token_vault"), mint.Bytes(), pool.Bytes())
}

func DeriveEventAuthorityPDA() (solana.PublicKey, error) {
	return find([]byte("__event_authority"))
}
