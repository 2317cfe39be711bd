package meteora

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

var swapDisc = []byte{248, 198, 158, 145, 225, 117, 135, 200}

type swapAccounts struct {
	config      solana.PublicKey
	pool        solana.PublicKey
	input       solana.PublicKey
	output      solana.PublicKey
	baseVault   solana.PublicKey
	quoteVault  solana.PublicKey
	baseMint    solana.PublicKey
	payer       solana.PublicKey
	eventAuthor solana.PublicKey
}

// swapInstruction swaps amountIn of the input account for at least minOut.
// Without a referral the program id stands in for the optional account.
func swapInstruction(a swapAccounts, amountIn, minOut uint64) solana.Instruction {
	buf := make([]byte, 8+8+8)
	copy(buf, swapDisc)
	binary.LittleEndian.PutUint64(buf[8:], amountIn)
	binary.LittleEndian.PutUint64(buf[16:], minOut)

	return solana.NewInstruction(DbcProgram, solana.AccountMetaSlice{
		// 1. pool_authority
		solana.Meta(PoolAuthority),
		// 2. config
		solana.Meta(a.config),
		// 3. pool
		solana.Meta(a.pool).WRITE(),
		// 4. input_token_account
		solana.Meta(a.input).WRITE(),
		// 5. output_token_account
		solana.Meta(a.output).WRITE(),
		// 6. base_vault
		solana.Meta(a.baseVault).WRITE(),
		// 7. quote_vault
		solana.Meta(a.quoteVault).WRITE(),
		// 8. base_mint
		solana.Meta(a.baseMint),
		// 9. quote_mint
		solana.Meta(global.WSOL),
		// 10. payer
		solana.Meta(a.payer).WRITE().SIGNER(),
		// 11. token_base_program
		solana.Meta(global.TokenProgram),
		// 12. token_quote_program
		solana.Meta(global.TokenProgram),
		// 13. referral_token_account
		solana.Meta(DbcProgram),
		// 14. event_authority
		solana.Meta(a.eventAuthor),
		// 15. program
		solana.Meta(DbcProgram),
	}, buf)
}
