package raydium

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

func find(seeds ...[]byte) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(seeds, LaunchpadProgram)
	if err != nil {
		return solana.PublicKey{}, xerr.Build(err, "derive launchpad address")
	}
	return pda, nil
}

// PoolPDA is the pool of mint quoted in WSOL.
func PoolPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return find([]byte("pool"), mint.Bytes(), global.WSOL.Bytes())
}

func VaultPDA(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	return find([]byte("pool_vault"), pool.Bytes(), mint.Bytes())
}

type swapAccounts struct {
	payer      solana.PublicKey
	pool       solana.PublicKey
	userBase   solana.PublicKey
	baseVault  solana.PublicKey
	quoteVault solana.PublicKey
	baseMint   solana.PublicKey
}

// swapInstruction is buy_exact_in or sell_exact_in. The share fee rate is
// always zero.
func swapInstruction(buy bool, a swapAccounts, amountIn, minOut uint64) solana.Instruction {
	disc := buyExactInDisc
	if !buy {
		disc = sellExactInDisc
	}

	buf := make([]byte, 8+8+8+8)
	copy(buf, disc)
	binary.LittleEndian.PutUint64(buf[8:], amountIn)
	binary.LittleEndian.PutUint64(buf[16:], minOut)
	binary.LittleEndian.PutUint64(buf[24:], 0)

	return solana.NewInstruction(LaunchpadProgram, solana.AccountMetaSlice{
		// 1. payer
		solana.Meta(a.payer).WRITE().SIGNER(),
		// 2. authority
		solana.Meta(LaunchpadAuthority),
		// 3. global config
		solana.Meta(GlobalConfig),
		// 4. platform config
		solana.Meta(PlatformConfig),
		// 5. pool state
		solana.Meta(a.pool).WRITE(),
		// 6. user base token
		solana.Meta(a.userBase).WRITE(),
		// 7. user quote token
		solana.Meta(global.AssociatedTokenAddress(a.payer, global.WSOL)).WRITE(),
		// 8. base vault
		solana.Meta(a.baseVault).WRITE(),
		// 9. quote vault
		solana.Meta(a.quoteVault).WRITE(),
		// 10. base mint
		solana.Meta(a.baseMint),
		// 11. quote mint
		solana.Meta(global.WSOL),
		// 12. base token program
		solana.Meta(global.TokenProgram),
		// 13. quote token program
		solana.Meta(global.TokenProgram),
		// 14. event authority
		solana.Meta(EventAuthority),
		// 15. program
		solana.Meta(LaunchpadProgram),
	}, buf)
}
