package raydium

import (
	"github.com/gagliardetto/solana-go"
)

var (
	LaunchpadProgram   = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")
	LaunchpadAuthority = solana.MustPublicKeyFromBase58("WLHv2UAZm6z4KyaaELi5pjdbJh6RESMva1Rnn8pJVVh")
	EventAuthority     = solana.MustPublicKeyFromBase58("2DPAtwB8L12vrMRExbLuyGnC7n2J5LNoZQSejeQGpwkr")
	GlobalConfig       = solana.MustPublicKeyFromBase58("6s1xP3hpbAfFoNtUNF8mfHsjr2Bd97JxFJRWLbL6aHuX")
	// PlatformConfig is the letsbonk.fun platform.
	PlatformConfig = solana.MustPublicKeyFromBase58("FfYek5vEz23cMkWsdJwG2oa6EphsvXSHrGpdALN4g6W1")
)

var (
	buyExactInDisc  = []byte{250, 234, 13, 123, 213, 156, 19, 236}
	sellExactInDisc = []byte{0x95, 0x27, 0xde, 0x9b, 0xd3, 0x7c, 0x98, 0x1a}
)

// PoolState is the launchpad pool account up to the reserves the curve prices with.
type PoolState struct {
	Discriminator         [8]byte
	Epoch                 uint64
	AuthBump              uint8
	Status                uint8
	BaseDecimals          uint8
	QuoteDecimals         uint8
	MigrateType           uint8
	Supply                uint64
	TotalBaseSell         uint64
	VirtualBase           uint64
	VirtualQuote          uint64
	RealBase              uint64
	RealQuote             uint64
	TotalQuoteFundRaising uint64
	QuoteProtocolFee      uint64
	PlatformFee           uint64
	MigrateFee            uint64
	VestingSchedule       [5]uint64
	GlobalConfig          solana.PublicKey
	PlatformConfig        solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	BaseVault             solana.PublicKey
	QuoteVault            solana.PublicKey
	Creator               solana.PublicKey
}
