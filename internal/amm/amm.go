package amm

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

const BasisPoints = 10_000

var (
	bigBps    = big.NewInt(BasisPoints)
	bigMaxU64 = new(big.Int).SetUint64(math.MaxUint64)
)

// SwapOut prices a constant-product swap: amountIn*reserveOut/(reserveIn+amountIn).
func SwapOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, xerr.ErrPoolUninitialized
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), new(big.Int).SetUint64(reserveOut))
	den := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(amountIn))
	// result < reserveOut, always fits
	return num.Quo(num, den).Uint64(), nil
}

// BuyTokenOut is the token amount received for solIn.
func BuyTokenOut(solReserves, tokenReserves, solIn uint64) (uint64, error) {
	return SwapOut(solReserves, tokenReserves, solIn)
}

// SellSolOut is the lamports received for tokenIn.
func SellSolOut(solReserves, tokenReserves, tokenIn uint64) (uint64, error) {
	return SwapOut(tokenReserves, solReserves, tokenIn)
}

// WithSlippageBuy is the most the buyer will pay: amount + ceil(amount*bps/10000).
func WithSlippageBuy(amount, slippageBps uint64) uint64 {
	extra := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(slippageBps))
	extra.Add(extra, big.NewInt(BasisPoints-1))
	extra.Quo(extra, bigBps)
	total := extra.Add(extra, new(big.Int).SetUint64(amount))
	if total.Cmp(bigMaxU64) > 0 {
		return math.MaxUint64
	}
	return total.Uint64()
}

// WithSlippageSell is the least the seller will accept: amount - floor(amount*bps/10000), floored at zero.
func WithSlippageSell(amount, slippageBps uint64) uint64 {
	cut := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(slippageBps))
	cut.Quo(cut, bigBps)
	if cut.Cmp(new(big.Int).SetUint64(amount)) >= 0 {
		return 0
	}
	return amount - cut.Uint64()
}

// Reserves is a local running copy of a pool used to price a batch sequentially.
type Reserves struct {
	Sol   uint64
	Token uint64
}

// Buy prices solIn against the running reserves and applies it. The reserves
// are left untouched when the input would overflow them.
func (r *Reserves) Buy(solIn uint64) (uint64, error) {
	out, err := BuyTokenOut(r.Sol, r.Token, solIn)
	if err != nil {
		return 0, err
	}
	sol, carry := bits.Add64(r.Sol, solIn, 0)
	if carry != 0 {
		return 0, xerr.ErrInvalidArgument.Withf("sol reserves overflow: %d + %d", r.Sol, solIn)
	}
	r.Sol = sol
	r.Token -= out
	return out, nil
}

// Sell prices tokenIn against the running reserves and applies it.
func (r *Reserves) Sell(tokenIn uint64) (uint64, error) {
	out, err := SellSolOut(r.Sol, r.Token, tokenIn)
	if err != nil {
		return 0, err
	}
	token, carry := bits.Add64(r.Token, tokenIn, 0)
	if carry != 0 {
		return 0, xerr.ErrInvalidArgument.Withf("token reserves overflow: %d + %d", r.Token, tokenIn)
	}
	r.Token = token
	r.Sol -= out
	return out, nil
}
