package amm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kerokon/solana-trading-sdk/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	initialSol   = 30_000_000_000
	initialToken = 1_073_000_000_000_000
)

func TestBuyScenario(t *testing.T) {
	out, err := BuyTokenOut(initialSol, initialToken, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(34_612_903_225_806), out)
}

func TestZeroReserves(t *testing.T) {
	_, err := SwapOut(0, 10, 1)
	assert.ErrorIs(t, err, xerr.ErrPoolUninitialized)
	_, err = SwapOut(10, 0, 1)
	assert.ErrorIs(t, err, xerr.ErrPoolUninitialized)
}

func TestNoOverflowAtMaxReserves(t *testing.T) {
	out, err := SwapOut(math.MaxUint64, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), out)
}

func TestSwapOutNeverDrainsAndIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		rIn := rng.Uint64()>>uint(rng.Intn(60)) | 1
		rOut := rng.Uint64()>>uint(rng.Intn(60)) | 1
		a := rng.Uint64()>>uint(rng.Intn(63)) | 1
		b := a + uint64(rng.Intn(1_000_000))
		if b < a {
			b = a
		}
		outA, err := SwapOut(rIn, rOut, a)
		require.NoError(t, err)
		outB, err := SwapOut(rIn, rOut, b)
		require.NoError(t, err)
		assert.Less(t, outA, rOut)
		assert.LessOrEqual(t, outA, outB)
	}
}

func TestSlippage(t *testing.T) {
	assert.Equal(t, uint64(1000), WithSlippageBuy(1000, 0))
	assert.Equal(t, uint64(1000), WithSlippageSell(1000, 0))

	assert.Equal(t, uint64(1100), WithSlippageBuy(1000, 1000))
	assert.Equal(t, uint64(900), WithSlippageSell(1000, 1000))

	// rounding: buy rounds the extra up, sell rounds the cut down
	assert.Equal(t, uint64(2), WithSlippageBuy(1, 1))
	assert.Equal(t, uint64(1), WithSlippageSell(1, 1))

	assert.Equal(t, uint64(0), WithSlippageSell(1000, 10_000))
	assert.Equal(t, uint64(0), WithSlippageSell(1000, 25_000))
	assert.Equal(t, uint64(math.MaxUint64), WithSlippageBuy(math.MaxUint64, 500))

	for _, bps := range []uint64{0, 1, 50, 100, 9_999, 10_000, 50_000} {
		for _, amount := range []uint64{0, 1, 7, 1_000_000_007} {
			assert.GreaterOrEqual(t, WithSlippageBuy(amount, bps), amount)
			assert.LessOrEqual(t, WithSlippageSell(amount, bps), amount)
		}
	}
}

func TestReservesBatchInvariant(t *testing.T) {
	r := Reserves{Sol: initialSol, Token: initialToken}
	var bought uint64
	prev := r.Token
	for _, in := range []uint64{1_000_000_000, 500_000_000, 2_000_000_000, 1} {
		out, err := r.Buy(in)
		require.NoError(t, err)
		bought += out
		assert.Less(t, r.Token, prev)
		prev = r.Token
	}
	assert.Equal(t, uint64(initialToken)-bought, r.Token)
	assert.Equal(t, uint64(initialSol+3_500_000_001), r.Sol)

	sol, err := r.Sell(bought)
	require.NoError(t, err)
	assert.Equal(t, uint64(initialToken), r.Token)
	assert.LessOrEqual(t, sol, uint64(3_500_000_001))
}

func TestReservesRejectOverflow(t *testing.T) {
	r := Reserves{Sol: 30_000_000_000, Token: 1_073_000_000_000_000}

	_, err := r.Sell(math.MaxUint64 - 10)
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
	assert.Equal(t, Reserves{Sol: 30_000_000_000, Token: 1_073_000_000_000_000}, r)

	_, err = r.Buy(math.MaxUint64 - 10)
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
	assert.Equal(t, Reserves{Sol: 30_000_000_000, Token: 1_073_000_000_000_000}, r)

	out, err := r.Buy(1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(34_612_903_225_806), out)

	edge := Reserves{Sol: 1, Token: math.MaxUint64 - 5}
	_, err = edge.Sell(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), edge.Token)
	_, err = edge.Sell(1)
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
}
