package swqos

import (
	"math/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

func keys(n int) []solana.PublicKey {
	out := make([]solana.PublicKey, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey()
	}
	return out
}

func TestChunkAccounts(t *testing.T) {
	pool := keys(8)
	chunks := ChunkAccounts(pool, 4)
	require.Len(t, chunks, 4)
	seen := map[solana.PublicKey]int{}
	for i, c := range chunks {
		assert.Len(t, c, 2)
		assert.Equal(t, pool[i*2:i*2+2], c)
		for _, k := range c {
			seen[k]++
		}
	}
	assert.Len(t, seen, 8)
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}

	tests := []struct {
		name   string
		n      int
		degree int
		sizes  []int
	}{
		{"more threads than accounts", 3, 10, []int{1, 1, 1}},
		{"uneven", 17, 4, []int{5, 5, 5, 2}},
		{"zero degree", 5, 0, []int{5}},
		{"single", 11, 1, []int{11}},
		{"empty", 0, 3, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkAccounts(keys(tt.n), tt.degree)
			sizes := make([]int, len(got))
			for i, c := range got {
				sizes[i] = len(c)
			}
			assert.Equal(t, tt.sizes, sizes)
		})
	}
}

func TestConfigBuilders(t *testing.T) {
	cfg := NewConfig(KindJito, "", "").
		WithThreads(0).
		WithBuyTip(1000).
		WithBuyFee(global.PriorityFee{UnitLimit: 1, UnitPrice: 2}).
		WithSellConfig(nil, &global.PriorityFee{UnitLimit: 3})

	assert.Equal(t, 1, cfg.Threads)
	assert.Equal(t, DefaultEndpoint(KindJito), cfg.Endpoint)
	require.NotNil(t, cfg.BuyTip)
	assert.Equal(t, uint64(1000), *cfg.BuyTip)
	assert.Nil(t, cfg.SellTip)
	assert.Equal(t, uint32(3), cfg.SellFee.UnitLimit)
}

func TestBuildRuntimesShardsTips(t *testing.T) {
	cfg := NewConfig(KindNextBlock, "http://127.0.0.1:1", "tok").WithThreads(4)
	runtimes, err := BuildRuntimes(cfg, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	require.Len(t, runtimes, 4)

	chunks := ChunkAccounts(KindNextBlock.TipAccounts(), 4)
	for i, rt := range runtimes {
		assert.Equal(t, "nextblock", rt.Name())
		for j := 0; j < 10; j++ {
			tip, ok := rt.Client.TipAccount()
			require.True(t, ok)
			assert.Contains(t, chunks[i], tip)
		}
	}
}

func TestBuildRuntimesDefaultHasNoTips(t *testing.T) {
	runtimes, err := BuildRuntimes(NewConfig(KindDefault, "http://127.0.0.1:1", "").WithThreads(3))
	require.NoError(t, err)
	require.Len(t, runtimes, 3)
	for _, rt := range runtimes {
		_, ok := rt.Client.TipAccount()
		assert.False(t, ok)
	}
}

func TestBuildRuntimesRejectsBadConfig(t *testing.T) {
	_, err := BuildRuntimes(Config{Kind: "carrier-pigeon"})
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)

	_, err = BuildRuntimes(Config{Kind: KindDefault})
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)

	_, err = BuildAll([]Config{NewConfig(KindDefault, "http://x", ""), {Kind: "nope"}})
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
}

func TestBuildAllKinds(t *testing.T) {
	var cfgs []Config
	for _, k := range []Kind{KindJito, KindNextBlock, KindBlox, KindTemporal, KindZeroSlot, KindBlockRazor, KindBlockRazorGrpc, KindAstralane} {
		cfgs = append(cfgs, NewConfig(k, "", "token"))
	}
	runtimes, err := BuildAll(cfgs)
	require.NoError(t, err)
	require.Len(t, runtimes, len(cfgs))
	for i, rt := range runtimes {
		_, ok := rt.Client.TipAccount()
		assert.True(t, ok, cfgs[i].Kind)
		assert.Equal(t, cfgs[i].Kind, rt.Config.Kind)
	}
}
