package meteora

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/dex"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

func encodePool(t *testing.T, p VirtualPool) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(&p))
	return buf.Bytes()
}

func TestVirtualPoolOffsets(t *testing.T) {
	p := VirtualPool{
		Config:       solana.NewWallet().PublicKey(),
		BaseMint:     solana.NewWallet().PublicKey(),
		BaseReserve:  123,
		QuoteReserve: 456,
	}
	data := encodePool(t, p)
	assert.Equal(t, p.Config[:], data[72:104])
	assert.Equal(t, p.BaseMint[:], data[BaseMintOffset:BaseMintOffset+32])
	assert.Equal(t, uint64(123), binary.LittleEndian.Uint64(data[232:240]))
	assert.Equal(t, uint64(456), binary.LittleEndian.Uint64(data[240:248]))
}

func TestDBCGetPoolScansByBaseMint(t *testing.T) {
	var h solana.Hash
	h[0] = 1
	mem := ledger.NewMemory(h)
	d := NewDBC(mem)
	mint := solana.NewWallet().PublicKey()

	_, err := d.GetPool(context.Background(), mint)
	assert.ErrorIs(t, err, xerr.ErrPoolUninitialized)

	config := solana.NewWallet().PublicKey()
	poolKey := solana.NewWallet().PublicKey()
	mem.SetAccount(solana.NewWallet().PublicKey(), ledger.Account{Owner: DbcProgram,
		Data: encodePool(t, VirtualPool{BaseMint: solana.NewWallet().PublicKey(), BaseReserve: 1, QuoteReserve: 1})})
	mem.SetAccount(poolKey, ledger.Account{Owner: DbcProgram,
		Data: encodePool(t, VirtualPool{Config: config, BaseMint: mint, BaseReserve: 800_000_000_000_000, QuoteReserve: 5_000_000_000})})

	info, err := d.GetPool(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, poolKey, info.Pool)
	assert.Equal(t, &config, info.Extra())
	assert.Equal(t, uint64(800_000_000_000_000), info.TokenReserves)
	assert.Equal(t, uint64(5_000_000_000), info.SolReserves)
}

func TestDBCSwapLayout(t *testing.T) {
	d := NewDBC(nil)
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	config := solana.NewWallet().PublicKey()
	tokenAccount := global.AssociatedTokenAddress(payer, mint)

	_, err := d.BuildBuyInstruction(payer, mint, nil, tokenAccount, dex.SwapInfo{})
	assert.ErrorIs(t, err, xerr.ErrInstructionBuild)

	buy, err := d.BuildBuyInstruction(payer, mint, &config, tokenAccount, dex.SwapInfo{TokenAmount: 9, SolAmount: 4})
	require.NoError(t, err)
	data, err := buy.Data()
	require.NoError(t, err)
	assert.Equal(t, swapDisc, data[:8])
	assert.Equal(t, uint64(4), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(data[16:24]))

	pool, err := DerivePoolPDA(global.WSOL, mint, config)
	require.NoError(t, err)
	accounts := buy.Accounts()
	require.Len(t, accounts, 15)
	assert.Equal(t, config, accounts[1].PublicKey)
	assert.Equal(t, pool, accounts[2].PublicKey)
	assert.Equal(t, global.AssociatedTokenAddress(payer, global.WSOL), accounts[3].PublicKey)
	assert.Equal(t, tokenAccount, accounts[4].PublicKey)
	assert.True(t, accounts[9].IsSigner)

	sell, err := d.BuildSellInstruction(payer, mint, nil, &config, dex.SwapInfo{TokenAmount: 9, SolAmount: 4})
	require.NoError(t, err)
	data, err = sell.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, tokenAccount, sell.Accounts()[3].PublicKey)
	assert.Equal(t, global.AssociatedTokenAddress(payer, global.WSOL), sell.Accounts()[4].PublicKey)
}

func TestPoolPDAIgnoresMintOrder(t *testing.T) {
	a, b, config := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	p1, err := DerivePoolPDA(a, b, config)
	require.NoError(t, err)
	p2, err := DerivePoolPDA(b, a, config)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
