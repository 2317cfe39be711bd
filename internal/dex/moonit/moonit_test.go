package moonit

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
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

func encodeCurve(t *testing.T, c CurveAccount) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(&c))
	return append(buf.Bytes(), make([]byte, 40)...)
}

func TestGetPoolPricesFromLamports(t *testing.T) {
	var h solana.Hash
	mem := ledger.NewMemory(h)
	m := New(mem)
	mint := solana.NewWallet().PublicKey()

	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Initialized())
	assert.False(t, m.UseWSOL())
	assert.Equal(t, dex.Moonit, m.Name())

	_, err := m.GetPool(context.Background(), mint)
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)

	curve, err := CurvePDA(mint)
	require.NoError(t, err)
	mem.SetAccount(curve, ledger.Account{Owner: Program})
	_, err = m.GetPool(context.Background(), mint)
	assert.ErrorIs(t, err, xerr.ErrPoolUninitialized)

	mem.SetAccount(curve, ledger.Account{Owner: Program, Lamports: 2_500_000_000, Data: encodeCurve(t, CurveAccount{
		TotalSupply: 1_000_000_000_000_000_000,
		CurveAmount: 790_000_000_000_000_000,
		Mint:        mint,
	})})
	info, err := m.GetPool(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, curve, info.Pool)
	assert.Nil(t, info.Creator)
	assert.Nil(t, info.Extra())
	assert.Equal(t, uint64(790_000_000_000_000_000), info.TokenReserves)
	assert.Equal(t, InitialVirtualSolReserves+2_500_000_000, info.SolReserves)

	mem.SetAccount(curve, ledger.Account{Owner: Program, Lamports: math.MaxUint64, Data: encodeCurve(t, CurveAccount{CurveAmount: 1})})
	_, err = m.GetPool(context.Background(), mint)
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)
}

func TestTradeLayout(t *testing.T) {
	m := New(nil)
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	tokenAccount := global.AssociatedTokenAddress(payer, mint)
	curve, err := CurvePDA(mint)
	require.NoError(t, err)

	buy, err := m.BuildBuyInstruction(payer, mint, nil, tokenAccount, dex.SwapInfo{TokenAmount: 9, SolAmount: 4})
	require.NoError(t, err)
	assert.Equal(t, Program, buy.ProgramID())
	data, err := buy.Data()
	require.NoError(t, err)
	require.Len(t, data, 33)
	assert.Equal(t, buyMethod, binary.LittleEndian.Uint64(data[:8]))
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(4), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, FixedSideExactIn, data[24])
	assert.Zero(t, binary.LittleEndian.Uint64(data[25:33]))

	accounts := buy.Accounts()
	require.Len(t, accounts, 11)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, tokenAccount, accounts[1].PublicKey)
	assert.Equal(t, curve, accounts[2].PublicKey)
	assert.Equal(t, global.AssociatedTokenAddress(curve, mint), accounts[3].PublicKey)
	assert.Equal(t, DexFee, accounts[4].PublicKey)
	assert.Equal(t, HelioFee, accounts[5].PublicKey)
	assert.Equal(t, mint, accounts[6].PublicKey)
	assert.False(t, accounts[6].IsWritable)
	assert.Equal(t, Config, accounts[7].PublicKey)
	assert.Equal(t, global.TokenProgram, accounts[8].PublicKey)
	assert.Equal(t, global.SystemProgram, accounts[10].PublicKey)

	sell, err := m.BuildSellInstruction(payer, mint, nil, nil, dex.SwapInfo{TokenAmount: 9, SolAmount: 4})
	require.NoError(t, err)
	data, err = sell.Data()
	require.NoError(t, err)
	assert.Equal(t, sellMethod, binary.LittleEndian.Uint64(data[:8]))
	assert.Equal(t, tokenAccount, sell.Accounts()[1].PublicKey)

	custom := solana.NewWallet().PublicKey()
	sell, err = m.BuildSellInstruction(payer, mint, &custom, nil, dex.SwapInfo{TokenAmount: 9})
	require.NoError(t, err)
	assert.Equal(t, custom, sell.Accounts()[1].PublicKey)
}
