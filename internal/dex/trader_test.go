package dex

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/amm"
	"github.com/kerokon/solana-trading-sdk/internal/endpoint"
	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/ledger"
	"github.com/kerokon/solana-trading-sdk/internal/rpcs/rpcstest"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

var fakeProgram = solana.MustPublicKeyFromBase58("dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN")

type fakeVenue struct {
	wsol    bool
	pool    PoolInfo
	poolErr error

	mu            sync.Mutex
	buys          []SwapInfo
	sells         []SwapInfo
	tokenAccounts []solana.PublicKey
	extras        []*solana.PublicKey
}

func (v *fakeVenue) Name() VenueName                  { return "fake" }
func (v *fakeVenue) Initialize(context.Context) error { return nil }
func (v *fakeVenue) Initialized() error               { return nil }
func (v *fakeVenue) UseWSOL() bool                    { return v.wsol }

func (v *fakeVenue) GetPool(context.Context, solana.PublicKey) (PoolInfo, error) {
	return v.pool, v.poolErr
}

func (v *fakeVenue) BuildBuyInstruction(payer, _ solana.PublicKey, extra *solana.PublicKey, tokenAccount solana.PublicKey, swap SwapInfo) (solana.Instruction, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buys = append(v.buys, swap)
	v.tokenAccounts = append(v.tokenAccounts, tokenAccount)
	v.extras = append(v.extras, extra)
	return solana.NewInstruction(fakeProgram, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(tokenAccount).WRITE(),
	}, []byte{1}), nil
}

func (v *fakeVenue) BuildSellInstruction(payer, mint solana.PublicKey, customATA, extra *solana.PublicKey, swap SwapInfo) (solana.Instruction, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sells = append(v.sells, swap)
	v.extras = append(v.extras, extra)
	ata := global.AssociatedTokenAddress(payer, mint)
	if customATA != nil {
		ata = *customATA
	}
	v.tokenAccounts = append(v.tokenAccounts, ata)
	return solana.NewInstruction(fakeProgram, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(ata).WRITE(),
	}, []byte{2}), nil
}

type fakeCreator struct {
	fakeVenue
}

func (c *fakeCreator) BuildCreateInstructions(payer solana.PublicKey, params CreateParams) ([]solana.Instruction, error) {
	return []solana.Instruction{solana.NewInstruction(fakeProgram, solana.AccountMetaSlice{
		solana.Meta(params.Mint.PublicKey()).WRITE().SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(),
	}, []byte{3})}, nil
}

const (
	initialSol   = 30_000_000_000
	initialToken = 1_073_000_000_000_000
)

func blockhash() solana.Hash {
	var h solana.Hash
	h[0] = 7
	return h
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func setup(v Venue) (*Trader, *ledger.Memory, *rpcstest.Relay) {
	mem := ledger.NewMemory(blockhash())
	relay := rpcstest.NewRelay("relay", nil)
	e := endpoint.New(mem, []*swqos.Runtime{{Config: swqos.Config{}, Client: relay}})
	return NewTrader(v, e), mem, relay
}

func curvePool() PoolInfo {
	vault := solana.NewWallet().PublicKey()
	return PoolInfo{
		Pool:          solana.NewWallet().PublicKey(),
		CreatorVault:  &vault,
		SolReserves:   initialSol,
		TokenReserves: initialToken,
	}
}

func TestBuyPricesAgainstPool(t *testing.T) {
	v := &fakeVenue{pool: curvePool()}
	trader, _, relay := setup(v)
	payer := newKey(t)
	mint := solana.NewWallet().PublicKey()

	sigs, err := trader.Buy(context.Background(), payer, mint, 1_000_000_000, 100, nil, 0)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	require.Len(t, v.buys, 1)
	assert.Equal(t, SwapInfo{TokenAmount: 34_612_903_225_806, SolAmount: 1_010_000_000}, v.buys[0])
	assert.Equal(t, v.pool.CreatorVault, v.extras[0])
	assert.Equal(t, global.AssociatedTokenAddress(payer.PublicKey(), mint), v.tokenAccounts[0])

	tx := relay.Sent()[0]
	assert.Equal(t, sigs[0], tx.Signature())
	assert.Equal(t, blockhash(), tx.RecentBlockhash())
	assert.Equal(t, 2, tx.NumInstructions(), "create ATA then buy")
}

func TestBuyWrapsQuoteOnWSOLVenues(t *testing.T) {
	v := &fakeVenue{wsol: true, pool: curvePool()}
	trader, _, relay := setup(v)
	payer := newKey(t)

	_, err := trader.Buy(context.Background(), payer, solana.NewWallet().PublicKey(), 500_000_000, 0, nil, 0)
	require.NoError(t, err)

	tx := relay.Sent()[0]
	require.Equal(t, 6, tx.NumInstructions())
	var programs []solana.PublicKey
	for i := 0; i < tx.NumInstructions(); i++ {
		p, err := tx.ProgramAt(i)
		require.NoError(t, err)
		programs = append(programs, p)
	}
	assert.Equal(t, []solana.PublicKey{
		solana.SPLAssociatedTokenAccountProgramID,
		solana.SPLAssociatedTokenAccountProgramID,
		solana.SystemProgramID,
		solana.TokenProgramID,
		fakeProgram,
		solana.TokenProgramID,
	}, programs)
}

func TestSellEntireBalance(t *testing.T) {
	v := &fakeVenue{pool: curvePool()}
	trader, mem, relay := setup(v)
	payer := newKey(t)
	mint := solana.NewWallet().PublicKey()
	mem.SetTokenBalance(global.AssociatedTokenAddress(payer.PublicKey(), mint), 34_612_903_225_806)

	_, err := trader.Sell(context.Background(), payer, mint, EntireBalance(), 500, nil, true, nil, 0)
	require.NoError(t, err)

	solOut, err := amm.SellSolOut(initialSol, initialToken, 34_612_903_225_806)
	require.NoError(t, err)
	require.Len(t, v.sells, 1)
	assert.Equal(t, uint64(34_612_903_225_806), v.sells[0].TokenAmount)
	assert.Equal(t, amm.WithSlippageSell(solOut, 500), v.sells[0].SolAmount)
	assert.Equal(t, 2, relay.Sent()[0].NumInstructions(), "sell then close mint ATA")
}

func TestSellExplicitAmountSkipsBalanceLookup(t *testing.T) {
	v := &fakeVenue{wsol: true, pool: curvePool()}
	trader, mem, relay := setup(v)
	custom := solana.NewWallet().PublicKey()

	_, err := trader.Sell(context.Background(), newKey(t), solana.NewWallet().PublicKey(), Amount(1_000_000), 0, &custom, false, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, mem.Calls("GetTokenAccountBalance"))
	assert.Equal(t, custom, v.tokenAccounts[0])
	assert.Equal(t, 3, relay.Sent()[0].NumInstructions(), "WSOL ATA, sell, close WSOL ATA")
}

func TestFetchFailureAbortsBeforeSubmission(t *testing.T) {
	v := &fakeVenue{poolErr: xerr.Ledger(errors.New("boom"), "get pool")}
	trader, _, relay := setup(v)

	_, err := trader.Buy(context.Background(), newKey(t), solana.NewWallet().PublicKey(), 1, 0, nil, 0)
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)

	_, err = trader.Sell(context.Background(), newKey(t), solana.NewWallet().PublicKey(), EntireBalance(), 0, nil, false, nil, 0)
	assert.ErrorIs(t, err, xerr.ErrLedgerQuery)
	assert.Empty(t, relay.Sent())
}

func TestEmptyPoolIsUninitialized(t *testing.T) {
	trader, _, relay := setup(&fakeVenue{pool: PoolInfo{Pool: solana.NewWallet().PublicKey()}})
	_, err := trader.Buy(context.Background(), newKey(t), solana.NewWallet().PublicKey(), 1_000, 0, nil, 0)
	assert.ErrorIs(t, err, xerr.ErrPoolUninitialized)
	assert.Empty(t, relay.Sent())
}

func TestBatchBuyRunsReservesForward(t *testing.T) {
	v := &fakeVenue{pool: curvePool()}
	trader, _, relay := setup(v)
	a, b := newKey(t), newKey(t)
	mint := solana.NewWallet().PublicKey()

	sigs, err := trader.BatchBuy(context.Background(), mint, 0, nil, 0, []BatchBuyItem{
		{Payer: a, SolAmount: 1_000_000_000},
		{Payer: b, SolAmount: 1_000_000_000},
	})
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	first, err := amm.BuyTokenOut(initialSol, initialToken, 1_000_000_000)
	require.NoError(t, err)
	second, err := amm.BuyTokenOut(initialSol+1_000_000_000, initialToken-first, 1_000_000_000)
	require.NoError(t, err)
	require.Len(t, v.buys, 2)
	assert.Equal(t, first, v.buys[0].TokenAmount)
	assert.Equal(t, second, v.buys[1].TokenAmount)
	assert.Less(t, second, first)

	assert.Equal(t, global.AssociatedTokenAddress(b.PublicKey(), mint), v.tokenAccounts[1])
	batches := relay.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, a.PublicKey(), batches[0][0].Payer())
	assert.Equal(t, b.PublicKey(), batches[0][1].Payer())
}

func TestBatchSellUsesItemTokenAmount(t *testing.T) {
	v := &fakeVenue{pool: curvePool()}
	trader, _, _ := setup(v)

	_, err := trader.BatchSell(context.Background(), solana.NewWallet().PublicKey(), 100, nil, 0, []BatchSellItem{
		{Payer: newKey(t), TokenAmount: 5_000_000},
		{Payer: newKey(t), TokenAmount: 7_000_000, CloseMintATA: true},
	})
	require.NoError(t, err)

	reserves := amm.Reserves{Sol: initialSol, Token: initialToken}
	for i, want := range []uint64{5_000_000, 7_000_000} {
		out, err := reserves.Sell(want)
		require.NoError(t, err)
		assert.Equal(t, want, v.sells[i].TokenAmount)
		assert.Equal(t, amm.WithSlippageSell(out, 100), v.sells[i].SolAmount)
	}

	_, err = trader.BatchSell(context.Background(), solana.NewWallet().PublicKey(), 0, nil, 0, nil)
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
}

func TestCreate(t *testing.T) {
	trader, _, _ := setup(&fakeVenue{})
	_, err := trader.Create(context.Background(), newKey(t), CreateParams{Mint: newKey(t)}, nil, 0)
	assert.ErrorIs(t, err, xerr.ErrUnsupported)

	trader, _, relay := setup(&fakeCreator{})
	payer, mint := newKey(t), newKey(t)
	sigs, err := trader.Create(context.Background(), payer, CreateParams{Mint: mint, Name: "n", Symbol: "S", URI: "u"}, nil, 0)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	tx := relay.Sent()[0]
	assert.Equal(t, payer.PublicKey(), tx.Payer())
	assert.Len(t, tx.Signatures(), 2, "payer and mint both sign")
}

func TestCreateATAModes(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ata := global.AssociatedTokenAddress(payer, mint)

	account, instrs, err := CreateATANone.Instructions(payer, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, account)
	assert.Empty(t, instrs)

	account, instrs, err = CreateATAIdempotent.Instructions(payer, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, account)
	require.Len(t, instrs, 1)

	account, instrs, err = CreateWithSeed("bot-1").Instructions(payer, mint)
	require.NoError(t, err)
	assert.NotEqual(t, ata, account)
	assert.Len(t, instrs, 2)

	_, _, err = CreateWithSeed("").Instructions(payer, mint)
	assert.ErrorIs(t, err, xerr.ErrInvalidArgument)
}

func TestPoolExtraPrefersCreatorVault(t *testing.T) {
	vault, config := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	assert.Equal(t, &vault, PoolInfo{CreatorVault: &vault, Config: &config}.Extra())
	assert.Equal(t, &config, PoolInfo{Config: &config}.Extra())
	assert.Nil(t, PoolInfo{}.Extra())
}
