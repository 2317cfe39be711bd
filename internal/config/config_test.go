package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
)

const sample = `
Trader:
  RPC: http://127.0.0.1:8899
  TxVersion: legacy
  SWQoS:
    - Kind: jito
      Threads: 2
      BuyTip: "0.001"
      BuyFee:
        UnitLimit: 120000
        UnitPrice: 50000
    - Kind: default
      Endpoint: http://127.0.0.1:8899
      Header: "x-api-key: secret"
      SellTip: "0.0005"
Keys:
  Payer: ${TRADER_TEST_PAYER}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))
	return file
}

func TestLoad(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	t.Setenv("TRADER_TEST_PAYER", payer.String())

	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "TRADER", c.Banner.Text)
	assert.Equal(t, 10*time.Second, c.Trader.SendTimeout)
	assert.Equal(t, uint64(300), c.Trader.SlippageBps)
	assert.Equal(t, global.TxLegacy, c.Trader.Version())

	key, err := c.Keys.PayerKey()
	require.NoError(t, err)
	assert.Equal(t, payer.PublicKey(), key.PublicKey())
	nonce, err := c.Keys.NonceAccount()
	require.NoError(t, err)
	assert.Nil(t, nonce)

	relays, err := c.Trader.Relays()
	require.NoError(t, err)
	require.Len(t, relays, 2)

	jito := relays[0]
	assert.Equal(t, swqos.KindJito, jito.Kind)
	assert.Equal(t, swqos.DefaultEndpoint(swqos.KindJito), jito.Endpoint)
	assert.Equal(t, 2, jito.Threads)
	require.NotNil(t, jito.BuyTip)
	assert.Equal(t, uint64(1_000_000), *jito.BuyTip)
	assert.Equal(t, &global.PriorityFee{UnitLimit: 120_000, UnitPrice: 50_000}, jito.BuyFee)
	assert.Nil(t, jito.SellTip)
	assert.Nil(t, jito.SellFee)

	def := relays[1]
	assert.Equal(t, "x-api-key", def.Header.Key)
	assert.Equal(t, "secret", def.Header.Value)
	require.NotNil(t, def.SellTip)
	assert.Equal(t, uint64(500_000), *def.SellTip)
	assert.Equal(t, 1, def.Threads)
}

func TestValidate(t *testing.T) {
	valid := TraderConf{
		RPC:         "http://127.0.0.1:8899",
		SendTimeout: time.Second,
		SWQoS:       []SWQoSConf{{Kind: "jito", Threads: 1, BuyTip: "0.001"}},
	}
	assert.NoError(t, Config{Trader: valid}.Validate())

	for name, mutate := range map[string]func(*TraderConf){
		"unknown kind": func(c *TraderConf) { c.SWQoS[0].Kind = "carrier-pigeon" },
		"bad tip":      func(c *TraderConf) { c.SWQoS[0].BuyTip = "lots" },
		"no threads":   func(c *TraderConf) { c.SWQoS[0].Threads = 0 },
		"no relays":    func(c *TraderConf) { c.SWQoS = nil },
		"bad rpc":      func(c *TraderConf) { c.RPC = "not a url" },
		"price without limit": func(c *TraderConf) {
			c.SWQoS[0].SellFee = FeeConf{UnitPrice: 5000}
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := valid
			c.SWQoS = append([]SWQoSConf(nil), valid.SWQoS...)
			mutate(&c)
			assert.Error(t, Config{Trader: c}.Validate())
		})
	}
}

func TestKeysMissing(t *testing.T) {
	_, err := KeysConf{}.PayerKey()
	assert.Error(t, err)
	_, err = KeysConf{Nonce: "not-a-key"}.NonceAccount()
	assert.Error(t, err)
}

func TestBadTip(t *testing.T) {
	_, err := SWQoSConf{Kind: "jito", SellTip: "-1"}.Build()
	assert.Error(t, err)
}

func TestFeeNeedsLimit(t *testing.T) {
	_, err := SWQoSConf{Kind: "jito", BuyFee: FeeConf{UnitPrice: 5000}}.Build()
	assert.Error(t, err)

	cfg, err := SWQoSConf{Kind: "jito", SellFee: FeeConf{UnitLimit: 80_000}}.Build()
	require.NoError(t, err)
	assert.Nil(t, cfg.BuyFee)
	assert.Equal(t, &global.PriorityFee{UnitLimit: 80_000}, cfg.SellFee)
}

func TestLoadShippedConfig(t *testing.T) {
	t.Setenv("TRADER_PAYER_KEY", solana.NewWallet().PrivateKey.String())
	t.Setenv("TRADER_NONCE_ACCOUNT", solana.NewWallet().PublicKey().String())
	t.Setenv("JITO_UUID", "uuid")

	c, err := Load(filepath.Join("..", "..", "etc", "trader.yaml"))
	require.NoError(t, err)
	require.Len(t, c.Trader.SWQoS, 5)
	assert.Equal(t, "default", c.Trader.SWQoS[0].Kind)
	assert.Equal(t, "blockrazor-grpc", c.Trader.SWQoS[4].Kind)

	relays, err := c.Trader.Relays()
	require.NoError(t, err)
	require.Len(t, relays, 5)
	assert.Equal(t, swqos.KindJito, relays[1].Kind)
	assert.Equal(t, "uuid", relays[1].Token)
	assert.Equal(t, 2, relays[1].Threads)
	assert.Equal(t, &global.PriorityFee{UnitLimit: 150_000, UnitPrice: 100_000}, relays[0].BuyFee)

	_, err = c.Keys.PayerKey()
	require.NoError(t, err)
	nonce, err := c.Keys.NonceAccount()
	require.NoError(t, err)
	assert.NotNil(t, nonce)
}
