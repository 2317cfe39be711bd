package svc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerokon/solana-trading-sdk/internal/config"
)

func TestNewServiceContext(t *testing.T) {
	c := config.Config{Trader: config.TraderConf{
		RPC:         "http://127.0.0.1:8899",
		SendTimeout: time.Second,
		SWQoS: []config.SWQoSConf{
			{Kind: "default", Endpoint: "http://127.0.0.1:8899", Threads: 1},
			{Kind: "nextblock", Token: "tok", Threads: 2, BuyTip: "0.001"},
		},
	}}
	ctx, err := NewServiceContext(c)
	require.NoError(t, err)
	assert.Len(t, ctx.Client.Endpoint().Runtimes(), 3)
	assert.Len(t, ctx.Client.Venues(), 4)

	c.Trader.SWQoS[1].BuyTip = "-1"
	_, err = NewServiceContext(c)
	assert.Error(t, err)
}
