package svc

import (
	"github.com/kerokon/solana-trading-sdk/internal/client"
	"github.com/kerokon/solana-trading-sdk/internal/config"
)

type ServiceContext struct {
	Config config.Config

	Client *client.TradingClient
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	relays, err := c.Trader.Relays()
	if err != nil {
		return nil, err
	}
	cli, err := client.New(client.Config{
		RPCURL:      c.Trader.RPC,
		SWQoS:       relays,
		SendTimeout: c.Trader.SendTimeout,
		TxVersion:   c.Trader.Version(),
	})
	if err != nil {
		return nil, err
	}
	return &ServiceContext{
		Config: c,
		Client: cli,
	}, nil
}
