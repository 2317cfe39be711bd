package rpcs

import (
	"context"

	"github.com/BlockRazorinc/solana-trader-client-go/pb/serverpb"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kerokon/solana-trading-sdk/internal/global"
)

type relayFunc func(ctx context.Context, req *serverpb.SendRequest) (string, error)

// BlzChannel is the gRPC flavour of the BlockRazor relay.
type BlzChannel struct {
	send relayFunc
	conn *grpc.ClientConn
	tips *TipPicker
}

type Authentication struct {
	auth string
}

func (a *Authentication) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"apiKey": a.auth}, nil
}

func (a *Authentication) RequireTransportSecurity() bool {
	return false
}

// NewBlzChannel dials a regional endpoint (plaintext, per-RPC apiKey metadata).
// The connection is lazy; the first send establishes it.
func NewBlzChannel(endpoint, apiKey string, tips *TipPicker) (*BlzChannel, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(&Authentication{apiKey}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "dial blockrazor %s", endpoint)
	}
	client := serverpb.NewServerClient(conn)
	return &BlzChannel{
		conn: conn,
		tips: tips,
		send: func(ctx context.Context, req *serverpb.SendRequest) (string, error) {
			res, err := client.SendTransaction(ctx, req)
			if err != nil {
				return "", err
			}
			return res.Signature, nil
		},
	}, nil
}

func (c *BlzChannel) Name() string { return "blockrazor-grpc" }

func (c *BlzChannel) TipAccount() (solana.PublicKey, bool) { return c.tips.Pick() }

func (c *BlzChannel) SendTransaction(ctx context.Context, tx *global.Transaction) error {
	sig, err := c.send(ctx, &serverpb.SendRequest{
		Transaction:      tx.Base64(),
		Mode:             "fast",
		RevertProtection: true,
	})
	if err != nil {
		logx.WithContext(ctx).Errorf("❌ [blockrazor-grpc] send %s failed: %v", tx.Signature(), err)
		return errors.Wrap(err, "blockrazor grpc send")
	}
	logx.WithContext(ctx).Infof("✅ [blockrazor-grpc] tx sent: %s", sig)
	return nil
}

// SendTransactions has no batch RPC to use; sends go one by one and stop at the first failure.
func (c *BlzChannel) SendTransactions(ctx context.Context, txs []*global.Transaction) error {
	for _, tx := range txs {
		if err := c.SendTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (c *BlzChannel) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
