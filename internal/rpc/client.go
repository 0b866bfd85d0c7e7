package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
)

// #region client-struct
// Client wraps a gRPC connection to a stakeplan server.
type Client struct {
	conn   *grpc.ClientConn
	client EngineServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to a stakeplan server. The connection is established lazily.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewEngineServiceClient(conn),
	}, nil
}

// NewClientWithConn builds a Client on a connection the caller owns. Close is a no-op.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{client: NewEngineServiceClient(cc)}
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc EngineServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region run
// Run sends a raw input record and decodes the returned envelope.
func (c *Client) Run(ctx context.Context, raw map[string]any) (engine.Result, error) {
	in, err := structpb.NewStruct(raw)
	if err != nil {
		return engine.Result{}, fmt.Errorf("encode input: %w", err)
	}

	out, err := c.client.Run(ctx, in)
	if err != nil {
		return engine.Result{}, fmt.Errorf("run rpc: %w", err)
	}

	data, err := protojson.Marshal(out)
	if err != nil {
		return engine.Result{}, fmt.Errorf("decode result: %w", err)
	}
	var res engine.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return engine.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

// #endregion run
