// Package stockgrpc is the streaming RPC client of the backend stock service.
package stockgrpc

import (
	"context"
	"fmt"

	"github.com/akhdanrgya/teluhub-client/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const DefaultTrackStockMethod = "/stock.StockService/TrackStock"

// Stream yields stock updates until the server ends it or ctx is cancelled.
type Stream interface {
	Recv() (*model.StockUpdate, error)
}

type Client struct {
	conn   *grpc.ClientConn
	method string
}

// NewClient does not connect; the connection is established on the first
// TrackStock. Plaintext transport is used unless opts override it.
func NewClient(target, method string, opts ...grpc.DialOption) (*Client, error) {
	if method == "" {
		method = DefaultTrackStockMethod
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("stockgrpc: new client %s: %w", target, err)
	}
	return &Client{conn: conn, method: method}, nil
}

// TrackStock sends one request for productID and returns the server stream.
// Cancelling ctx ends the stream.
func (c *Client) TrackStock(ctx context.Context, productID uint64) (Stream, error) {
	desc := &grpc.StreamDesc{StreamName: "TrackStock", ServerStreams: true}

	cs, err := c.conn.NewStream(ctx, desc, c.method, grpc.ForceCodec(Codec{}))
	if err != nil {
		return nil, err
	}
	if err := cs.SendMsg(&TrackStockRequest{ProductID: productID}); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return &stream{cs: cs}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

type stream struct {
	cs grpc.ClientStream
}

func (s *stream) Recv() (*model.StockUpdate, error) {
	var resp StockUpdateResponse
	if err := s.cs.RecvMsg(&resp); err != nil {
		return nil, err
	}
	return &model.StockUpdate{ProductID: resp.ProductID, NewStock: resp.NewStock}, nil
}
