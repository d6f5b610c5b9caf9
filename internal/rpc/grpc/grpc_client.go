// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grpc

import (
	"context"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type grpcClient struct {
	conn *grpc.ClientConn
	stop func() bool
}

func (c *grpcClient) RoundTrip(ctx context.Context, b []byte) ([]byte, error) {
	out := new(frame)
	if err := c.conn.Invoke(ctx, evaluateMethod, &frame{b: b}, out); err != nil {
		return nil, err
	}
	return out.b, nil
}

func (c *grpcClient) Close() error {
	c.stop()
	return c.conn.Close()
}

func newGRPCClient(ctx context.Context, addr string) (*grpcClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rawCodec{})),
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}

	return &grpcClient{
		conn: conn,
		stop: context.AfterFunc(ctx, func() { conn.Close() }),
	}, nil
}
