// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grpc

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type grpcFactory struct{}

func (f grpcFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newGRPCServer(addr, log)
}

func (f grpcFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newGRPCClient(ctx, addr)
}

func GRPCFactoryIniter() calc.Factory {
	return grpcFactory{}
}
