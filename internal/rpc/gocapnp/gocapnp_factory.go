// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gocapnp

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type gocapnpFactory struct{}

func (f gocapnpFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newGoCapnpServer(addr, log)
}

func (f gocapnpFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newGoCapnpClient(ctx, addr)
}

func GoCapNProtoFactoryIniter() calc.Factory {
	return gocapnpFactory{}
}
