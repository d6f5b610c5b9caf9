// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tcp

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type tcpFactory struct{}

func (f tcpFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newTCPServer(addr, log)
}

func (f tcpFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newTCPClient(ctx, addr)
}

func TCPFactoryIniter() calc.Factory {
	return tcpFactory{}
}
