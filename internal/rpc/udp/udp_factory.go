// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package udp

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type udpFactory struct{}

func (f udpFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newUDPServer(addr, log)
}

func (f udpFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newUDPClient(ctx, addr)
}

func UDPFactoryIniter() calc.Factory {
	return udpFactory{}
}
