// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package websocket

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type wsFactory struct{}

func (f wsFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newWSServer(addr, log)
}

func (f wsFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newWSClient(ctx, addr)
}

func WSFactoryIniter() calc.Factory {
	return wsFactory{}
}
