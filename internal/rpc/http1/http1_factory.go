// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package http1

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type http1Factory struct{}

func (f http1Factory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newHttp1Server(addr, log)
}

func (f http1Factory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newHttp1Client(ctx, addr)
}

func HTTP1FactoryIniter() calc.Factory {
	return http1Factory{}
}
