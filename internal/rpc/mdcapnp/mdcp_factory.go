// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mdcapnp

import (
	"context"

	"github.com/matheusd/calcproto/calc"
	"github.com/rs/zerolog"
)

type mdcapFactory struct{}

func (f mdcapFactory) NewServer(addr string, log zerolog.Logger) (calc.Server, error) {
	return newServer(addr, log)
}

func (f mdcapFactory) NewClient(ctx context.Context, addr string) (calc.Client, error) {
	return newClient(ctx, addr)
}

func MDCapNProtoFactoryIniter() calc.Factory {
	return mdcapFactory{}
}
