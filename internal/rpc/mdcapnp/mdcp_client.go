// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mdcapnp

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/rs/zerolog"
	rpc "matheusd.com/mdcapnp/capnprpc"
)

type client struct {
	c      net.Conn
	api    calcAPI
	cancel context.CancelFunc
}

func (c *client) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	return c.api.Evaluate(frame).Wait(ctx)
}

func (c *client) Close() error {
	err := c.c.Close()
	c.cancel()
	return err
}

var clientCount atomic.Uint64

func newClient(ctx context.Context, addr string) (*client, error) {
	// Try to connect.
	var dc net.Dialer
	c, err := dc.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// The vat and the connection live until the client is closed or ctx
	// is done.
	vatCtx, cancel := context.WithCancel(ctx)
	context.AfterFunc(vatCtx, func() { c.Close() })

	l := zerolog.Nop()
	cnb := clientCount.Add(1)
	vat := rpc.NewVat(
		rpc.WithName(fmt.Sprintf("client%02d", cnb)),
		rpc.WithLogger(&l),
	)
	go vat.Run(vatCtx)

	remoteName := c.RemoteAddr().String()
	rv := vat.UseRemoteVat(rpc.NewIOTransport(remoteName, c))

	// Fetch the bootstrap cap (API reference).
	boot := rv.Bootstrap()
	if _, err := boot.Wait(ctx); err != nil {
		cancel()
		return nil, err
	}

	return &client{c: c, api: calcAPIFromBootstrap(boot), cancel: cancel}, nil
}
