// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gocapnp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	capnp "capnproto.org/go/capnp/v3"
	"github.com/matheusd/calcproto/calc"
)

// ErrServerClosed is returned when the server closes the connection
// instead of replying.
var ErrServerClosed = errors.New("gocapnp: server closed connection")

type gocapnpClient struct {
	c    net.Conn
	enc  *capnp.Encoder
	dec  *capnp.Decoder
	stop func() bool

	broken error
}

func (c *gocapnpClient) fail(err error) error {
	c.broken = err
	c.c.Close()
	return fmt.Errorf("%w: %w", calc.ErrClientBroken, err)
}

func (c *gocapnpClient) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	if c.broken != nil {
		return nil, fmt.Errorf("%w: %w", calc.ErrClientBroken, c.broken)
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := c.c.SetDeadline(dl); err != nil {
			return nil, c.fail(err)
		}
		defer c.c.SetDeadline(time.Time{})
	}

	req, err := newFrameMessage(frame)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(req); err != nil {
		return nil, c.fail(fmt.Errorf("unable to send request: %w", err))
	}

	resp, err := c.dec.Decode()
	if errors.Is(err, io.EOF) {
		return nil, c.fail(ErrServerClosed)
	}
	if err != nil {
		return nil, c.fail(fmt.Errorf("unable to read response: %w", err))
	}
	return messageFrame(resp)
}

func (c *gocapnpClient) Close() error {
	c.stop()
	return c.c.Close()
}

func newGoCapnpClient(ctx context.Context, addr string) (*gocapnpClient, error) {
	var dc net.Dialer
	c, err := dc.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	dec := capnp.NewDecoder(c)
	dec.MaxMessageSize = maxMessageSize
	return &gocapnpClient{
		c:    c,
		enc:  capnp.NewEncoder(c),
		dec:  dec,
		stop: context.AfterFunc(ctx, func() { c.Close() }),
	}, nil
}
