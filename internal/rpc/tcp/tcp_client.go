// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/binutils"
)

// ErrServerClosed is returned when the server closes the connection
// instead of replying.
var ErrServerClosed = errors.New("tcp: server closed connection")

type tcpClient struct {
	aux    []byte
	c      net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	stop   func() bool

	// broken is the failure that left the stream in an unknown state.
	broken error
}

// fail closes the connection. A request or reply may be partially
// transferred, so no later exchange can be framed reliably.
func (c *tcpClient) fail(err error) error {
	c.broken = err
	c.c.Close()
	return fmt.Errorf("%w: %w", calc.ErrClientBroken, err)
}

func (c *tcpClient) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	if c.broken != nil {
		return nil, fmt.Errorf("%w: %w", calc.ErrClientBroken, c.broken)
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := c.c.SetDeadline(dl); err != nil {
			return nil, c.fail(err)
		}
		defer c.c.SetDeadline(time.Time{})
	}

	if err := binutils.WriteFrame(c.writer, frame); err != nil {
		return nil, c.fail(fmt.Errorf("unable to send request: %w", err))
	}

	resp, err := binutils.ReadFrame(c.reader, c.aux)
	if errors.Is(err, io.EOF) {
		return nil, c.fail(ErrServerClosed)
	}
	if err != nil {
		return nil, c.fail(fmt.Errorf("unable to read response: %w", err))
	}
	return append([]byte(nil), resp...), nil
}

func (c *tcpClient) Close() error {
	c.stop()
	return c.c.Close()
}

func newTCPClient(ctx context.Context, addr string) (*tcpClient, error) {
	// Try to connect.
	var dc net.Dialer
	c, err := dc.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &tcpClient{
		c:      c,
		reader: bufio.NewReader(c),
		writer: bufio.NewWriter(c),
		aux:    binutils.NewFrameBuffer(),
		stop:   context.AfterFunc(ctx, func() { c.Close() }),
	}, nil
}
