// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package udp

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/matheusd/calcproto/internal/wire"
)

// DefaultReplyTimeout bounds the wait for a reply when the call's context
// has no deadline. Lost datagrams are never retransmitted.
const DefaultReplyTimeout = 5 * time.Second

type udpClient struct {
	c    net.Conn
	buf  []byte
	stop func() bool
}

// replyID is the id the server answers frame with: the request's own id
// when it decodes, 0 otherwise.
func replyID(frame []byte) uint16 {
	req, err := wire.DecodeRequest(frame)
	if err != nil {
		return 0
	}
	return req.RequestID
}

// stale reports whether reply is a response to some other request, such
// as a late answer to a call that already timed out.
func stale(reply []byte, want uint16) bool {
	if len(reply) != wire.ResponseSize || reply[0] != wire.ResponseSize {
		return false
	}
	return binary.BigEndian.Uint16(reply[6:8]) != want
}

func (c *udpClient) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	dl, ok := ctx.Deadline()
	if !ok {
		dl = time.Now().Add(DefaultReplyTimeout)
	}
	if err := c.c.SetDeadline(dl); err != nil {
		return nil, err
	}

	if _, err := c.c.Write(frame); err != nil {
		return nil, fmt.Errorf("unable to send datagram: %w", err)
	}
	want := replyID(frame)
	for {
		n, err := c.c.Read(c.buf)
		if err != nil {
			return nil, fmt.Errorf("unable to receive reply: %w", err)
		}
		if !stale(c.buf[:n], want) {
			return append([]byte(nil), c.buf[:n]...), nil
		}
	}
}

func (c *udpClient) Close() error {
	c.stop()
	return c.c.Close()
}

func newUDPClient(ctx context.Context, addr string) (*udpClient, error) {
	var dc net.Dialer
	c, err := dc.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, err
	}
	return &udpClient{
		c:    c,
		buf:  make([]byte, MaxDatagramSize),
		stop: context.AfterFunc(ctx, func() { c.Close() }),
	}, nil
}
