// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package websocket

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheusd/calcproto/calc"
)

type wsClient struct {
	conn *websocket.Conn
	stop func() bool

	// broken is the failure after which a late reply may still be in
	// flight on the connection.
	broken error
}

func (c *wsClient) fail(err error) error {
	c.broken = err
	c.conn.Close()
	return fmt.Errorf("%w: %w", calc.ErrClientBroken, err)
}

func (c *wsClient) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	if c.broken != nil {
		return nil, fmt.Errorf("%w: %w", calc.ErrClientBroken, c.broken)
	}
	dl, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(dl); err != nil {
		return nil, c.fail(err)
	}
	if err := c.conn.SetReadDeadline(dl); err != nil {
		return nil, c.fail(err)
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, c.fail(fmt.Errorf("unable to write request: %w", err))
	}
	_, resp, err := c.conn.ReadMessage()
	if err != nil {
		return nil, c.fail(fmt.Errorf("unable to read response: %w", err))
	}
	return resp, nil
}

func (c *wsClient) Close() error {
	c.stop()
	if c.broken == nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	return c.conn.Close()
}

func newWSClient(ctx context.Context, addr string) (*wsClient, error) {
	url := "ws://" + addr + Path
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsClient{
		conn: conn,
		stop: context.AfterFunc(ctx, func() { conn.Close() }),
	}, nil
}
