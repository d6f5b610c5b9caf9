// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMessagesAreFrames(t *testing.T) {
	ctx := t.Context()
	sh, err := calc.NewServerHarness(ctx, t, WSFactoryIniter())
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+sh.Addr+Path, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := wire.EncodeRequest(wire.OpOr, 12, 10, 3)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	mt, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	resp, err := wire.DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(14, wire.ErrCodeOK, 3), resp)
}

func TestIsPeerClose(t *testing.T) {
	assert.True(t, isPeerClose(&websocket.CloseError{Code: websocket.CloseNormalClosure}))
	assert.True(t, isPeerClose(io.ErrUnexpectedEOF))
	assert.False(t, isPeerClose(&websocket.CloseError{Code: websocket.CloseMessageTooBig}))
	assert.False(t, isPeerClose(errors.New("boom")))
}

func TestClientBrokenAfterTimeout(t *testing.T) {
	ctx := t.Context()
	sh, err := calc.NewServerHarness(ctx, t, WSFactoryIniter())
	require.NoError(t, err)

	c, err := newWSClient(ctx, sh.Addr)
	require.NoError(t, err)
	defer c.Close()

	expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
	defer cancel()
	_, err = calc.Call(expired, c, wire.OpAdd, 1, 1, 1)
	require.ErrorIs(t, err, calc.ErrClientBroken)

	_, err = calc.Call(ctx, c, wire.OpAdd, 1, 1, 2)
	require.ErrorIs(t, err, calc.ErrClientBroken)
}

func TestClientCloseStopsContextWatch(t *testing.T) {
	sh, err := calc.NewServerHarness(t.Context(), t, WSFactoryIniter())
	require.NoError(t, err)

	c, err := newWSClient(context.Background(), sh.Addr)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.False(t, c.stop())
}
