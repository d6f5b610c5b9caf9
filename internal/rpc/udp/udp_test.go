// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()
	sh, err := calc.NewServerHarness(t.Context(), t, UDPFactoryIniter())
	require.NoError(t, err)
	return sh.Addr
}

// exchange sends raw datagrams from a plain socket so the reply's
// destination can be checked.
func exchange(t *testing.T, pc net.PacketConn, to net.Addr, datagram []byte) wire.Response {
	t.Helper()
	_, err := pc.WriteTo(datagram, to)
	require.NoError(t, err)

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, MaxDatagramSize)
	n, from, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, to.String(), from.String())

	resp, err := wire.DecodeResponse(buf[:n])
	require.NoError(t, err)
	return resp
}

func TestServerRepliesToEveryDatagram(t *testing.T) {
	addr := startServer(t)
	to, err := net.ResolveUDPAddr("udp", addr)
	require.NoError(t, err)

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	// Empty datagram.
	assert.Equal(t, wire.LengthError(0), exchange(t, pc, to, nil))

	// TML disagrees with the datagram size; the id is not echoed.
	frame, err := wire.EncodeRequest(wire.OpAdd, 1, 2, 777)
	require.NoError(t, err)
	assert.Equal(t, wire.LengthError(0), exchange(t, pc, to, append(frame, 0)))

	// Unknown opcode still echoes the id of a well-formed request.
	req := wire.Request{
		TotalLength:  wire.RequestHeaderSize,
		OpCode:       wire.OpCode(9),
		RequestID:    31,
		OpNameLength: 0,
	}
	assert.Equal(t, wire.LengthError(31), exchange(t, pc, to, req.Encode()))

	// Division by zero.
	frame, err = wire.EncodeRequest(wire.OpDiv, 5, 0, 32)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(0, wire.ErrCodeInvalid, 32), exchange(t, pc, to, frame))

	frame, err = wire.EncodeRequest(wire.OpDiv, 20, 4, 33)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(5, wire.ErrCodeOK, 33), exchange(t, pc, to, frame))
}

func TestClientReplyTimeout(t *testing.T) {
	// Nobody answers on this socket.
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	c, err := newUDPClient(t.Context(), pc.LocalAddr().String())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = calc.Call(ctx, c, wire.OpAdd, 1, 2, 3)
	require.Error(t, err)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

// lateServer answers its first request only after delay, with a wrong
// result, then answers the following requests right away.
func lateServer(t *testing.T, delay time.Duration) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, MaxDatagramSize)
		for i := 0; ; i++ {
			n, from, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			req, err := wire.DecodeRequest(buf[:n])
			if err != nil {
				return
			}
			resp := wire.NewResponse(req.Operand1+req.Operand2, wire.ErrCodeOK, req.RequestID)
			if i == 0 {
				time.Sleep(delay)
				resp.Result = 111
			}
			pc.WriteTo(resp.Encode(), from)
		}
	}()
	return pc.LocalAddr().String()
}

func TestClientDiscardsLateReply(t *testing.T) {
	addr := lateServer(t, 300*time.Millisecond)

	c, err := newUDPClient(t.Context(), addr)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	_, err = calc.Call(ctx, c, wire.OpAdd, 1, 1, 1)
	cancel()
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	require.True(t, ne.Timeout())

	// The reply to request 1 arrives while request 2 is outstanding.
	resp, err := calc.Call(t.Context(), c, wire.OpAdd, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(4, wire.ErrCodeOK, 2), resp)
}

func TestClientCloseStopsContextWatch(t *testing.T) {
	c, err := newUDPClient(context.Background(), "127.0.0.1:9")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.False(t, c.stop())
}
