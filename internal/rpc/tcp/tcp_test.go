// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/binutils"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSession runs a session over an in-memory pipe and returns the
// client end plus a channel with the session's result.
func startSession(t *testing.T) (net.Conn, <-chan error) {
	t.Helper()
	cli, srv := net.Pipe()
	t.Cleanup(func() { cli.Close() })

	disp := &ops.Dispatcher{RecoverID: true}
	sess := newSession(srv, disp, zerolog.Nop())
	done := make(chan error, 1)
	go func() {
		done <- sess.run()
		srv.Close()
	}()
	return cli, done
}

func waitSession(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}

func TestSessionOrderedResponses(t *testing.T) {
	cli, done := startSession(t)

	const n = 20
	var stream []byte
	for i := range n {
		frame, err := wire.EncodeRequest(wire.OpMul, int32(i), 3, uint16(i))
		require.NoError(t, err)
		stream = append(stream, frame...)
	}

	// Write every request up front from another goroutine; the pipe is
	// unbuffered.
	go cli.Write(stream)

	r := bufio.NewReader(cli)
	aux := binutils.NewFrameBuffer()
	for i := range n {
		raw, err := binutils.ReadFrame(r, aux)
		require.NoError(t, err)
		resp, err := wire.DecodeResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, wire.NewResponse(int32(i*3), wire.ErrCodeOK, uint16(i)), resp)
	}

	require.NoError(t, cli.Close())
	require.NoError(t, waitSession(t, done))
}

func TestSessionSurvivesMalformedFrames(t *testing.T) {
	cli, done := startSession(t)
	r := bufio.NewReader(cli)
	aux := binutils.NewFrameBuffer()

	exchange := func(frame []byte) wire.Response {
		t.Helper()
		go cli.Write(frame)
		raw, err := binutils.ReadFrame(r, aux)
		require.NoError(t, err)
		resp, err := wire.DecodeResponse(raw)
		require.NoError(t, err)
		return resp
	}

	// Name length disagrees with TML.
	assert.Equal(t, wire.LengthError(1), exchange([]byte{13, 0, 0, 0, 0, 10, 0, 0, 0, 3, 0, 1, 2}))

	// TML too small to hold a header.
	assert.Equal(t, wire.LengthError(0), exchange([]byte{3, 1, 2}))

	// TML of zero is a one byte frame.
	assert.Equal(t, wire.LengthError(0), exchange([]byte{0}))

	frame, err := wire.EncodeRequest(wire.OpSub, 10, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(7, wire.ErrCodeOK, 9), exchange(frame))

	require.NoError(t, cli.Close())
	require.NoError(t, waitSession(t, done))
}

func TestSessionShortFrameFails(t *testing.T) {
	cli, done := startSession(t)

	_, err := cli.Write([]byte{20, 1, 0, 0})
	require.NoError(t, err)
	require.NoError(t, cli.Close())

	err = waitSession(t, done)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "read-rest")
}

func TestSessionStates(t *testing.T) {
	assert.Equal(t, "await-length", stateAwaitLength.String())
	assert.Equal(t, "closed", stateClosed.String())
	assert.Equal(t, "state(42)", sessionState(42).String())
}

func TestServerDropsOnlyFailedConnection(t *testing.T) {
	fac := TCPFactoryIniter()
	ctx := t.Context()
	sh, err := calc.NewServerHarness(ctx, t, fac)
	require.NoError(t, err)

	good, err := fac.NewClient(ctx, sh.Addr)
	require.NoError(t, err)
	defer good.Close()

	// A peer announcing more bytes than it sends before closing.
	bad, err := net.Dial("tcp", sh.Addr)
	require.NoError(t, err)
	_, err = bad.Write([]byte{30, 1, 2})
	require.NoError(t, err)
	require.NoError(t, bad.Close())

	resp, err := calc.Call(ctx, good, wire.OpAdd, 2, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, wire.NewResponse(4, wire.ErrCodeOK, 5), resp)
}

func TestClientReportsServerClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		// Consume the whole request so the close is a clean FIN.
		binutils.ReadFrame(bufio.NewReader(c), binutils.NewFrameBuffer())
		c.Close()
	}()

	c, err := newTCPClient(t.Context(), l.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	_, err = calc.Call(t.Context(), c, wire.OpAdd, 1, 1, 1)
	require.ErrorIs(t, err, ErrServerClosed)
	require.ErrorIs(t, err, calc.ErrClientBroken)
}

func TestClientBrokenAfterPartialReply(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	release := make(chan struct{})
	defer close(release)
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		binutils.ReadFrame(bufio.NewReader(c), binutils.NewFrameBuffer())

		// Only the start of the reply, then stall past the deadline.
		c.Write([]byte{8, 0, 0})
		<-release
		c.Write([]byte{0, 4, 0, 0, 1})
	}()

	c, err := newTCPClient(t.Context(), l.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = calc.Call(ctx, c, wire.OpAdd, 2, 2, 1)
	require.ErrorIs(t, err, calc.ErrClientBroken)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())

	// The rest of the old reply must never be read as a new one.
	_, err = calc.Call(t.Context(), c, wire.OpAdd, 2, 2, 2)
	require.ErrorIs(t, err, calc.ErrClientBroken)
}

func TestClientCloseStopsContextWatch(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	c, err := newTCPClient(context.Background(), l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Close already removed the watch registered on the context.
	assert.False(t, c.stop())
}
