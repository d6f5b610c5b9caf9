// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"testing"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawCodec(t *testing.T) {
	var c rawCodec
	b, err := c.Marshal(&frame{b: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	var f frame
	require.NoError(t, c.Unmarshal(b, &f))
	assert.Equal(t, []byte{1, 2, 3}, f.b)

	// The decoded frame must not alias the transport buffer.
	b[0] = 9
	assert.Equal(t, byte(1), f.b[0])

	_, err = c.Marshal("nope")
	require.Error(t, err)
	require.Error(t, c.Unmarshal(b, new(int)))
}

func TestEmptyFrame(t *testing.T) {
	ctx := t.Context()
	fac := GRPCFactoryIniter()
	sh, err := calc.NewServerHarness(ctx, t, fac)
	require.NoError(t, err)

	c, err := fac.NewClient(ctx, sh.Addr)
	require.NoError(t, err)
	defer c.Close()

	raw, err := c.RoundTrip(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, wire.LengthError(0).Encode(), raw)
}

func TestClientCloseStopsContextWatch(t *testing.T) {
	c, err := newGRPCClient(context.Background(), "127.0.0.1:9")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.False(t, c.stop())
}
