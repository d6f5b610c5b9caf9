// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/matheusd/calcproto/internal/wire"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleFrame is 10 - 3 with request id 1 and an empty name.
var sampleFrame = []byte{15, 0, 0, 0, 0, 10, 0, 0, 0, 3, 0, 1, 2, 0xFE, 0xFF}

// RunConformance checks a transport against the protocol's behaviour:
// evaluation, error codes, id echo and ordering on one session.
func RunConformance(t *testing.T, sys *System) {
	fac := sys.Initer()
	ctx := t.Context()

	sh, err := NewServerHarness(ctx, t, fac)
	require.NoError(t, err)

	newClient := func(t *testing.T) Client {
		c, err := fac.NewClient(ctx, sh.Addr)
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		return c
	}

	t.Run("sample", func(t *testing.T) {
		c := newClient(t)
		raw, err := c.RoundTrip(ctx, sampleFrame)
		require.NoError(t, err)
		assert.Equal(t, []byte{8, 0, 0, 0, 7, 0, 0, 1}, raw)
	})

	t.Run("operations", func(t *testing.T) {
		c := newClient(t)
		tests := []struct {
			op   wire.OpCode
			a, b int32
			res  int32
			code wire.ErrorCode
		}{
			{wire.OpSub, 10, 3, 7, wire.ErrCodeOK},
			{wire.OpAdd, 10, 3, 13, wire.ErrCodeOK},
			{wire.OpAnd, 12, 10, 8, wire.ErrCodeOK},
			{wire.OpOr, 12, 10, 14, wire.ErrCodeOK},
			{wire.OpMul, 6, 7, 42, wire.ErrCodeOK},
			{wire.OpDiv, 20, 4, 5, wire.ErrCodeOK},
			{wire.OpDiv, 5, 0, 0, wire.ErrCodeInvalid},
			{wire.OpAdd, math.MaxInt32, 1, math.MinInt32, wire.ErrCodeOK},
			{wire.OpDiv, math.MinInt32, -1, math.MinInt32, wire.ErrCodeOK},
		}
		for i, tc := range tests {
			id := uint16(100 + i)
			resp, err := Call(ctx, c, tc.op, tc.a, tc.b, id)
			require.NoError(t, err)
			assert.Equal(t, wire.NewResponse(tc.res, tc.code, id), resp,
				"%d %c %d", tc.a, tc.op.Symbol(), tc.b)
		}
	})

	t.Run("unknown opcode", func(t *testing.T) {
		c := newClient(t)
		req := wire.Request{
			TotalLength:  wire.RequestHeaderSize + 2,
			OpCode:       wire.OpCode(9),
			Operand1:     1,
			Operand2:     2,
			RequestID:    4242,
			OpNameLength: 2,
			OpName:       wire.BOM,
		}
		raw, err := c.RoundTrip(ctx, req.Encode())
		require.NoError(t, err)
		resp, err := wire.DecodeResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, wire.NewResponse(0, wire.ErrCodeInvalid, 4242), resp)
	})

	t.Run("malformed then valid", func(t *testing.T) {
		c := newClient(t)

		// nameLen of 2 with no name bytes.
		bad := []byte{13, 0, 0, 0, 0, 10, 0, 0, 0, 3, 0, 1, 2}
		raw, err := c.RoundTrip(ctx, bad)
		require.NoError(t, err)
		resp, err := wire.DecodeResponse(raw)
		require.NoError(t, err)

		wantID := uint16(0)
		if sys.RecoversID {
			wantID = 1
		}
		assert.Equal(t, wire.LengthError(wantID), resp)

		// The session survives the bad frame.
		resp, err = Call(ctx, c, wire.OpMul, 6, 7, 2)
		require.NoError(t, err)
		assert.Equal(t, wire.NewResponse(42, wire.ErrCodeOK, 2), resp)
	})

	t.Run("ordered session", func(t *testing.T) {
		c := newClient(t)

		// Start close to the top so the id wraps mid-session.
		ids := NewRequestIDCounter(math.MaxUint16 - 20)
		for i := range 64 {
			var id uint16
			id, ids = ids.Next()
			a := int32(i)
			resp, err := Call(ctx, c, wire.OpAdd, a, 1000, id)
			require.NoError(t, err)
			require.Equal(t, wire.NewResponse(a+1000, wire.ErrCodeOK, id), resp)
		}
		next, _ := ids.Next()
		assert.Equal(t, uint16(43), next)
	})

	t.Run("concurrent clients", func(t *testing.T) {
		const nbClients = 4
		ch, err := newClientHarness(ctx, t, sh.Addr, fac, nbClients)
		require.NoError(t, err)

		p := pool.New().WithErrors().WithContext(ctx)
		for _, hc := range ch.clients {
			p.Go(func(ctx context.Context) error {
				for i := range 32 {
					if err := makeCall(ctx, hc); err != nil {
						return fmt.Errorf("call %d: %w", i, err)
					}
				}
				return nil
			})
		}
		require.NoError(t, p.Wait())
	})
}
