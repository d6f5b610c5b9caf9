// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheusd/calcproto/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	script := `
[[request]]
op = "addition"
a = 10
b = 3

[[request]]
op = "/"
a = -7
b = 2

[[request]]
op = 2
a = 12
b = 10
`
	s, err := Decode(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, s.Requests, 3)

	assert.Equal(t, wire.OpAdd, s.Requests[0].Op.Code)
	assert.Equal(t, int32(10), s.Requests[0].A)
	assert.Equal(t, int32(3), s.Requests[0].B)
	assert.Equal(t, wire.OpDiv, s.Requests[1].Op.Code)
	assert.Equal(t, int32(-7), s.Requests[1].A)
	assert.Equal(t, wire.OpAnd, s.Requests[2].Op.Code)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		errIs  error
		errMsg string
	}{{
		name:   "empty",
		script: "",
		errIs:  ErrEmpty,
	}, {
		name:   "unknown key",
		script: "[[request]]\nop = 1\na = 1\nb = 2\nc = 3\n",
		errMsg: "request.c",
	}, {
		name:   "missing op",
		script: "[[request]]\nop = 1\n[[request]]\na = 1\n",
		errMsg: "request 2 has no op",
	}, {
		name:   "opcode out of range",
		script: "[[request]]\nop = 6\n",
		errMsg: "unknown operation: opcode 6",
	}, {
		name:   "unknown op name",
		script: "[[request]]\nop = \"modulo\"\n",
		errMsg: "unknown operation",
	}, {
		name:   "operand overflow",
		script: "[[request]]\nop = 1\na = 2147483648\n",
		errMsg: "batch",
	}, {
		name:   "op wrong type",
		script: "[[request]]\nop = 1.5\n",
		errMsg: "integer or string",
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.script))
			require.Error(t, err)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
			}
			if tc.errMsg != "" {
				require.ErrorContains(t, err, tc.errMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[request]]\nop = \"or\"\na = 1\nb = 2\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Requests, 1)
	assert.Equal(t, wire.OpOr, s.Requests[0].Op.Code)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
