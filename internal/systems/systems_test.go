// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package systems

import (
	"testing"

	"github.com/matheusd/calcproto/calc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	for _, sys := range All() {
		t.Run(sys.Name, func(t *testing.T) {
			calc.RunConformance(t, &sys)
		})
	}
}

func TestLookup(t *testing.T) {
	sys, err := Lookup("udp")
	require.NoError(t, err)
	assert.Equal(t, "udp", sys.Name)
	assert.False(t, sys.RecoversID)

	_, err = Lookup("carrier-pigeon")
	require.ErrorContains(t, err, "tcp, udp, ws, http1, grpc, capnp, mdcapnp")
}

func BenchmarkRPC(b *testing.B) {
	matrix := fullTestMatrix()

	for _, bc := range matrix {
		b.Run(bc.Name(), func(b *testing.B) {
			err := calc.RunCase(b, bc)
			if err != nil {
				b.Fatal(err)
			}
		})
	}
}
