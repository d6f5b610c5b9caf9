// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsEmpty(t *testing.T) {
	var s Stats
	assert.Zero(t, s.Count())
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.MeanMicros())
	assert.Equal(t, "RTT stats: no requests", s.Summary())
}

func TestStats(t *testing.T) {
	var s Stats
	for _, us := range []int{300, 100, 200, 401} {
		s.Add(time.Duration(us) * time.Microsecond)
	}

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 100*time.Microsecond, s.Min())
	assert.Equal(t, 401*time.Microsecond, s.Max())
	assert.Equal(t, 250250*time.Nanosecond, s.Mean())
	assert.InDelta(t, 250.25, s.MeanMicros(), 1e-9)
	assert.Equal(t, "RTT stats over 4 requests -> min=100 µs | avg=250.2 µs | max=401 µs", s.Summary())
}

func TestStatsSingle(t *testing.T) {
	var s Stats
	s.Add(5 * time.Millisecond)
	assert.Equal(t, s.Min(), s.Max())
	assert.Equal(t, 5*time.Millisecond, s.Mean())
}
