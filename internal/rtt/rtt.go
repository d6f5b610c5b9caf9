// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rtt accumulates round trip time statistics.
package rtt

import (
	"fmt"
	"time"
)

// Stats tracks the min, max and mean of a series of samples. The zero
// value is empty and ready for use.
type Stats struct {
	count    int
	min, max time.Duration
	sum      time.Duration
}

// Add records one sample.
func (s *Stats) Add(d time.Duration) {
	if s.count == 0 || d < s.min {
		s.min = d
	}
	if s.count == 0 || d > s.max {
		s.max = d
	}
	s.sum += d
	s.count++
}

func (s *Stats) Count() int { return s.count }
func (s *Stats) Min() time.Duration { return s.min }
func (s *Stats) Max() time.Duration { return s.max }

// Mean is the average sample, or zero when empty.
func (s *Stats) Mean() time.Duration {
	if s.count == 0 {
		return 0
	}
	return s.sum / time.Duration(s.count)
}

// MeanMicros is the average in fractional microseconds.
func (s *Stats) MeanMicros() float64 {
	if s.count == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.count) / float64(time.Microsecond)
}

// Summary renders the statistics in microseconds.
func (s *Stats) Summary() string {
	if s.count == 0 {
		return "RTT stats: no requests"
	}
	return fmt.Sprintf("RTT stats over %d requests -> min=%d µs | avg=%.1f µs | max=%d µs",
		s.count, s.min.Microseconds(), s.MeanMicros(), s.max.Microseconds())
}
