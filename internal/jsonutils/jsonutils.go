// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package jsonutils

import (
	"encoding/json"
	"io"
	"time"

	"github.com/matheusd/calcproto/internal/display"
	"github.com/matheusd/calcproto/internal/rtt"
	"github.com/matheusd/calcproto/internal/wire"
)

type Kind string

const (
	KindExchange Kind = "exchange"
	KindError    Kind = "error"
	KindSummary  Kind = "summary"
)

// Message is one line of client output.
type Message struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload,omitempty"`
}

type Exchange struct {
	RequestID   uint16 `json:"requestId"`
	OpCode      uint8  `json:"opCode"`
	Op          string `json:"op"`
	A           int32  `json:"a"`
	B           int32  `json:"b"`
	Result      int32  `json:"result"`
	ErrorCode   uint8  `json:"errorCode"`
	Status      string `json:"status"`
	RequestHex  string `json:"requestHex"`
	ResponseHex string `json:"responseHex"`
	RTTMicros   int64  `json:"rttMicros"`
}

type Error struct {
	RequestID uint16 `json:"requestId"`
	Error     string `json:"error"`
}

type Summary struct {
	Count     int     `json:"count"`
	MinMicros int64   `json:"minMicros"`
	AvgMicros float64 `json:"avgMicros"`
	MaxMicros int64   `json:"maxMicros"`
}

// NewExchange builds the view of one completed request.
func NewExchange(req wire.Request, resp wire.Response, elapsed time.Duration) Exchange {
	return Exchange{
		RequestID:   req.RequestID,
		OpCode:      uint8(req.OpCode),
		Op:          req.OpCode.Name(),
		A:           req.Operand1,
		B:           req.Operand2,
		Result:      resp.Result,
		ErrorCode:   uint8(resp.ErrorCode),
		Status:      resp.ErrorCode.String(),
		RequestHex:  display.Hex(req.Encode()),
		ResponseHex: display.Hex(resp.Encode()),
		RTTMicros:   elapsed.Microseconds(),
	}
}

// NewSummary builds the view of the accumulated round trip times.
func NewSummary(s *rtt.Stats) Summary {
	return Summary{
		Count:     s.Count(),
		MinMicros: s.Min().Microseconds(),
		AvgMicros: s.MeanMicros(),
		MaxMicros: s.Max().Microseconds(),
	}
}

// Writer emits one JSON message per line.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Write(kind Kind, payload any) error {
	return w.enc.Encode(Message{Kind: kind, Payload: payload})
}
