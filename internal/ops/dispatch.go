// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"github.com/matheusd/calcproto/internal/metrics"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
)

// Dispatcher turns raw request frames into responses. It holds no mutable
// state and may be shared by concurrent sessions.
type Dispatcher struct {
	// RecoverID echoes the id field of frames that fail validation, when
	// the frame is long enough to hold one. Otherwise such frames are
	// answered with id 0.
	RecoverID bool

	// Transport labels the request counters.
	Transport string

	Log zerolog.Logger
}

// Dispatch decodes and evaluates one request frame. It always produces a
// response: frames that fail to decode get a length error.
func (d *Dispatcher) Dispatch(frame []byte) wire.Response {
	req, err := wire.DecodeRequest(frame)
	if err != nil {
		var id uint16
		if d.RecoverID {
			id = wire.RecoverRequestID(frame)
		}
		d.Log.Debug().Err(err).Int("len", len(frame)).Uint16("id", id).
			Msg("Rejected malformed request")
		resp := wire.LengthError(id)
		metrics.RecordRequest(d.Transport, metrics.OpMalformed, resp.ErrorCode.String())
		return resp
	}

	resp := Respond(req)
	metrics.RecordRequest(d.Transport, req.OpCode.Name(), resp.ErrorCode.String())
	if e := d.Log.Trace(); e.Enabled() {
		name, nameErr := req.OpNameString()
		if nameErr != nil {
			name = "?"
		}
		e.Uint16("id", req.RequestID).
			Uint8("op", uint8(req.OpCode)).
			Str("name", name).
			Int32("a", req.Operand1).
			Int32("b", req.Operand2).
			Int32("result", resp.Result).
			Uint8("code", uint8(resp.ErrorCode)).
			Msg("Evaluated request")
	}
	return resp
}
