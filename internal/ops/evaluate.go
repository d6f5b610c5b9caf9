// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import "github.com/matheusd/calcproto/internal/wire"

// Evaluate computes the result of a decoded request. Unknown opcodes and
// division by zero yield (0, ErrCodeInvalid) on every transport.
func Evaluate(req wire.Request) (int32, wire.ErrorCode) {
	op, ok := Lookup(req.OpCode)
	if !ok {
		return 0, wire.ErrCodeInvalid
	}
	if op.Code == wire.OpDiv && req.Operand2 == 0 {
		return 0, wire.ErrCodeInvalid
	}
	return op.Apply(req.Operand1, req.Operand2), wire.ErrCodeOK
}

// Respond evaluates req and builds its response.
func Respond(req wire.Request) wire.Response {
	res, code := Evaluate(req)
	return wire.NewResponse(res, code, req.RequestID)
}
