// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"math/rand/v2"

	"github.com/matheusd/calcproto/internal/wire"
)

// ExpectedResponse computes, independently of the server's evaluator, the
// response a correct server gives for a well-formed request.
func ExpectedResponse(op wire.OpCode, a, b int32, id uint16) wire.Response {
	x, y := int64(a), int64(b)
	var res int64
	switch op {
	case wire.OpSub:
		res = x - y
	case wire.OpAdd:
		res = x + y
	case wire.OpAnd:
		res = x & y
	case wire.OpOr:
		res = x | y
	case wire.OpMul:
		res = x * y
	case wire.OpDiv:
		if y == 0 {
			return wire.LengthError(id)
		}
		res = x / y
	default:
		return wire.LengthError(id)
	}
	return wire.NewResponse(int32(res), wire.ErrCodeOK, id)
}

// randOperand favours small values and the int32 edges so overflow and
// truncation paths are exercised.
func randOperand(rng *rand.Rand) int32 {
	switch rng.IntN(8) {
	case 0:
		return 0
	case 1:
		return -1
	case 2:
		return int32(rng.Uint32() | 0x80000000)
	case 3:
		return int32(rng.Uint32() &^ 0x80000000)
	default:
		return int32(rng.IntN(2001) - 1000)
	}
}

func randOpCode(rng *rand.Rand) wire.OpCode {
	return wire.OpCode(rng.IntN(wire.NumOpCodes))
}
