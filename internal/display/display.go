// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package display formats requests and responses for humans.
package display

import (
	"fmt"
	"strings"

	"github.com/matheusd/calcproto/internal/wire"
)

// Hex renders b as upper case hex byte pairs separated by spaces.
func Hex(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

// RequestLine describes a request, including its decoded name when the
// name field is valid text.
func RequestLine(req wire.Request) string {
	name, err := req.OpNameString()
	if err != nil {
		name = fmt.Sprintf("<bad name: %v>", err)
	}
	return fmt.Sprintf("ReqID=%d | %d %c %d | Op=%d (%s)",
		req.RequestID, req.Operand1, req.OpCode.Symbol(), req.Operand2,
		uint8(req.OpCode), name)
}

// ResponseLine describes the outcome of the calculation a op b.
func ResponseLine(op wire.OpCode, a, b int32, resp wire.Response) string {
	return fmt.Sprintf("ReqID=%d | %d %c %d => %d | Error=%d (%s)",
		resp.RequestID, a, op.Symbol(), b, resp.Result,
		uint8(resp.ErrorCode), resp.ErrorCode)
}

// OpCodeHelp lists the opcode to symbol mapping.
func OpCodeHelp() string {
	var sb strings.Builder
	sb.WriteString("OpCode mapping:")
	for op := wire.OpCode(0); op < wire.NumOpCodes; op++ {
		fmt.Fprintf(&sb, " %d='%c'", op, op.Symbol())
	}
	return sb.String()
}
