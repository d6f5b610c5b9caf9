// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ops implements the calculator's operation table and evaluates
// decoded requests.
package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matheusd/calcproto/internal/wire"
)

// Operation is an entry of the operation table.
type Operation struct {
	Code   wire.OpCode
	Name   string
	Symbol byte

	// Apply computes the operation with int32 wraparound. It must not be
	// called for division with a zero divisor.
	Apply func(a, b int32) int32
}

var table = [wire.NumOpCodes]Operation{
	{Code: wire.OpSub, Apply: func(a, b int32) int32 { return a - b }},
	{Code: wire.OpAdd, Apply: func(a, b int32) int32 { return a + b }},
	{Code: wire.OpAnd, Apply: func(a, b int32) int32 { return a & b }},
	{Code: wire.OpOr, Apply: func(a, b int32) int32 { return a | b }},
	{Code: wire.OpMul, Apply: func(a, b int32) int32 { return a * b }},

	// Go defines MinInt32 / -1 as MinInt32, matching 32-bit hardware
	// wraparound.
	{Code: wire.OpDiv, Apply: func(a, b int32) int32 { return a / b }},
}

func init() {
	for i := range table {
		table[i].Name = table[i].Code.Name()
		table[i].Symbol = table[i].Code.Symbol()
	}
}

// Lookup returns the table entry for op.
func Lookup(op wire.OpCode) (Operation, bool) {
	if !op.Valid() {
		return Operation{}, false
	}
	return table[op], true
}

// All returns the operation table in opcode order.
func All() []Operation {
	res := make([]Operation, len(table))
	copy(res, table[:])
	return res
}

// Parse resolves user input to an opcode. It accepts the numeric opcode,
// the symbolic name or the display symbol.
func Parse(s string) (wire.OpCode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		op := wire.OpCode(n)
		if !op.Valid() {
			return 0, fmt.Errorf("%w: opcode %d", wire.ErrUnknownOperation, n)
		}
		return op, nil
	}
	for _, o := range table {
		if strings.EqualFold(s, o.Name) || (len(s) == 1 && s[0] == o.Symbol) {
			return o.Code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", wire.ErrUnknownOperation, s)
}
