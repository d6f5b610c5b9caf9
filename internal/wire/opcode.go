// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// OpCode selects the operation carried by a request.
type OpCode uint8

const (
	OpSub OpCode = 0
	OpAdd OpCode = 1
	OpAnd OpCode = 2
	OpOr  OpCode = 3
	OpMul OpCode = 4
	OpDiv OpCode = 5
)

// NumOpCodes is the number of defined opcodes. Valid opcodes are
// 0..NumOpCodes-1.
const NumOpCodes = 6

var opNames = [NumOpCodes]string{
	OpSub: "subtraction",
	OpAdd: "addition",
	OpAnd: "and",
	OpOr:  "or",
	OpMul: "multiplication",
	OpDiv: "division",
}

var opSymbols = [NumOpCodes]byte{
	OpSub: '-',
	OpAdd: '+',
	OpAnd: '&',
	OpOr:  '|',
	OpMul: '*',
	OpDiv: '/',
}

// Valid returns true if op is one of the defined opcodes.
func (op OpCode) Valid() bool {
	return op < NumOpCodes
}

// Name is the symbolic name sent in the request's name field. Undefined
// opcodes are named "unknown".
func (op OpCode) Name() string {
	if !op.Valid() {
		return "unknown"
	}
	return opNames[op]
}

// Symbol is the display symbol for op, or '?' for undefined opcodes.
func (op OpCode) Symbol() byte {
	if !op.Valid() {
		return '?'
	}
	return opSymbols[op]
}

func (op OpCode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(op))
	}
	return opNames[op]
}
