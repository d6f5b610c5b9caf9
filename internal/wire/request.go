// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
)

// RequestHeaderSize is the size of the fixed part of a request: TML,
// opcode, both operands, request id and name length.
const RequestHeaderSize = 1 + 1 + 4 + 4 + 2 + 1

// MaxMessageSize is the largest message the one byte TML can describe.
const MaxMessageSize = 255

// Request is a decoded calculator request. The zero value is not a valid
// request; build one with NewRequest or DecodeRequest.
type Request struct {
	TotalLength  uint8
	OpCode       OpCode
	Operand1     int32
	Operand2     int32
	RequestID    uint16
	OpNameLength uint8
	OpName       []byte
}

// NewRequest builds the request for op, filling in the BOM-prefixed name
// and both length fields.
func NewRequest(op OpCode, a, b int32, id uint16) (Request, error) {
	if !op.Valid() {
		return Request{}, fmt.Errorf("%w: opcode %d", ErrUnknownOperation, uint8(op))
	}
	name, err := encodeName(op.Name())
	if err != nil {
		return Request{}, fmt.Errorf("unable to encode name of op %d: %w", uint8(op), err)
	}
	total := RequestHeaderSize + len(name)
	if total > MaxMessageSize {
		return Request{}, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, total)
	}
	return Request{
		TotalLength:  uint8(total),
		OpCode:       op,
		Operand1:     a,
		Operand2:     b,
		RequestID:    id,
		OpNameLength: uint8(len(name)),
		OpName:       name,
	}, nil
}

// EncodeRequest returns the wire form of a request for op.
func EncodeRequest(op OpCode, a, b int32, id uint16) ([]byte, error) {
	req, err := NewRequest(op, a, b, id)
	if err != nil {
		return nil, err
	}
	return req.Encode(), nil
}

// Encode returns the wire form of r. The length fields are written as
// they are in r.
func (r Request) Encode() []byte {
	return r.AppendEncode(make([]byte, 0, RequestHeaderSize+len(r.OpName)))
}

// AppendEncode appends the wire form of r to b.
func (r Request) AppendEncode(b []byte) []byte {
	b = append(b, r.TotalLength, byte(r.OpCode))
	b = binary.BigEndian.AppendUint32(b, uint32(r.Operand1))
	b = binary.BigEndian.AppendUint32(b, uint32(r.Operand2))
	b = binary.BigEndian.AppendUint16(b, r.RequestID)
	b = append(b, r.OpNameLength)
	return append(b, r.OpName...)
}

// DecodeRequest parses a complete request message. The declared TML must
// match len(b) and the name length must account for every remaining byte.
// The name text itself is not validated; see OpNameString.
//
// The returned request does not alias b.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) < 1 {
		return Request{}, ErrEmptyMessage
	}
	if int(b[0]) != len(b) {
		return Request{}, fmt.Errorf("%w: TML %d, got %d bytes", ErrLengthMismatch, b[0], len(b))
	}
	if len(b) < RequestHeaderSize {
		return Request{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(b), RequestHeaderSize)
	}
	nameLen := b[12]
	if rest := len(b) - RequestHeaderSize; rest != int(nameLen) {
		return Request{}, fmt.Errorf("%w: name length %d, %d bytes remain", ErrLengthMismatch, nameLen, rest)
	}

	return Request{
		TotalLength:  b[0],
		OpCode:       OpCode(b[1]),
		Operand1:     int32(binary.BigEndian.Uint32(b[2:6])),
		Operand2:     int32(binary.BigEndian.Uint32(b[6:10])),
		RequestID:    binary.BigEndian.Uint16(b[10:12]),
		OpNameLength: nameLen,
		OpName:       append([]byte(nil), b[RequestHeaderSize:]...),
	}, nil
}

// RecoverRequestID returns the request id field of a possibly malformed
// request, or 0 if b is too short to hold one.
func RecoverRequestID(b []byte) uint16 {
	if len(b) < 12 {
		return 0
	}
	return binary.BigEndian.Uint16(b[10:12])
}

// OpNameString decodes the informational name field. Failures here never
// affect evaluation, which is driven by OpCode alone.
func (r Request) OpNameString() (string, error) {
	return decodeName(r.OpName)
}
