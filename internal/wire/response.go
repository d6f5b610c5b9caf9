// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
)

// ResponseSize is the fixed size of every response.
const ResponseSize = 1 + 4 + 1 + 2

// ErrorCode is the status carried by a response.
type ErrorCode uint8

const (
	ErrCodeOK ErrorCode = 0

	// ErrCodeInvalid signals a length/validation failure, an unknown
	// opcode or a division by zero. The protocol has no finer codes.
	ErrCodeInvalid ErrorCode = 127
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "Ok"
	case ErrCodeInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("Error %d", uint8(c))
	}
}

// Response is a decoded calculator response.
type Response struct {
	TotalLength uint8
	Result      int32
	ErrorCode   ErrorCode
	RequestID   uint16
}

// NewResponse returns a response with TML set.
func NewResponse(result int32, code ErrorCode, id uint16) Response {
	return Response{
		TotalLength: ResponseSize,
		Result:      result,
		ErrorCode:   code,
		RequestID:   id,
	}
}

// LengthError is the response sent back for a message that could not be
// validated.
func LengthError(id uint16) Response {
	return NewResponse(0, ErrCodeInvalid, id)
}

// EncodeResponse returns the 8 byte wire form of a response.
func EncodeResponse(result int32, code ErrorCode, id uint16) []byte {
	return NewResponse(result, code, id).Encode()
}

// Encode returns the wire form of r. TML is always written as
// ResponseSize.
func (r Response) Encode() []byte {
	return r.AppendEncode(make([]byte, 0, ResponseSize))
}

// AppendEncode appends the wire form of r to b.
func (r Response) AppendEncode(b []byte) []byte {
	b = append(b, ResponseSize)
	b = binary.BigEndian.AppendUint32(b, uint32(r.Result))
	b = append(b, byte(r.ErrorCode))
	return binary.BigEndian.AppendUint16(b, r.RequestID)
}

// DecodeResponse parses a response message.
func DecodeResponse(b []byte) (Response, error) {
	if len(b) < ResponseSize {
		return Response{}, fmt.Errorf("%w: response has %d bytes", ErrTruncated, len(b))
	}
	if int(b[0]) != len(b) {
		return Response{}, fmt.Errorf("%w: TML %d, got %d bytes", ErrLengthMismatch, b[0], len(b))
	}
	return Response{
		TotalLength: b[0],
		Result:      int32(binary.BigEndian.Uint32(b[1:5])),
		ErrorCode:   ErrorCode(b[5]),
		RequestID:   binary.BigEndian.Uint16(b[6:8]),
	}, nil
}
