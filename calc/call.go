// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheusd/calcproto/internal/wire"
)

var (
	// ErrResponseIDMismatch is returned when a reply carries an id other
	// than the one of the request it answers.
	ErrResponseIDMismatch = errors.New("response id does not match request")

	// ErrClientBroken is returned by stream clients once an exchange
	// failed midway. The connection is closed and the client must be
	// replaced.
	ErrClientBroken = errors.New("client connection broken")
)

// MatchResponse decodes raw as the reply to the request with the given id.
func MatchResponse(raw []byte, id uint16) (wire.Response, error) {
	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		return wire.Response{}, fmt.Errorf("malformed response % X: %w", raw, err)
	}
	if resp.RequestID != id {
		return wire.Response{}, fmt.Errorf("%w: got %d, want %d",
			ErrResponseIDMismatch, resp.RequestID, id)
	}
	return resp, nil
}

// Call performs one calculation through c. A malformed or mismatched
// response is returned as an error without affecting the client, so
// further calls may be attempted unless the error wraps ErrClientBroken.
func Call(ctx context.Context, c Client, op wire.OpCode, a, b int32, id uint16) (wire.Response, error) {
	frame, err := wire.EncodeRequest(op, a, b, id)
	if err != nil {
		return wire.Response{}, err
	}
	raw, err := c.RoundTrip(ctx, frame)
	if err != nil {
		return wire.Response{}, err
	}
	return MatchResponse(raw, id)
}

// RequestIDCounter hands out request ids, wrapping modulo 65536. It is a
// plain value threaded through the caller.
type RequestIDCounter uint16

// NewRequestIDCounter returns a counter whose first id is start.
func NewRequestIDCounter(start uint16) RequestIDCounter {
	return RequestIDCounter(start)
}

// Next returns the current id and the advanced counter.
func (c RequestIDCounter) Next() (uint16, RequestIDCounter) {
	return uint16(c), c + 1
}
