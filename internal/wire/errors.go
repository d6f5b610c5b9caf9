// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "errors"

// Local encode/decode failures. None of these cross the wire: a peer only
// ever sees ErrCodeInvalid.
var (
	ErrEmptyMessage     = errors.New("wire: empty message")
	ErrTruncated        = errors.New("wire: truncated message")
	ErrLengthMismatch   = errors.New("wire: length mismatch")
	ErrUnknownOperation = errors.New("wire: unknown operation")
	ErrMessageTooLong   = errors.New("wire: message too long")
)
