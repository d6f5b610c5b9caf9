// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package binutils contains helpers to move TML-prefixed frames over byte
// streams.
package binutils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest frame a one byte TML can announce. Buffers
// passed to the Read* functions must be at least this large.
const MaxFrameSize = 255

// NewFrameBuffer returns a buffer suitable for ReadFrame.
func NewFrameBuffer() []byte {
	return make([]byte, MaxFrameSize)
}

// ReadLength reads the TML byte that starts a frame. io.EOF is returned
// unwrapped when the stream ends on a frame boundary.
func ReadLength(r io.ByteReader) (int, error) {
	tml, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int(tml), nil
}

// ReadRest reads the remainder of a frame whose TML was already read,
// storing the whole frame in aux. A TML of zero still yields a one byte
// frame so the declared length can be checked by the decoder.
//
// Fewer bytes than announced before the stream ends is reported as
// io.ErrUnexpectedEOF.
func ReadRest(r io.Reader, aux []byte, tml int) ([]byte, error) {
	frame := aux[:max(tml, 1)]
	frame[0] = byte(tml)
	if _, err := io.ReadFull(r, frame[1:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("short frame (TML %d): %w", tml, err)
	}
	return frame, nil
}

// ReadFrame reads one complete frame into aux and returns it. The returned
// slice aliases aux.
func ReadFrame(r *bufio.Reader, aux []byte) ([]byte, error) {
	tml, err := ReadLength(r)
	if err != nil {
		return nil, err
	}
	return ReadRest(r, aux, tml)
}

// WriteFrame writes frame and flushes the writer.
func WriteFrame(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
