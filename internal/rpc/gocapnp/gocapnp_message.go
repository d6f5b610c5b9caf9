// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gocapnp

import (
	"errors"
	"fmt"

	capnp "capnproto.org/go/capnp/v3"
	"github.com/matheusd/calcproto/internal/binutils"
)

// maxMessageSize bounds decoded messages: header, root pointer and a
// frame of at most MaxFrameSize bytes, with room to spare.
const maxMessageSize = 4 * binutils.MaxFrameSize

// frameSize is the layout of the single struct carried by every message:
// no data section and one pointer, the Data field holding the frame.
var frameSize = capnp.ObjectSize{DataSize: 0, PointerCount: 1}

var errNoRoot = errors.New("gocapnp: message has no root struct")

// newFrameMessage wraps frame in a message whose root struct points to it.
func newFrameMessage(frame []byte) (*capnp.Message, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, err
	}
	root, err := capnp.NewRootStruct(seg, frameSize)
	if err != nil {
		return nil, err
	}
	if err := root.SetData(0, frame); err != nil {
		return nil, fmt.Errorf("unable to set frame: %w", err)
	}
	return msg, nil
}

// messageFrame returns a copy of the frame carried by msg.
func messageFrame(msg *capnp.Message) ([]byte, error) {
	ptr, err := msg.Root()
	if err != nil {
		return nil, err
	}
	if !ptr.IsValid() {
		return nil, errNoRoot
	}
	data, err := ptr.Struct().Ptr(0)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data.Data()...), nil
}
