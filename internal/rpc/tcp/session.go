// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/matheusd/calcproto/internal/binutils"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
)

type sessionState int

const (
	stateAwaitLength sessionState = iota
	stateReadRest
	stateEvaluate
	stateSendResponse
	stateClosed
)

func (st sessionState) String() string {
	switch st {
	case stateAwaitLength:
		return "await-length"
	case stateReadRest:
		return "read-rest"
	case stateEvaluate:
		return "evaluate"
	case stateSendResponse:
		return "send-response"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(st))
	}
}

// session serves request/response exchanges on one connection, one at a
// time, until the peer closes it.
type session struct {
	disp   *ops.Dispatcher
	log    zerolog.Logger
	reader *bufio.Reader
	writer *bufio.Writer

	st    sessionState
	tml   int
	aux   []byte
	frame []byte
	out   []byte
	resp  wire.Response

	served int
}

func newSession(c net.Conn, disp *ops.Dispatcher, log zerolog.Logger) *session {
	return &session{
		disp:   disp,
		log:    log,
		reader: bufio.NewReader(c),
		writer: bufio.NewWriter(c),
		aux:    binutils.NewFrameBuffer(),
		out:    make([]byte, 0, wire.ResponseSize),
	}
}

// step runs the action of the current state and moves to the next one.
func (s *session) step() error {
	switch s.st {
	case stateAwaitLength:
		tml, err := binutils.ReadLength(s.reader)
		if errors.Is(err, io.EOF) {
			// Peer closed between frames.
			s.st = stateClosed
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading TML: %w", err)
		}
		s.tml = tml
		s.st = stateReadRest

	case stateReadRest:
		frame, err := binutils.ReadRest(s.reader, s.aux, s.tml)
		if err != nil {
			return err
		}
		s.frame = frame
		s.st = stateEvaluate

	case stateEvaluate:
		s.resp = s.disp.Dispatch(s.frame)
		s.st = stateSendResponse

	case stateSendResponse:
		s.out = s.resp.AppendEncode(s.out[:0])
		if err := binutils.WriteFrame(s.writer, s.out); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
		s.served++
		s.st = stateAwaitLength

	default:
		return fmt.Errorf("invalid session state %s", s.st)
	}
	return nil
}

// run steps the session until it closes or fails.
func (s *session) run() error {
	for s.st != stateClosed {
		if err := s.step(); err != nil {
			return fmt.Errorf("session failed in state %s after %d requests: %w",
				s.st, s.served, err)
		}
	}
	return nil
}
