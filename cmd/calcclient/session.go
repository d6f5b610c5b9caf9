// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/batch"
	"github.com/matheusd/calcproto/internal/display"
	"github.com/matheusd/calcproto/internal/jsonutils"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/rtt"
	"github.com/matheusd/calcproto/internal/wire"
)

// errQuit ends an interactive session.
var errQuit = errors.New("quit")

type session struct {
	c       calc.Client
	ids     calc.RequestIDCounter
	timeout time.Duration
	stats   rtt.Stats

	out io.Writer
	jw  *jsonutils.Writer // nil for human output
}

func newSession(c calc.Client, firstID uint16, timeout time.Duration, out io.Writer, asJSON bool) *session {
	s := &session{
		c:       c,
		ids:     calc.NewRequestIDCounter(firstID),
		timeout: timeout,
		out:     out,
	}
	if asJSON {
		s.jw = jsonutils.NewWriter(out)
	}
	return s
}

func (s *session) printf(format string, args ...any) {
	if s.jw == nil {
		fmt.Fprintf(s.out, format, args...)
	}
}

// exchange performs one request. Replies that time out, fail to decode or
// answer another request are reported and the session goes on. Failures
// that leave the client unusable are returned.
func (s *session) exchange(ctx context.Context, op wire.OpCode, a, b int32) error {
	var id uint16
	id, s.ids = s.ids.Next()

	req, err := wire.NewRequest(op, a, b, id)
	if err != nil {
		return err
	}
	frame := req.Encode()
	s.printf("Request (hex):\n%s\n", display.Hex(frame))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	raw, err := s.c.RoundTrip(ctx, frame)
	elapsed := time.Since(start)
	cancel()
	switch {
	case errors.Is(err, calc.ErrClientBroken):
		return fmt.Errorf("request %d failed, connection closed: %w", id, err)
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return s.reportFailure(id, fmt.Errorf("no reply within %s: %w", s.timeout, err))
	case err != nil:
		return fmt.Errorf("request %d failed: %w", id, err)
	}

	s.printf("Response (hex):\n%s\n", display.Hex(raw))
	resp, err := calc.MatchResponse(raw, id)
	if err != nil {
		return s.reportFailure(id, err)
	}
	s.stats.Add(elapsed)

	if s.jw != nil {
		return s.jw.Write(jsonutils.KindExchange, jsonutils.NewExchange(req, resp, elapsed))
	}
	s.printf("%s\n", display.ResponseLine(op, a, b, resp))
	s.printf("RTT: %d µs\n", elapsed.Microseconds())
	return nil
}

func (s *session) reportFailure(id uint16, err error) error {
	if s.jw != nil {
		return s.jw.Write(jsonutils.KindError, jsonutils.Error{RequestID: id, Error: err.Error()})
	}
	s.printf("ReqID=%d | %v\n", id, err)
	return nil
}

func (s *session) runBatch(ctx context.Context, script batch.Script) error {
	for _, r := range script.Requests {
		if err := s.exchange(ctx, r.Op.Code, r.A, r.B); err != nil {
			return err
		}
	}
	return nil
}

// prompter reads whitespace separated tokens from the user.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &prompter{sc: sc, out: out}
}

func (p *prompter) next(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return p.sc.Text(), nil
}

func (p *prompter) opCode() (wire.OpCode, error) {
	for {
		tok, err := p.next("OpCode (0..5) or 'q': ")
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(tok, "q") {
			return 0, errQuit
		}
		op, err := ops.Parse(tok)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid opcode. Try again.")
			continue
		}
		return op, nil
	}
}

func (p *prompter) operand(prompt string) (int32, error) {
	for {
		tok, err := p.next(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid integer. Try again.")
			continue
		}
		return int32(v), nil
	}
}

func (s *session) runInteractive(ctx context.Context, in io.Reader) error {
	p := newPrompter(in, s.out)
	fmt.Fprintln(s.out, "Enter requests. Type 'q' to quit.")
	fmt.Fprintln(s.out, display.OpCodeHelp())
	for {
		op, err := p.opCode()
		if err != nil {
			return ignoreQuit(err)
		}
		a, err := p.operand("Operand1 (int): ")
		if err != nil {
			return ignoreQuit(err)
		}
		b, err := p.operand("Operand2 (int): ")
		if err != nil {
			return ignoreQuit(err)
		}
		if err := s.exchange(ctx, op, a, b); err != nil {
			return err
		}
	}
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (s *session) finish() error {
	if s.jw != nil {
		return s.jw.Write(jsonutils.KindSummary, jsonutils.NewSummary(&s.stats))
	}
	fmt.Fprintln(s.out, s.stats.Summary())
	return nil
}
