// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gocapnp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	capnp "capnproto.org/go/capnp/v3"
	"github.com/matheusd/calcproto/internal/metrics"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

type gocapnpServer struct {
	l    net.Listener
	log  zerolog.Logger
	disp ops.Dispatcher
}

func (s *gocapnpServer) Addr() string {
	return s.l.Addr().String()
}

// serveConn answers every message on c until the peer closes it.
func (s *gocapnpServer) serveConn(c io.ReadWriter) error {
	dec := capnp.NewDecoder(c)
	dec.MaxMessageSize = maxMessageSize
	enc := capnp.NewEncoder(c)
	for {
		req, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error decoding message: %w", err)
		}

		// A message without a frame is answered like an empty frame.
		frame, err := messageFrame(req)
		if err != nil {
			s.log.Debug().Err(err).Msg("Message carries no frame")
		}
		resp := s.disp.Dispatch(frame)

		out, err := newFrameMessage(resp.Encode())
		if err != nil {
			return err
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
	}
}

func (s *gocapnpServer) runConn(ctx context.Context, c net.Conn) {
	log := s.log.With().Stringer("remote", c.RemoteAddr()).Logger()
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	defer c.Close()
	defer metrics.SessionOpened("capnp")()

	err := s.serveConn(c)
	switch {
	case err == nil:
		log.Debug().Msg("Connection closed by peer")
	case ctx.Err() != nil:
		log.Debug().Msg("Connection closed on shutdown")
	default:
		log.Warn().Err(err).Msg("Closing connection")
	}
}

func (s *gocapnpServer) Run(ctx context.Context) error {
	g := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return s.l.Close()
	})

	g.Go(func(ctx context.Context) error {
		var acceptErr error
		connPool := pool.New().WithContext(ctx)
		for {
			c, err := s.l.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					acceptErr = err
				}
				break
			}

			s.log.Debug().Stringer("remote", c.RemoteAddr()).Msg("Accepted connection")
			connPool.Go(func(ctx context.Context) error {
				s.runConn(ctx, c)
				return nil
			})
		}

		waitErr := connPool.Wait()
		switch {
		case acceptErr != nil:
			return fmt.Errorf("server Accept() errored: %w", acceptErr)
		case waitErr != nil:
			return fmt.Errorf("conn wait() errored: %w", waitErr)
		default:
			return nil
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func newGoCapnpServer(addr string, log zerolog.Logger) (*gocapnpServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "capnp").Logger()
	return &gocapnpServer{
		l:    l,
		log:  log,
		disp: ops.Dispatcher{RecoverID: true, Transport: "capnp", Log: log},
	}, nil
}
