// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/matheusd/calcproto/internal/metrics"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

type tcpServer struct {
	l    net.Listener
	log  zerolog.Logger
	disp ops.Dispatcher
}

func (s *tcpServer) Addr() string {
	return s.l.Addr().String()
}

// runConn serves one connection. Failures are logged and end only this
// connection.
func (s *tcpServer) runConn(ctx context.Context, c net.Conn) {
	log := s.log.With().Stringer("remote", c.RemoteAddr()).Logger()
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	defer c.Close()

	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	defer metrics.SessionOpened("tcp")()

	sess := newSession(c, &s.disp, log)
	err := sess.run()
	switch {
	case err == nil:
		log.Debug().Int("served", sess.served).Msg("Connection closed by peer")
	case ctx.Err() != nil:
		log.Debug().Int("served", sess.served).Msg("Connection closed on shutdown")
	default:
		log.Warn().Err(err).Msg("Closing connection")
	}
}

func (s *tcpServer) Run(ctx context.Context) error {
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

func newTCPServer(addr string, log zerolog.Logger) (*tcpServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "tcp").Logger()
	return &tcpServer{
		l:    l,
		log:  log,
		disp: ops.Dispatcher{RecoverID: true, Transport: "tcp", Log: log},
	}, nil
}
