// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package udp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// MaxDatagramSize is the receive buffer size. Larger datagrams are
// truncated by the socket and then fail TML validation.
const MaxDatagramSize = 1024

type udpServer struct {
	pc   net.PacketConn
	log  zerolog.Logger
	disp ops.Dispatcher
}

func (s *udpServer) Addr() string {
	return s.pc.LocalAddr().String()
}

// serve handles datagrams one at a time until the socket is closed. Every
// datagram gets exactly one reply, sent to its source address.
func (s *udpServer) serve() error {
	buf := make([]byte, MaxDatagramSize)
	out := make([]byte, 0, wire.ResponseSize)
	for {
		n, addr, err := s.pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("UDP read errored: %w", err)
		}

		resp := s.disp.Dispatch(buf[:n])
		out = resp.AppendEncode(out[:0])
		if _, err := s.pc.WriteTo(out, addr); err != nil {
			// The next datagram is independent of this one.
			s.log.Warn().Err(err).Stringer("remote", addr).Msg("Unable to send reply")
		}
	}
}

func (s *udpServer) Run(ctx context.Context) error {
	g := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return s.pc.Close()
	})

	g.Go(func(ctx context.Context) error {
		return s.serve()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func newUDPServer(addr string, log zerolog.Logger) (*udpServer, error) {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "udp").Logger()
	return &udpServer{
		pc:  pc,
		log: log,

		// The datagram envelope carries the peer address, but ids are
		// not trusted from a datagram that failed validation.
		disp: ops.Dispatcher{Transport: "udp", Log: log},
	}, nil
}
