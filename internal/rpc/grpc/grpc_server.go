// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"net"

	"github.com/matheusd/calcproto/internal/ops"
	"github.com/rs/zerolog"
	grpc "google.golang.org/grpc"
)

type grpcServer struct {
	gs   *grpc.Server
	l    net.Listener
	disp ops.Dispatcher
}

func (s *grpcServer) evaluate(_ context.Context, req *frame) (*frame, error) {
	resp := s.disp.Dispatch(req.b)
	return &frame{b: resp.Encode()}, nil
}

func (s *grpcServer) Addr() string {
	return s.l.Addr().String()
}

func (s *grpcServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.gs.GracefulStop()
	}()
	return s.gs.Serve(s.l)
}

func newGRPCServer(addr string, log zerolog.Logger) (*grpcServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "grpc").Logger()
	s := &grpcServer{
		l:    l,
		disp: ops.Dispatcher{RecoverID: true, Transport: "grpc", Log: log},
	}
	s.gs = grpc.NewServer(grpc.ForceServerCodec(rawCodec{}))
	s.gs.RegisterService(&calculatorServiceDesc, s)
	return s, nil
}
