// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mdcapnp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	rpc "matheusd.com/mdcapnp/capnprpc"
	ser "matheusd.com/mdcapnp/capnpser"
)

type server struct {
	v    *rpc.Vat
	l    net.Listener
	log  zerolog.Logger
	disp ops.Dispatcher
}

func (s *server) Addr() string {
	return s.l.Addr().String()
}

func (s *server) handleEvaluate(cc *rpc.CallContext) error {
	req, err := rpc.CallContextParamsStruct[frameStruct](cc)
	if err != nil {
		return err
	}
	resp := s.disp.Dispatch(req.Frame())

	resSizeHint, _ := ser.ByteCount(wire.ResponseSize).StorageWordCount()
	res, err := rpc.RespondCallAsStruct[frameStructBuilder](cc, frameStructSize, resSizeHint)
	if err != nil {
		return err
	}
	out, err := res.NewFrame(wire.ResponseSize)
	if err != nil {
		return err
	}
	copy(out, resp.Encode())
	return nil
}

// Call implements the vat's bootstrap handler.
func (s *server) Call(ctx context.Context, cc *rpc.CallContext) error {
	if cc.InterfaceId() != calc_interfaceId {
		return errors.New("wrong interfaceId")
	}
	switch cc.MethodId() {
	case calc_evaluateMethodId:
		return s.handleEvaluate(cc)
	default:
		return errors.New("unimplemented method")
	}
}

func (s *server) Run(ctx context.Context) error {
	g := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return s.l.Close()
	})

	g.Go(s.v.Run)

	g.Go(func(ctx context.Context) error {
		for {
			c, err := s.l.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					return fmt.Errorf("server Accept() errored: %w", err)
				}
				return nil
			}

			remoteName := c.RemoteAddr().String()
			s.log.Debug().Str("remote", remoteName).Msg("Accepted connection")
			s.v.RunConn(rpc.NewIOTransport(remoteName, c))
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func newServer(addr string, log zerolog.Logger) (*server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "mdcapnp").Logger()

	s := &server{
		l:    l,
		log:  log,
		disp: ops.Dispatcher{RecoverID: true, Transport: "mdcapnp", Log: log},
	}
	vatLog := log.Level(zerolog.WarnLevel)
	s.v = rpc.NewVat(
		rpc.WithName("server"),
		rpc.WithLogger(&vatLog),
		rpc.WithBootstrapHandler(s),
	)
	return s, nil
}
