// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheusd/calcproto/internal/binutils"
	"github.com/matheusd/calcproto/internal/metrics"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
	"github.com/rs/zerolog"
)

// Path is the endpoint the calculator is served on.
const Path = "/calc"

// maxMessageSize bounds a request message. Anything larger cannot carry a
// valid TML and the connection is dropped.
const maxMessageSize = 4 * binutils.MaxFrameSize

type wsServer struct {
	l        net.Listener
	log      zerolog.Logger
	upgrader *websocket.Upgrader
	disp     ops.Dispatcher
}

func (s *wsServer) Addr() string {
	return s.l.Addr().String()
}

// runConn answers each binary message with one response message.
func (s *wsServer) runConn(conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)
	out := make([]byte, 0, wire.ResponseSize)
	for {
		// Read message from client
		_, rawReader, err := conn.NextReader()
		if err != nil {
			return fmt.Errorf("error obtaining reader: %w", err)
		}
		frame, err := io.ReadAll(rawReader)
		if err != nil {
			return fmt.Errorf("error reading frame: %w", err)
		}

		resp := s.disp.Dispatch(frame)
		out = resp.AppendEncode(out[:0])
		if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
	}
}

func isPeerClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (s *wsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("Upgrade error")
		return
	}
	defer conn.Close()
	defer metrics.SessionOpened("ws")()

	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("Accepted connection")

	// Hijacked conns are not closed by Shutdown.
	stop := context.AfterFunc(r.Context(), func() { conn.Close() })
	defer stop()

	err = s.runConn(conn)
	if r.Context().Err() != nil || isPeerClose(err) {
		log.Debug().Msg("Connection closed")
		return
	}
	log.Warn().Err(err).Msg("Websocket conn errored")
}

func (s *wsServer) Run(ctx context.Context) error {
	var hs http.Server

	mux := http.NewServeMux()
	mux.Handle(Path, s)
	hs.Addr = s.l.Addr().String()
	hs.Handler = mux
	hs.BaseContext = func(net.Listener) context.Context { return ctx }
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		hs.Shutdown(shutCtx)
		cancel()
	}()

	err := hs.Serve(s.l)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

func newWSServer(addr string, log zerolog.Logger) (*wsServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for simplicity
		},
	}

	log = log.With().Str("transport", "ws").Logger()
	return &wsServer{
		l:        l,
		log:      log,
		upgrader: &upgrader,
		disp:     ops.Dispatcher{RecoverID: true, Transport: "ws", Log: log},
	}, nil
}
