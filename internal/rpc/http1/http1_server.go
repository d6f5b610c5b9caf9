// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package http1

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/matheusd/calcproto/internal/ops"
	"github.com/rs/zerolog"
)

const (
	// Path is the endpoint requests are posted to.
	Path = "/calc"

	contentType = "application/octet-stream"

	// maxBodySize bounds the request body read from a client.
	maxBodySize = 1024
)

type http1Server struct {
	l    net.Listener
	log  zerolog.Logger
	mux  http.ServeMux
	disp ops.Dispatcher
}

func (s *http1Server) Addr() string {
	return s.l.Addr().String()
}

// handleCalc answers one request frame carried as the body. Protocol
// failures are reported in the response frame; HTTP errors are only used
// for requests that do not carry a frame at all.
func (s *http1Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	frame, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("Unable to read request body")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	resp := s.disp.Dispatch(frame)
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(resp.Encode()); err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("Unable to write response")
	}
}

func (s *http1Server) Run(ctx context.Context) error {
	var hs http.Server

	hs.Addr = s.l.Addr().String()
	hs.Handler = &s.mux
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

func newHttp1Server(addr string, log zerolog.Logger) (*http1Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("transport", "http1").Logger()
	s := &http1Server{
		l:    l,
		log:  log,
		disp: ops.Dispatcher{RecoverID: true, Transport: "http1", Log: log},
	}
	s.mux.HandleFunc(Path, s.handleCalc)
	return s, nil
}
