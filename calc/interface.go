// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"context"

	"github.com/rs/zerolog"
)

// Runnable is an interface to objects that can run.
type Runnable interface {
	Run(context.Context) error
}

// Server is the interface to a calculator server bound to one transport.
// Run serves until the context is canceled; a canceled context is not
// reported as an error.
type Server interface {
	Runnable

	// Addr is the address the server is bound to.
	Addr() string
}

// Client is the interface to a calculator client.
type Client interface {
	// RoundTrip sends one request frame and returns the raw response
	// frame. Frames are not validated by the transport, so malformed
	// requests may be sent to exercise the server.
	//
	// Stream clients that fail midway through an exchange close their
	// connection, and every later call fails with an error wrapping
	// ErrClientBroken.
	//
	// A client is only ever used by one goroutine at a time.
	RoundTrip(ctx context.Context, frame []byte) ([]byte, error)

	// Close releases the client's connection.
	Close() error
}

// Factory creates servers and clients for one transport.
type Factory interface {
	// NewServer should create a server bound to addr. An addr with port
	// 0 binds to any free port; see Server.Addr.
	NewServer(addr string, log zerolog.Logger) (Server, error)

	// NewClient should create a new client connected to a server at
	// addr. The client is closed when ctx is done.
	NewClient(ctx context.Context, addr string) (Client, error)
}

type FactoryIniter func() Factory

// System describes one registered transport.
type System struct {
	Name   string
	Initer FactoryIniter
	Notes  string

	// RecoversID is true if the transport echoes the id field of
	// requests that fail validation. Datagram transports answer those
	// with id 0.
	RecoversID bool
}
