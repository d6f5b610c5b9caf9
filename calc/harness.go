// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type harnessClient struct {
	c   Client
	rng *rand.Rand
	ids RequestIDCounter
}

// nextID advances the client's request id counter.
func (hc *harnessClient) nextID() uint16 {
	var id uint16
	id, hc.ids = hc.ids.Next()
	return id
}

type clientsHarness struct {
	clients []*harnessClient
}

func newClientHarness(ctx context.Context, t testing.TB, saddr string, fac Factory, nbClients int) (*clientsHarness, error) {
	ch := &clientsHarness{
		clients: make([]*harnessClient, 0, nbClients),
	}

	for i := range nbClients {
		c, err := fac.NewClient(ctx, saddr)
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { c.Close() })

		seed := uint64(time.Now().UnixNano())
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		ch.clients = append(ch.clients, &harnessClient{
			c:   c,
			rng: rng,
			ids: NewRequestIDCounter(uint16(rng.Uint32())),
		})
	}

	return ch, nil
}

// ServerHarness is a server running in the background of a test.
type ServerHarness struct {
	s    Server
	Addr string
}

// NewServerHarness starts a server of the given transport on a loopback
// port. The server is stopped when ctx is canceled, which must happen
// before the test's cleanup runs (t.Context() and b.Context() qualify).
func NewServerHarness(ctx context.Context, t testing.TB, fac Factory) (*ServerHarness, error) {
	s, err := fac.NewServer("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		return nil, err
	}

	sh := &ServerHarness{
		s:    s,
		Addr: s.Addr(),
	}

	runChan := make(chan error, 1)
	go func() { runChan <- s.Run(ctx) }()
	t.Cleanup(func() {
		select {
		case runErr := <-runChan:
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				t.Errorf("Error running server: %v", runErr)
			}
		case <-time.After(time.Second):
			t.Error("Timed out waiting for server Run() to finish")
		}
	})

	return sh, nil
}
