// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calc

import (
	"context"
	"fmt"
	"runtime"
	"testing"
)

type BenchCase struct {
	Sys      *System
	Parallel bool
}

func (bc BenchCase) Name() string {
	if !bc.Parallel {
		return fmt.Sprintf("sequential/%s", bc.Sys.Name)
	}
	return fmt.Sprintf("parallel/%s", bc.Sys.Name)
}

// makeCall performs one random calculation and checks the reply.
func makeCall(ctx context.Context, hc *harnessClient) error {
	op, a, b := randOpCode(hc.rng), randOperand(hc.rng), randOperand(hc.rng)
	id := hc.nextID()
	resp, err := Call(ctx, hc.c, op, a, b, id)
	if err != nil {
		return err
	}
	if want := ExpectedResponse(op, a, b, id); resp != want {
		return fmt.Errorf("wrong response to %d %c %d (id %d): got %+v, want %+v",
			a, op.Symbol(), b, id, resp, want)
	}
	return nil
}

func runSequentialBench(b *testing.B, bc BenchCase) error {
	fac := bc.Sys.Initer()

	ctx := b.Context()
	sh, err := NewServerHarness(ctx, b, fac)
	if err != nil {
		return err
	}

	ch, err := newClientHarness(ctx, b, sh.Addr, fac, 1)
	if err != nil {
		return err
	}

	b.ReportAllocs()
	for b.Loop() {
		if err := makeCall(ctx, ch.clients[0]); err != nil {
			return err
		}
	}

	return nil
}

func runParallelBench(b *testing.B, bc BenchCase) error {
	fac := bc.Sys.Initer()

	ctx := b.Context()
	sh, err := NewServerHarness(ctx, b, fac)
	if err != nil {
		return err
	}

	nbClients := runtime.GOMAXPROCS(0)
	ch, err := newClientHarness(ctx, b, sh.Addr, fac, nbClients)
	if err != nil {
		return err
	}

	clients := make(chan *harnessClient, nbClients)
	for i := range ch.clients {
		clients <- ch.clients[i]
	}

	b.ReportAllocs()
	b.RunParallel(func(p *testing.PB) {
		c := <-clients
		for p.Next() {
			if err := makeCall(ctx, c); err != nil {
				b.Error(err)
				return
			}
		}
	})

	return nil
}

func RunCase(b *testing.B, bc BenchCase) error {
	if !bc.Parallel {
		return runSequentialBench(b, bc)
	}

	return runParallelBench(b, bc)
}
