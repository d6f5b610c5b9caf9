// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command calcserver serves the calculator on every transport that has a
// configured address.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheusd/calcproto/internal/config"
	"github.com/matheusd/calcproto/internal/logging"
	"github.com/matheusd/calcproto/internal/metrics"
	"github.com/matheusd/calcproto/internal/systems"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

var configPath = flag.String("config", "", "config file")

// serve runs one server per configured listener until ctx is done or any
// of them fails. Each server binds inside the pool, so a transport that
// cannot bind stops the ones already listening. ready is called, possibly
// concurrently, with each bound address before serving.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger,
	ready func(transport, addr string)) error {

	listeners := cfg.Listeners()
	if len(listeners) == 0 {
		return errors.New("no transport has a configured address")
	}

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	for _, name := range systems.Names() {
		addr, ok := listeners[name]
		if !ok {
			continue
		}
		sys, err := systems.Lookup(name)
		if err != nil {
			return err
		}
		p.Go(func(ctx context.Context) error {
			s, err := sys.Initer().NewServer(addr, log)
			if err != nil {
				return fmt.Errorf("unable to start %s server on %s: %w", name, addr, err)
			}
			log.Info().Str("transport", name).Str("addr", s.Addr()).Msg("Listening")
			if ready != nil {
				ready(name, s.Addr())
			}
			return s.Run(ctx)
		})
	}

	if addr := cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv := &http.Server{Addr: addr, Handler: mux}
		log.Info().Str("addr", addr).Msg("Serving metrics")
		p.Go(func(ctx context.Context) error {
			stop := context.AfterFunc(ctx, func() { metricsSrv.Close() })
			defer stop()
			err := metricsSrv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("metrics server failed: %w", err)
		})
	}

	err := p.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	return err
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, log, nil); err != nil {
		log.Error().Err(err).Msg("Server failed")
		return err
	}
	log.Info().Msg("Shut down")
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "calcserver: %v\n", err)
		os.Exit(1)
	}
}
