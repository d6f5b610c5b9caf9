// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command calcclient sends calculator requests typed at a prompt or read
// from a TOML batch file.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheusd/calcproto/internal/batch"
	"github.com/matheusd/calcproto/internal/config"
	"github.com/matheusd/calcproto/internal/logging"
	"github.com/matheusd/calcproto/internal/systems"
)

var (
	configPath = flag.String("config", "", "config file")
	transport  = flag.String("transport", "", "transport (overrides client.transport)")
	server     = flag.String("server", "", "server host:port (overrides client.server)")
	batchPath  = flag.String("batch", "", "TOML file of requests to send instead of prompting")
	asJSON     = flag.Bool("json", false, "print one JSON object per line")
)

func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}
	if *transport != "" {
		cfg.Client.Transport = *transport
	}
	if *server != "" {
		cfg.Client.Server = *server
	}

	sys, err := systems.Lookup(cfg.Client.Transport)
	if err != nil {
		return err
	}

	var script batch.Script
	if *batchPath != "" {
		if script, err = batch.Load(*batchPath); err != nil {
			return err
		}
	}

	c, err := sys.Initer().NewClient(ctx, cfg.Client.Server)
	if err != nil {
		return fmt.Errorf("unable to connect to %s server at %s: %w",
			sys.Name, cfg.Client.Server, err)
	}
	defer c.Close()
	log.Debug().Str("transport", sys.Name).Str("server", cfg.Client.Server).Msg("Connected")

	firstID := uint16(1 + rand.IntN(5000))
	s := newSession(c, firstID, cfg.Client.Timeout, os.Stdout, *asJSON)
	if *batchPath != "" {
		err = s.runBatch(ctx, script)
	} else {
		fmt.Fprintf(os.Stdout, "Connected to %s (%s)\n", cfg.Client.Server, sys.Name)
		err = s.runInteractive(ctx, os.Stdin)
	}
	if err != nil {
		return err
	}
	return s.finish()
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "calcclient: %v\n", err)
		os.Exit(2)
	}
}
