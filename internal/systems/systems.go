// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package systems lists every transport the calculator can be served on.
package systems

import (
	"fmt"
	"strings"

	"github.com/matheusd/calcproto/calc"
	"github.com/matheusd/calcproto/internal/rpc/gocapnp"
	"github.com/matheusd/calcproto/internal/rpc/grpc"
	"github.com/matheusd/calcproto/internal/rpc/http1"
	"github.com/matheusd/calcproto/internal/rpc/mdcapnp"
	"github.com/matheusd/calcproto/internal/rpc/tcp"
	"github.com/matheusd/calcproto/internal/rpc/udp"
	"github.com/matheusd/calcproto/internal/rpc/websocket"
)

var allSystems = []calc.System{
	{
		Name:       "tcp",
		Initer:     tcp.TCPFactoryIniter,
		Notes:      "TML-framed requests over a TCP stream",
		RecoversID: true,
	}, {
		Name:   "udp",
		Initer: udp.UDPFactoryIniter,
		Notes:  "One request per UDP datagram",
	}, {
		Name:       "ws",
		Initer:     websocket.WSFactoryIniter,
		Notes:      "One request per binary websocket message",
		RecoversID: true,
	}, {
		Name:       "http1",
		Initer:     http1.HTTP1FactoryIniter,
		Notes:      "Request frame POSTed as the body",
		RecoversID: true,
	}, {
		Name:       "grpc",
		Initer:     grpc.GRPCFactoryIniter,
		Notes:      "Unary gRPC call carrying the raw frame",
		RecoversID: true,
	}, {
		Name:       "capnp",
		Initer:     gocapnp.GoCapNProtoFactoryIniter,
		Notes:      "One capnp message per request, frame in a Data pointer",
		RecoversID: true,
	}, {
		Name:       "mdcapnp",
		Initer:     mdcapnp.MDCapNProtoFactoryIniter,
		Notes:      "Hand-built capnp RPC call carrying the raw frame",
		RecoversID: true,
	},
}

// All returns every registered transport.
func All() []calc.System {
	res := make([]calc.System, len(allSystems))
	copy(res, allSystems)
	return res
}

// Names returns the names of the registered transports.
func Names() []string {
	names := make([]string, len(allSystems))
	for i := range allSystems {
		names[i] = allSystems[i].Name
	}
	return names
}

// Lookup finds a transport by name.
func Lookup(name string) (*calc.System, error) {
	for i := range allSystems {
		if allSystems[i].Name == name {
			sys := allSystems[i]
			return &sys, nil
		}
	}
	return nil, fmt.Errorf("unknown transport %q (valid: %s)", name,
		strings.Join(Names(), ", "))
}

func fullTestMatrix() []calc.BenchCase {
	parallelCases := []bool{false, true}
	matrix := make([]calc.BenchCase, 0, len(parallelCases)*len(allSystems))
	for _, parallel := range parallelCases {
		for si := range allSystems {
			matrix = append(matrix, calc.BenchCase{
				Sys:      &allSystems[si],
				Parallel: parallel,
			})
		}
	}
	return matrix
}
