// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"fmt"

	grpc "google.golang.org/grpc"
)

const (
	serviceName    = "calcproto.Calculator"
	evaluateMethod = "/" + serviceName + "/Evaluate"
)

// frame is the only message type of the service: a raw protocol frame.
type frame struct {
	b []byte
}

// rawCodec carries frames as the gRPC message payload, unchanged.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	f, ok := v.(*frame)
	if !ok {
		return nil, fmt.Errorf("rawCodec: unable to marshal %T", v)
	}
	return f.b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return fmt.Errorf("rawCodec: unable to unmarshal into %T", v)
	}
	f.b = append(f.b[:0], data...)
	return nil
}

func (rawCodec) Name() string {
	return "calcwire"
}

type calculatorServer interface {
	evaluate(context.Context, *frame) (*frame, error)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(frame)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(calculatorServer).evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: evaluateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(calculatorServer).evaluate(ctx, req.(*frame))
	}
	return interceptor(ctx, in, info, handler)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*calculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    evaluateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calcproto",
}
