// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mdcapnp

import (
	"context"

	rpc "matheusd.com/mdcapnp/capnprpc"
	ser "matheusd.com/mdcapnp/capnpser"
)

// The calculator interface has a single method taking and returning a
// struct with one Data pointer: the request and response frames.
const (
	calc_interfaceId      = 0xca1c
	calc_evaluateMethodId = 0x0001
)

var frameStructSize = ser.StructSize{DataSectionSize: 0, PointerSectionSize: 1}

type frameStructBuilder ser.StructBuilder

func (b *frameStructBuilder) SetFrame(v []byte) error {
	return (*ser.StructBuilder)(b).SetData(0, v)
}

func (b *frameStructBuilder) NewFrame(n int) ([]byte, error) {
	return (*ser.StructBuilder)(b).NewDataField(0, ser.ByteCount(n))
}

type frameStruct ser.Struct

// Frame aliases the message's storage.
func (s *frameStruct) Frame() []byte {
	return []byte((*ser.Struct)(s).Data(0))
}

type calcAPI rpc.CallFuture

type futureEvaluate rpc.CallFuture

// Wait returns a copy of the response frame.
func (fut futureEvaluate) Wait(ctx context.Context) ([]byte, error) {
	r, rr, err := rpc.WaitShallowCopyReturnResultsStruct[frameStruct](ctx, rpc.CallFuture(fut))
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), r.Frame()...)
	rr.Release()
	return out, nil
}

func (api calcAPI) Evaluate(frame []byte) futureEvaluate {
	frameSerSize, _ := ser.ByteCount(len(frame)).StorageWordCount()
	cs, req := rpc.SetupCallWithStructParamsGeneric[frameStructBuilder](
		rpc.CallFuture(api),
		frameStructSize.TotalSize()+frameSerSize,
		calc_interfaceId,
		calc_evaluateMethodId,
		frameStructSize,
	)

	req.SetFrame(frame)
	cs.WantShallowReturnCopy = true

	return futureEvaluate(rpc.RemoteCall(
		rpc.CallFuture(api),
		cs,
	))
}

func calcAPIFromBootstrap(boot rpc.BootstrapFuture) calcAPI {
	return calcAPI(boot)
}
