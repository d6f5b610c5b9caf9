// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package batch reads TOML scripts of calculator requests.
//
// A script is a list of request tables:
//
//	[[request]]
//	op = "addition" # or "+" or 1
//	a = 10
//	b = 3
package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/matheusd/calcproto/internal/ops"
	"github.com/matheusd/calcproto/internal/wire"
)

// ErrEmpty is returned for scripts without requests.
var ErrEmpty = errors.New("batch: no requests")

// Op is an opcode given either as an integer or as a name/symbol string.
type Op struct {
	Code wire.OpCode
	set  bool
}

// UnmarshalTOML implements toml.Unmarshaler.
func (o *Op) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		if v < 0 || v >= wire.NumOpCodes {
			return fmt.Errorf("%w: opcode %d", wire.ErrUnknownOperation, v)
		}
		o.Code, o.set = wire.OpCode(v), true
		return nil
	case string:
		code, err := ops.Parse(v)
		if err != nil {
			return err
		}
		o.Code, o.set = code, true
		return nil
	default:
		return fmt.Errorf("op must be an integer or string, got %T", v)
	}
}

// Request is one scripted calculation.
type Request struct {
	Op Op    `toml:"op"`
	A  int32 `toml:"a"`
	B  int32 `toml:"b"`
}

// Script is a decoded batch file.
type Script struct {
	Requests []Request `toml:"request"`
}

func check(meta toml.MetaData, s Script) (Script, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Script{}, fmt.Errorf("batch: unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(s.Requests) == 0 {
		return Script{}, ErrEmpty
	}
	for i, r := range s.Requests {
		if !r.Op.set {
			return Script{}, fmt.Errorf("batch: request %d has no op", i+1)
		}
	}
	return s, nil
}

// Decode reads a script from r.
func Decode(r io.Reader) (Script, error) {
	var s Script
	meta, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return Script{}, fmt.Errorf("batch: %w", err)
	}
	return check(meta, s)
}

// Load reads the script at path.
func Load(path string) (Script, error) {
	var s Script
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Script{}, fmt.Errorf("batch: %s: %w", path, err)
	}
	return check(meta, s)
}
