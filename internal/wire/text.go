// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// BOM is the big-endian byte-order-mark that prefixes operation names.
var BOM = []byte{0xFE, 0xFF}

var (
	// The encoder writes the FE FF mark itself.
	nameEncoding = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

	// Mark handling is done by decodeName so a little-endian mark is not
	// honoured.
	rawNameEncoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
)

// encodeName returns the BOM-prefixed UTF-16BE form of name.
func encodeName(name string) ([]byte, error) {
	return nameEncoding.NewEncoder().Bytes([]byte(name))
}

// decodeName decodes an operation name field. A leading BOM is stripped;
// without one the whole field is read as UTF-16BE. Unpaired surrogates and
// odd trailing bytes decode to U+FFFD.
func decodeName(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, BOM)
	out, err := rawNameEncoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
