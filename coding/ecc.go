// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "github.com/unixdj/qrpage/gf256"

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// SplitBlocks splits data codewords into error correction blocks for
// the given version and level.  Short blocks come first; long blocks
// hold one more byte.  The returned slices alias data.
func SplitBlocks(data []byte, v Version, l Level) [][]byte {
	nblock, _ := v.Blocks(l)
	db := len(data) / nblock
	normal := nblock - len(data)%nblock
	blocks := make([][]byte, nblock)
	for i := range blocks {
		n := db
		if i >= normal {
			n++
		}
		blocks[i], data = data[:n:n], data[n:]
	}
	return blocks
}

// AddErrorCorrection computes check bytes for data, which must hold
// exactly the number of data bytes for the version and level, and
// returns the data and check bytes interleaved in transmission order.
func AddErrorCorrection(data []byte, v Version, l Level) ([]byte, error) {
	if !v.IsValid() {
		return nil, ErrVersion
	}
	if !l.IsValid() {
		return nil, ErrLevel
	}
	if nd := v.dataBytes(l); len(data) != nd {
		return nil, CapacityError{Bits: len(data) * 8, Max: nd * 8}
	}
	nblock, check := v.Blocks(l)
	blocks := SplitBlocks(data, v, l)
	ecc := make([][]byte, nblock)
	rs := gf256.NewRSEncoder(Field, check)
	for i, b := range blocks {
		ecc[i] = make([]byte, check)
		rs.ECC(b, ecc[i])
	}

	out := make([]byte, 0, v.Codewords())
	out = interleave(out, blocks)
	out = interleave(out, ecc)
	if len(out) != v.Codewords() {
		panic("qr: internal error")
	}
	return out, nil
}

// interleave appends to dst one byte from each block in turn.
// Blocks that run out drop out of the rotation.
func interleave(dst []byte, blocks [][]byte) []byte {
	n := 0
	for _, b := range blocks {
		n = max(n, len(b))
	}
	for i := 0; i < n; i++ {
		for _, b := range blocks {
			if i < len(b) {
				dst = append(dst, b[i])
			}
		}
	}
	return dst
}
