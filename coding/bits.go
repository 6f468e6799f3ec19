// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Bits is a bit stream writer.  Bits are written MSB first.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version and level.
func NewBits(v Version) *Bits {
	return &Bits{b: make([]byte, 0, v.Codewords())}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits written.
func (b *Bits) Bits() int { return b.nbit }

// Bytes returns the written bytes.  It panics if the number of bits
// is not a multiple of 8.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	return b.b
}

// Write writes the low nbit bits of v, 0 <= nbit <= 32.
func (b *Bits) Write(v uint32, nbit int) {
	for nbit > 0 {
		if b.nbit&7 == 0 {
			b.b = append(b.b, 0)
		}
		free := 8 - b.nbit&7
		n := min(free, nbit)
		chunk := byte(v>>(nbit-n)) & (1<<n - 1)
		b.b[len(b.b)-1] |= chunk << (free - n)
		b.nbit += n
		nbit -= n
	}
}

// WriteBytes writes whole bytes.
func (b *Bits) WriteBytes(s string) {
	if b.nbit&7 == 0 {
		b.b = append(b.b, s...)
		b.nbit += len(s) * 8
		return
	}
	for i := 0; i < len(s); i++ {
		b.Write(uint32(s[i]), 8)
	}
}

// Pad adds up to 4 terminator bits to b, aligns it to a byte boundary
// and fills it with alternating 0xec and 0x11 up to n bytes.
// Pad panics if b holds more than n bytes.
func (b *Bits) Pad(n int) {
	if b.nbit > n*8 {
		panic("qr: too much data")
	}
	b.Write(0, min(4, n*8-b.nbit))
	if r := b.nbit & 7; r != 0 {
		b.Write(0, 8-r)
	}
	for i := 0; len(b.b) < n; i++ {
		b.b = append(b.b, [2]byte{0xec, 0x11}[i&1])
	}
	b.nbit = len(b.b) * 8
}
