// Copyright 2010 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf256 implements arithmetic over the Galois Field GF(256)
// and Reed-Solomon error correction encoding.
package gf256 // import "github.com/unixdj/qrpage/gf256"

import "strconv"

// A Field represents an instance of GF(256) defined by a specific
// polynomial.
type Field struct {
	log [256]byte // log[0] is unused
	exp [510]byte
}

// NewField returns a new field corresponding to the polynomial poly
// and generator α.  The Reed-Solomon encoding in QR codes uses
// polynomial 0x11d with generator 2.
//
// The choice of generator α only affects the Exp and Log operations.
func NewField(poly, α int) *Field {
	if poly < 0x100 || poly >= 0x200 || reducible(poly) {
		panic("gf256: invalid polynomial: " + strconv.Itoa(poly))
	}

	var f Field
	x := 1
	for i := 0; i < 255; i++ {
		if x == 1 && i != 0 {
			panic("gf256: invalid generator " + strconv.Itoa(α) +
				" for polynomial " + strconv.Itoa(poly))
		}
		f.exp[i] = byte(x)
		f.exp[i+255] = byte(x)
		f.log[x] = byte(i)
		x = mul(x, α, poly)
	}
	f.log[0] = 255
	return &f
}

// reducible reports whether p is reducible over GF(2).
func reducible(p int) bool {
	// A reducible polynomial of degree 8 has a factor of degree 4
	// or less.
	for q := 2; q < 0x20; q++ {
		if polyMod(p, q) == 0 {
			return true
		}
	}
	return false
}

// polyMod returns the remainder of p divided by q over GF(2).
func polyMod(p, q int) int {
	dq := bitlen(q)
	for dp := bitlen(p); dp >= dq; dp = bitlen(p) {
		p ^= q << (dp - dq)
	}
	return p
}

func bitlen(x int) int {
	n := 0
	for ; x != 0; x >>= 1 {
		n++
	}
	return n
}

// mul returns the product x*y mod poly, a GF(256) multiplication.
func mul(x, y, poly int) int {
	z := 0
	for x > 0 {
		if x&1 != 0 {
			z ^= y
		}
		x >>= 1
		y <<= 1
		if y&0x100 != 0 {
			y ^= poly
		}
	}
	return z
}

// Add returns the sum of x and y in the field.
func (f *Field) Add(x, y byte) byte {
	return x ^ y
}

// Exp returns the base-α exponential of e in the field.
// If e < 0, Exp returns 0.
func (f *Field) Exp(e int) byte {
	if e < 0 {
		return 0
	}
	return f.exp[e%255]
}

// Log returns the base-α logarithm of x in the field.
// If x == 0, Log returns -1.
func (f *Field) Log(x byte) int {
	if x == 0 {
		return -1
	}
	return int(f.log[x])
}

// Inv returns the multiplicative inverse of x in the field.
// If x == 0, Inv returns 0.
func (f *Field) Inv(x byte) byte {
	if x == 0 {
		return 0
	}
	return f.exp[255-int(f.log[x])]
}

// Mul returns the product of x and y in the field.
func (f *Field) Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[int(f.log[x])+int(f.log[y])]
}

// An RSEncoder implements Reed-Solomon encoding
// over a given field using a given number of error correction bytes.
type RSEncoder struct {
	f    *Field
	c    int
	gen  []byte // generator polynomial, highest degree first
	lgen []byte // log of gen[1:]
	p    []byte // scratch
}

// gen returns the generator polynomial ∏(x - α^i), 0 <= i < e.
func (f *Field) gen(e int) []byte {
	p := make([]byte, 1, e+1)
	p[0] = 1
	for i := 0; i < e; i++ {
		r := f.exp[i]
		p = append(p, 0)
		for j := len(p) - 1; j > 0; j-- {
			p[j] ^= f.Mul(p[j-1], r)
		}
	}
	return p
}

// NewRSEncoder returns a new Reed-Solomon encoder
// over the given field and number of error correction bytes.
func NewRSEncoder(f *Field, c int) *RSEncoder {
	if c < 1 || c > 254 {
		panic("gf256: invalid number of check bytes: " + strconv.Itoa(c))
	}
	gen := f.gen(c)
	lgen := make([]byte, c)
	for i, v := range gen[1:] {
		if v == 0 {
			panic("gf256: zero generator coefficient")
		}
		lgen[i] = f.log[v]
	}
	return &RSEncoder{f: f, c: c, gen: gen, lgen: lgen}
}

// Generator returns the generator polynomial used by rs,
// highest degree coefficient first.
func (rs *RSEncoder) Generator() []byte {
	g := make([]byte, len(rs.gen))
	copy(g, rs.gen)
	return g
}

// ECC writes to check the error correcting code bytes
// for data using the given Reed-Solomon parameters.
// The check slice must be at least as long as the number of
// check bytes.  An RSEncoder is not safe for concurrent use.
func (rs *RSEncoder) ECC(data []byte, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	// The check bytes are the remainder after dividing
	// data padded with c zeros by the generator polynomial.
	n := len(data) + rs.c
	if cap(rs.p) < n {
		rs.p = make([]byte, n)
	}
	p := rs.p[:n]
	copy(p, data)
	clear(p[len(data):])

	// Synthetic division.
	f := rs.f
	lgen := rs.lgen
	for i := range data {
		c := p[i]
		if c == 0 {
			continue
		}
		q := p[i+1:]
		lc := int(f.log[c])
		for j, lg := range lgen {
			q[j] ^= f.exp[lc+int(lg)]
		}
	}
	copy(check, p[len(data):])
}
