// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "sync"

// NumMasks is the number of QR mask patterns.
const NumMasks = 8

// A Plan describes how to construct a QR code
// with a specific version and level.
type Plan struct {
	Version Version // QR code version
	Level   Level   // QR error correction Level

	DataBits int // number of data bits
	Size     int // number of modules on a side
	Stride   int // number of bytes per row

	Map     []byte           // module map: 0 is data or checksum, 1 is reserved
	Pattern [NumMasks][]byte // finders, alignment, timing, format and mask
}

// Pre-allocated Plans.  A Plan is created the first time a
// combination of version and level is used and never modified.
var plans [MaxVersion + 1][H + 1]struct {
	once sync.Once
	p    *Plan
}

// NewPlan returns a Plan for a QR code with the given version and
// level.  The Plan is shared and must not be modified.
func NewPlan(version Version, level Level) (*Plan, error) {
	if !version.IsValid() {
		return nil, ErrVersion
	}
	if !level.IsValid() {
		return nil, ErrLevel
	}
	p := &plans[version][level]
	p.once.Do(func() { p.p = vplan(version, level) })
	return p.p, nil
}

// bitmap helpers; rows are stride bytes, MSB first.

func getBit(bm []byte, stride, x, y int) bool {
	return bm[y*stride+x>>3]>>(7&^x)&1 != 0
}

func setBit(bm []byte, stride, x, y int, v bool) {
	i, b := y*stride+x>>3, byte(0x80)>>(x&7)
	if v {
		bm[i] |= b
	} else {
		bm[i] &^= b
	}
}

// IsReserved reports whether the module at (x, y) belongs to a
// function pattern or to format or version information.
func (p *Plan) IsReserved(x, y int) bool {
	return 0 <= x && x < p.Size && 0 <= y && y < p.Size &&
		getBit(p.Map, p.Stride, x, y)
}

// planner draws function patterns, marking them in the map.
type planner struct {
	p   *Plan
	pat []byte // function pattern colours
}

func (pl *planner) set(x, y int, dark bool) {
	setBit(pl.p.Map, pl.p.Stride, x, y, true)
	setBit(pl.pat, pl.p.Stride, x, y, dark)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// finder draws a finder pattern with its separator centred at x, y.
func (pl *planner) finder(x, y int) {
	siz := pl.p.Size
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			xx, yy := x+dx, y+dy
			if 0 <= xx && xx < siz && 0 <= yy && yy < siz {
				d := max(abs(dx), abs(dy))
				pl.set(xx, yy, d != 2 && d != 4)
			}
		}
	}
}

// alignBox draws an alignment (small) box centred at x, y.
func (pl *planner) alignBox(x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			pl.set(x+dx, y+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

// formatBits draws both copies of the 15 bit format information and
// the dark module.
func (pl *planner) formatBits(fb uint16) {
	siz := pl.p.Size
	bit := func(i int) bool { return fb>>i&1 != 0 }
	// around the top left finder
	for i := 0; i <= 5; i++ {
		pl.set(8, i, bit(i))
	}
	pl.set(8, 7, bit(6))
	pl.set(8, 8, bit(7))
	pl.set(7, 8, bit(8))
	for i := 9; i < 15; i++ {
		pl.set(14-i, 8, bit(i))
	}
	// under the top right and beside the bottom left finders
	for i := 0; i < 8; i++ {
		pl.set(siz-1-i, 8, bit(i))
	}
	for i := 8; i < 15; i++ {
		pl.set(8, siz-15+i, bit(i))
	}
	pl.set(8, siz-8, true) // one lonely dark module
}

// versionBits draws both copies of the 18 bit version information.
func (pl *planner) versionBits(vb uint32) {
	siz := pl.p.Size
	for i := 0; i < 18; i++ {
		dark := vb>>i&1 != 0
		a, b := siz-11+i%3, i/3
		pl.set(a, b, dark)
		pl.set(b, a, dark)
	}
}

// Mask reports whether mask inverts the module at (x, y).
func Mask(mask, x, y int) bool {
	switch mask {
	case 0:
		return (x+y)%2 == 0
	case 1:
		return y%2 == 0
	case 2:
		return x%3 == 0
	case 3:
		return (x+y)%3 == 0
	case 4:
		return (x/3+y/2)%2 == 0
	case 5:
		return x*y%2+x*y%3 == 0
	case 6:
		return (x*y%2+x*y%3)%2 == 0
	case 7:
		return ((x+y)%2+x*y%3)%2 == 0
	}
	panic("qr: invalid mask")
}

// vplan creates a Plan for the given version and level.
func vplan(v Version, l Level) *Plan {
	siz := v.Size()
	stride := (siz + 7) >> 3
	p := &Plan{
		Version:  v,
		Level:    l,
		DataBits: v.DataBits(l),
		Size:     siz,
		Stride:   stride,
		Map:      make([]byte, stride*siz),
	}
	pl := planner{p: p, pat: make([]byte, stride*siz)}

	// Timing patterns, partly overwritten by boxes.
	for i := 0; i < siz; i++ {
		pl.set(6, i, i%2 == 0)
		pl.set(i, 6, i%2 == 0)
	}

	// Position boxes.
	pl.finder(3, 3)
	pl.finder(siz-4, 3)
	pl.finder(3, siz-4)

	// Alignment boxes, except where position boxes are.
	align := vtab[v].align
	last := len(align) - 1
	for i, y := range align {
		for j, x := range align {
			if i == 0 && (j == 0 || j == last) || i == last && j == 0 {
				continue
			}
			pl.alignBox(x, y)
		}
	}

	// Reserve format area; bits are set per mask below.
	pl.formatBits(0)

	// Version pattern.
	if vb := vtab[v].pat; vb != 0 {
		pl.versionBits(vb)
	}

	for mask := range p.Pattern {
		mp := &planner{p: p, pat: append([]byte(nil), pl.pat...)}
		mp.formatBits(formatInfo(l, mask))
		for y := 0; y < siz; y++ {
			for x := 0; x < siz; x++ {
				if !getBit(p.Map, stride, x, y) && Mask(mask, x, y) {
					setBit(mp.pat, stride, x, y, true)
				}
			}
		}
		p.Pattern[mask] = mp.pat
	}
	return p
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}

// Serialise writes bits from s to the bitmap in zigzag scan order:
// two columns at a time from the right, alternately upwards and
// downwards, skipping the vertical timing column and reserved
// modules.  Modules left over after s is exhausted stay light.
func (p *Plan) Serialise(s BitStream, bitmap []byte) {
	siz, stride := p.Size, p.Stride
	for right := siz - 1; right >= 1; right -= 2 {
		if right == 6 { // vertical timing strip
			right = 5
		}
		up := (right+1)&2 == 0
		for vert := 0; vert < siz; vert++ {
			y := vert
			if up {
				y = siz - 1 - vert
			}
			for x := right; x >= right-1; x-- {
				if !getBit(p.Map, stride, x, y) && s.Next() != 0 {
					setBit(bitmap, stride, x, y, true)
				}
			}
		}
	}
}
