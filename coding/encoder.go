// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// EncodeData encodes the segments for a QR code of the given version
// and level and returns the data codewords, padded to capacity.
func EncodeData(v Version, l Level, segs ...Segment) ([]byte, error) {
	if !v.IsValid() {
		return nil, ErrVersion
	}
	if !l.IsValid() {
		return nil, ErrLevel
	}
	class := v.SizeClass()
	b := NewBits(v)
	for _, seg := range segs {
		if err := seg.Encode(b, class); err != nil {
			if ce, ok := err.(CapacityError); ok {
				ce.Level = l
				return nil, ce
			}
			return nil, err
		}
	}
	nd := v.dataBytes(l)
	if b.Bits() > nd*8 {
		return nil, CapacityError{Bits: b.Bits(), Max: nd * 8, Level: l}
	}
	b.Pad(nd)
	return b.Bytes(), nil
}

// Layout places interleaved codewords into the symbol and applies
// the mask with the lowest penalty.  Ties go to the lower mask.
func (p *Plan) Layout(codewords []byte) (*Code, error) {
	if len(codewords) != p.Version.Codewords() {
		return nil, CapacityError{
			Bits:  len(codewords) * 8,
			Max:   p.Version.Codewords() * 8,
			Level: p.Level,
		}
	}
	data := make([]byte, len(p.Map))
	p.Serialise(NewBitStream(codewords), data)
	var best *Code
	bestPenalty := 0
	for mask := range p.Pattern {
		c := p.apply(data, mask)
		if pen := c.Penalty(); best == nil || pen < bestPenalty {
			best, bestPenalty = c, pen
		}
	}
	return best, nil
}

// LayoutMask places interleaved codewords into the symbol using the
// given mask.
func (p *Plan) LayoutMask(codewords []byte, mask int) (*Code, error) {
	if mask < 0 || mask >= NumMasks {
		return nil, ErrMask
	}
	if len(codewords) != p.Version.Codewords() {
		return nil, CapacityError{
			Bits:  len(codewords) * 8,
			Max:   p.Version.Codewords() * 8,
			Level: p.Level,
		}
	}
	data := make([]byte, len(p.Map))
	p.Serialise(NewBitStream(codewords), data)
	return p.apply(data, mask), nil
}

// apply combines the data bitmap with function patterns, format
// information and mask.
func (p *Plan) apply(data []byte, mask int) *Code {
	pat := p.Pattern[mask]
	bm := make([]byte, len(data))
	for i := range bm {
		bm[i] = data[i] ^ pat[i]
	}
	return &Code{
		Bitmap:  bm,
		Size:    p.Size,
		Stride:  p.Stride,
		Version: p.Version,
		Level:   p.Level,
		Mask:    mask,
	}
}

// Encode encodes the segments into a QR code of the given version and
// level.
func (p *Plan) Encode(segs ...Segment) (*Code, error) {
	data, err := EncodeData(p.Version, p.Level, segs...)
	if err != nil {
		return nil, err
	}
	cw, err := AddErrorCorrection(data, p.Version, p.Level)
	if err != nil {
		return nil, err
	}
	return p.Layout(cw)
}

// Encode encodes the segments into a QR code of the given version and
// level.
func Encode(v Version, l Level, segs ...Segment) (*Code, error) {
	p, err := NewPlan(v, l)
	if err != nil {
		return nil, err
	}
	return p.Encode(segs...)
}
