// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package split splits strings into QR code segments and chooses the
smallest QR version that holds them.
*/
package split // import "github.com/unixdj/qrpage/split"

import (
	"unicode/utf8"

	"github.com/unixdj/qrpage/coding"
)

// QR error correction levels.
const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

/*
Modes used in segments.

	Mode           QR segment mode   Character encoding
	Numeric        numeric           ASCII digits
	Alphanumeric   alphanumeric      ASCII, see coding.AlphanumericChars
	Byte           byte              any data
	Latin1         byte              UTF-8 input encoded as ISO 8859-1

Byte and Latin1 are the byte modes passed to Split.  Latin1 accepts
UTF-8 characters up to U+00FF and counts characters, not bytes.
*/
const (
	Numeric      = coding.Numeric
	Alphanumeric = coding.Alphanumeric
	Byte         = coding.Byte
	Latin1       = coding.Latin1
)

// Text returns segments and minimum QR code version for text at the
// given error correction level, using Byte for characters outside the
// alphanumeric set.
func Text(text string, level coding.Level) ([]coding.Segment, coding.Version, error) {
	return Split(text, Byte, level)
}

/*
Split returns segments and minimum QR code version for text at the
given error correction level.  byteMode is Byte or Latin1.

Text is split into numeric, alphanumeric and byte mode segments to
minimise the encoded length.  Where modes encode a part of the text
equally well, numeric is preferred to alphanumeric and alphanumeric to
byte.

Empty text yields a single empty byte mode segment in a version 1
code.
*/
func Split(text string, byteMode coding.Mode, level coding.Level) ([]coding.Segment, coding.Version, error) {
	if !level.IsValid() {
		return nil, 0, coding.ErrLevel
	}
	if byteMode != Byte && byteMode != Latin1 {
		return nil, 0, coding.ModeError(byteMode)
	}
	if text == "" {
		return []coding.Segment{{Mode: Byte}}, coding.MinVersion, nil
	}
	s, err := newSplitter(text, byteMode)
	if err != nil {
		return nil, 0, err
	}
	v, err := fit(s.split, level)
	if ce, ok := err.(coding.CapacityError); ok {
		// split caps segment lengths; report the real one
		class := coding.NumClasses - 1
		s.split(class)
		ce.Bits = 0
		for _, seg := range s.segments() {
			ce.Bits += seg.EncodedLength(class)
		}
		return nil, 0, ce
	}
	if err != nil {
		return nil, 0, err
	}
	s.split(v.SizeClass())
	return s.segments(), v, nil
}

// Forced returns text as a single segment in the given mode and the
// minimum QR code version for it.  Text not encodable in mode yields
// an error matching coding.ErrInvalidCharacter.
func Forced(text string, mode coding.Mode, level coding.Level) ([]coding.Segment, coding.Version, error) {
	if !level.IsValid() {
		return nil, 0, coding.ErrLevel
	}
	seg := coding.Segment{Text: text, Mode: mode}
	if err := seg.Validate(); err != nil {
		return nil, 0, err
	}
	v, err := fit(seg.EncodedLength, level)
	if err != nil {
		return nil, 0, err
	}
	return []coding.Segment{seg}, v, nil
}

// fit returns the smallest version holding data whose encoded length
// at a size class is returned by bits.
func fit(bits func(class int) int, level coding.Level) (coding.Version, error) {
	var n int
	for class, cv := range coding.ClassVersions {
		n = bits(class)
		if cv.Max.DataBits(level) < n {
			continue
		}
		// binary search the version in the size class
		v, max := cv.Min, cv.Max
		for v < max {
			if mid := (v + max) / 2; mid.DataBits(level) < n {
				v = mid + 1
			} else {
				max = mid
			}
		}
		return v, nil
	}
	return 0, coding.CapacityError{Bits: n, Level: level}
}

/*
splitter and its component types.

newSplitter determines modes in which each character in the string is
encodable and creates a slice of spans, each span describing a
substring of characters encodable in the same modes.  To avoid
multiple allocations, the span structure contains an array of segments
for the modes.

splitter.split creates a linked list of segments representing an
optimal split of the data.  A segment contains its mode, length in
bytes and characters, total encoded length in bits of the string from
this segment to the end, and a link to the next segment.

The split is calculated by walking the spans backwards.  For each span
n, for each mode m, a segment (n,m) is created representing an optimal
split for the string from span n to the end, starting with mode m.

The segment (n,m) is created thusly.  For each mode mm in which span
n+1 is encodable, a segment (n,m,mm) linking to (n+1,mm) is created.
If m=mm, the segments are merged.  The encoded length is calculated,
and the total encoded length of the next segment is added to it.  Of
these segments, the one with the smallest total encoded length is
chosen as (n,m), merged segments winning ties.

When the beginning of the span slice is reached, a segment (0,m) with
the smallest total encoded length for any m describes an optimal split
for the whole string.  Ties go to the lowest mode.
*/
type (
	// segment describes a segment encoded in a certain mode.
	segment struct {
		mode    coding.Mode // encoding mode, -1 if unused
		segdata             // lengths and pointer to next
	}

	// segdata is the mutable portion of segment.
	segdata struct {
		next *segment // link to next segment in the chain
		len  uint32   // length of string in bytes
		rlen uint32   // length of string in characters
		bits uint32   // encoded size of all segments in the chain
	}

	// span describes a span of bytes encodable in the same modes.
	span struct {
		len  uint32     // length of string in bytes
		rlen uint32     // length of string in characters
		seg  [3]segment // segments, lowest mode first
	}

	// splitter holds the spans of a string and the result of the
	// last split.
	splitter struct {
		s    string   // string
		sp   []span   // spans
		head *segment // optimal split
	}
)

// Mode bits returned by classify.
const (
	numMode   = 1 << iota // numeric
	alphaMode             // alphanumeric
	byteMode              // byte

	by = byteMode       // byte
	al = by | alphaMode // alphanumeric
	nu = al | numMode   // numeric
)

// chartbl holds mode bits for ASCII characters.
var chartbl = [128]byte{
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x00
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x10
	al, by, by, by, al, al, by, by, by, by, al, al, by, al, al, al, // 0x20
	nu, nu, nu, nu, nu, nu, nu, nu, nu, nu, al, by, by, by, by, by, // 0x30
	by, al, al, al, al, al, al, al, al, al, al, al, al, al, al, al, // 0x40
	al, al, al, al, al, al, al, al, al, al, al, by, by, by, by, by, // 0x50
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x60
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x70
}

// classify returns the mode bits of the first character in s and its
// length in bytes.  With latin1 set, a character is a UTF-8 rune up
// to U+00FF; otherwise it is a byte.  0 means not encodable.
func classify(s string, latin1 bool) (byte, int) {
	if c := s[0]; c < utf8.RuneSelf {
		return chartbl[c], 1
	}
	if !latin1 {
		return byteMode, 1
	}
	r, sz := utf8.DecodeRuneInString(s)
	if r > 0xff || r == utf8.RuneError && sz == 1 {
		return 0, sz
	}
	return byteMode, sz
}

// newSplitter splits s into spans.
func newSplitter(s string, byteMode coding.Mode) (*splitter, error) {
	latin1 := byteMode == Latin1
	list := [3]coding.Mode{Numeric, Alphanumeric, byteMode}
	var sp []span
	var old byte
	for i, sz := 0, 0; i < len(s); i += sz {
		var m byte
		if m, sz = classify(s[i:], latin1); m == 0 {
			return nil, coding.SegmentError{Text: s, Mode: byteMode}
		}
		if m != old {
			old = m
			sp = append(sp, span{})
			seg := &sp[len(sp)-1].seg
			j := 0
			for bit := 0; bit < len(list); bit++ {
				if m>>bit&1 != 0 {
					seg[j].mode = list[bit]
					j++
				}
			}
			for ; j < len(seg); j++ {
				seg[j].mode = -1
			}
		}
		v := &sp[len(sp)-1]
		v.len += uint32(sz)
		v.rlen++
	}
	return &splitter{s: s, sp: sp}, nil
}

const inf = 1 << 20 // excessive encoded length

func (d *segdata) setBits(mode coding.Mode, class int) {
	n := d.len
	if mode == Latin1 {
		n = d.rlen
	}
	d.bits = uint32(min(mode.Length(int(n), class), inf))
	if d.next != nil {
		d.bits += d.next.bits
	}
}

// add adds v to the split before next, returning a pointer to the
// segment with the smallest encoded length.
func (v *span) add(next *span, class int) *segment {
	var best *segment
	for j := range v.seg {
		seg := &v.seg[j]
		if seg.mode < 0 {
			break
		}
		if next == nil {
			seg.segdata = segdata{len: v.len, rlen: v.rlen}
			seg.setBits(seg.mode, class)
		} else {
			seg.bits = inf << 1
			for k := range next.seg {
				ns := &next.seg[k]
				if ns.mode < 0 {
					break
				}
				c := segdata{next: ns, len: v.len, rlen: v.rlen}
				var bias uint32
				if ns.mode == seg.mode {
					c.len += ns.len
					c.rlen += ns.rlen
					c.next = ns.next
					bias = 1
				}
				c.setBits(seg.mode, class)
				if c.bits < seg.bits+bias {
					seg.segdata = c
				}
			}
		}
		if best == nil || seg.bits < best.bits {
			best = seg
		}
	}
	return best
}

// split calculates an optimal split for the size class and returns
// its encoded length.
func (s *splitter) split(class int) int {
	var head *segment
	var next *span
	for i := len(s.sp) - 1; i >= 0; i-- {
		head = s.sp[i].add(next, class)
		next = &s.sp[i]
	}
	s.head = head
	return int(head.bits)
}

// segments returns the segments of the last split.
func (s *splitter) segments() []coding.Segment {
	var segs []coding.Segment
	for seg, t := s.head, s.s; seg != nil; seg = seg.next {
		segs = append(segs, coding.Segment{
			Text: t[:seg.len],
			Mode: seg.mode,
		})
		t = t[seg.len:]
	}
	return segs
}
