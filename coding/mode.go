// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Error kinds.  Errors returned by this package and its users match
// one of these with errors.Is.
var (
	ErrCapacityExceeded = errors.New("qr: data too long to encode")
	ErrInvalidCharacter = errors.New("qr: invalid character for encoding mode")
	ErrInvalidParameter = errors.New("qr: invalid parameter")
)

var (
	ErrLevel   error = ParamError("level")
	ErrVersion error = ParamError("version")
	ErrMask    error = ParamError("mask")
)

// ParamError names an invalid parameter.  It matches
// ErrInvalidParameter.
type ParamError string

func (e ParamError) Error() string { return "qr: invalid " + string(e) }

func (e ParamError) Is(target error) bool { return target == ErrInvalidParameter }

// Predefined encoding modes.
const (
	Numeric      Mode = iota // numeric mode, ASCII-compatible text
	Alphanumeric             // alphanumeric mode, ASCII-compatible text
	Byte                     // byte mode, any data
	Latin1                   // byte mode, UTF-8 text encoded as ISO 8859-1
	NumModes
)

// A Mode is a QR segment encoder.
type Mode int

// ModeEncoder implements a QR segment encoding.
type ModeEncoder struct {
	Name      string // Name for error reporting
	Indicator byte   // 4 bit mode indicator

	// CountLength lists lengths of the character count field in the
	// three QR version size classes.
	CountLength [NumClasses]byte

	// EncodedLength returns the encoded data length in bits of a
	// valid string of n characters.  If nil, 8 bits per character.
	EncodedLength func(n int) int

	// Accepts reports whether the encoding mode accepts the byte.
	// If nil, any byte is accepted.
	Accepts func(byte) bool

	// Transform returns a segment of another Mode with the string
	// transformed for encoding and a boolean indicating whether the
	// transform was successful.  The target Mode must have Transform
	// unset.  If nil, the original segment is used.
	Transform func(string) (Segment, bool)

	// Encode3, Encode2 and Encode1 return the encoding of the bytes
	// and its length in bits.  The encoder calls a non-nil Encode{N}
	// repeatedly as long as N source bytes are available, in
	// descending order of N.  If all are nil, each byte is encoded as
	// 8 bits.
	Encode3 func([3]byte) (uint32, int)
	Encode2 func([2]byte) (uint32, int)
	Encode1 func(byte) (uint32, int)
}

// AlphanumericChars is the alphanumeric mode character set in code
// order.
const AlphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

const alphamask uint64 = 0x07fffffe_07ffec31 // SPACE $% *+ -./ [0-9] : [A-Z]

// IsDigit reports whether c is encodable in numeric mode.
func IsDigit(c byte) bool { return c-'0' < 10 }

// IsAlphanumeric reports whether c is encodable in alphanumeric mode.
func IsAlphanumeric(c byte) bool {
	return c >= ' ' && c < ' '+64 && alphamask>>(c-' ')&1 != 0
}

func alphaValue(c byte) uint32 {
	return uint32(strings.IndexByte(AlphanumericChars, c))
}

var modes = [NumModes]ModeEncoder{
	Numeric: {
		Name:          "numeric",
		Indicator:     1,
		CountLength:   [NumClasses]byte{10, 12, 14},
		EncodedLength: func(n int) int { return (10*n + 2) / 3 },
		Accepts:       IsDigit,
		Encode1: func(b byte) (uint32, int) {
			return uint32(b - '0'), 4
		},
		Encode2: func(b [2]byte) (uint32, int) {
			return uint32(b[0]-'0')*10 + uint32(b[1]-'0'), 7
		},
		Encode3: func(b [3]byte) (uint32, int) {
			return uint32(b[0]-'0')*100 + uint32(b[1]-'0')*10 +
				uint32(b[2]-'0'), 10
		},
	},
	Alphanumeric: {
		Name:          "alphanumeric",
		Indicator:     2,
		CountLength:   [NumClasses]byte{9, 11, 13},
		EncodedLength: func(n int) int { return (11*n + 1) / 2 },
		Accepts:       IsAlphanumeric,
		Encode1: func(b byte) (uint32, int) {
			return alphaValue(b), 6
		},
		Encode2: func(b [2]byte) (uint32, int) {
			return alphaValue(b[0])*45 + alphaValue(b[1]), 11
		},
	},
	Byte: {
		Name:        "byte",
		Indicator:   4,
		CountLength: [NumClasses]byte{8, 16, 16},
	},
	Latin1: {
		Name:        "latin-1",
		Indicator:   4,
		CountLength: [NumClasses]byte{8, 16, 16},
		Transform: func(s string) (Segment, bool) {
			t, err := charmap.ISO8859_1.NewEncoder().String(s)
			return Segment{t, Byte}, err == nil
		},
	},
}

func getMode(mode Mode) *ModeEncoder {
	if 0 <= mode && mode < NumModes {
		return &modes[mode]
	}
	return nil
}

func (mode Mode) String() string {
	if m := getMode(mode); m != nil {
		return m.Name
	}
	return strconv.Itoa(int(mode))
}

// ParseMode returns the Mode with the given name.
func ParseMode(s string) (Mode, bool) {
	for i := range modes {
		if modes[i].Name == s {
			return Mode(i), true
		}
	}
	return 0, false
}

// length returns the length in bits of a valid string of n characters
// encoded in mode at the given QR version size class, including the
// header.
func (m *ModeEncoder) length(n, class int) int {
	bits := 4 + int(m.CountLength[class])
	if f := m.EncodedLength; f != nil {
		bits += f(n)
	} else {
		bits += n * 8
	}
	return bits
}

// Length returns the length in bits of a valid string of n characters
// encoded in mode at the given QR version size class, including the
// header.  Length returns 0 if and only if mode or class is invalid.
func (mode Mode) Length(n, class int) int {
	m := getMode(mode)
	if m == nil || class < 0 || class >= NumClasses {
		return 0
	}
	return m.length(n, class)
}

// Is reports whether c is encodable in mode.
func Is(c byte, mode Mode) bool {
	m := getMode(mode)
	return m != nil && (m.Accepts == nil || m.Accepts(c))
}

// A Segment describes a QR code segment.
type Segment struct {
	Text string // data to encode
	Mode Mode   // encoding mode
}

// SegmentError represents a segment with text not encodable in its
// mode.  It matches ErrInvalidCharacter.
type SegmentError Segment

func (e SegmentError) Error() string {
	if m := getMode(e.Mode); m != nil {
		return fmt.Sprintf("qr: non-%s string %#q", m.Name, e.Text)
	}
	return fmt.Sprintf("qr: invalid mode %d", e.Mode)
}

func (e SegmentError) Is(target error) bool { return target == ErrInvalidCharacter }

// ModeError represents an invalid Mode number.  It matches
// ErrInvalidCharacter, as no text is encodable in it.
type ModeError Mode

func (e ModeError) Error() string {
	return fmt.Sprintf("qr: invalid mode %s", Mode(e))
}

func (e ModeError) Is(target error) bool { return target == ErrInvalidCharacter }

// CapacityError reports data that does not fit.  It matches
// ErrCapacityExceeded.
type CapacityError struct {
	Bits int // encoded length in bits
	Max  int // capacity in bits; 0 if no version fits
	Level
}

func (e CapacityError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("qr: %d bits too long to encode at level %s",
			e.Bits, e.Level)
	}
	return fmt.Sprintf("qr: cannot encode %d bits into %d-bit code",
		e.Bits, e.Max)
}

func (e CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// isValid reports whether seg is encodable.
func (m *ModeEncoder) isValid(s string) bool {
	if is := m.Accepts; is != nil {
		for i := 0; i < len(s); i++ {
			if !is(s[i]) {
				return false
			}
		}
	}
	return true
}

// IsValid reports whether seg is encodable.
func (seg Segment) IsValid() bool { return seg.Validate() == nil }

// Validate returns an error matching ErrInvalidCharacter if seg is not
// encodable.
func (seg Segment) Validate() error {
	_, _, err := seg.transform()
	return err
}

// Len returns the character count of seg after transformation, or -1
// if seg is not encodable.
func (seg Segment) Len() int {
	ts, _, err := seg.transform()
	if err != nil {
		return -1
	}
	return len(ts.Text)
}

// EncodedLength returns the encoded length in bits of seg in the
// given QR version size class, or 0 if seg is not encodable.
func (seg Segment) EncodedLength(class int) int {
	ts, m, err := seg.transform()
	if err != nil || class < 0 || class >= NumClasses {
		return 0
	}
	return m.length(len(ts.Text), class)
}

// transform validates seg and transforms it for encoding.
func (seg Segment) transform() (Segment, *ModeEncoder, error) {
	m := getMode(seg.Mode)
	if m == nil {
		return Segment{}, nil, ModeError(seg.Mode)
	}
	if m.Transform != nil {
		if !utf8.ValidString(seg.Text) {
			return Segment{}, nil, SegmentError(seg)
		}
		ts, ok := m.Transform(seg.Text)
		if !ok {
			return Segment{}, nil, SegmentError(seg)
		}
		if m = getMode(ts.Mode); m == nil || m.Transform != nil {
			return Segment{}, nil, ModeError(seg.Mode)
		}
		seg = ts
	}
	if !m.isValid(seg.Text) {
		return Segment{}, nil, SegmentError(seg)
	}
	return seg, m, nil
}

// Encode writes seg encoded for the given QR version size class to b.
func (seg Segment) Encode(b *Bits, class int) error {
	if class < 0 || class >= NumClasses {
		return ErrVersion
	}
	ts, m, err := seg.transform()
	if err != nil {
		return err
	}
	s := ts.Text
	clen := int(m.CountLength[class])
	if len(s) >= 1<<clen {
		return CapacityError{Bits: m.length(len(s), class)}
	}
	// header
	b.Write(uint32(m.Indicator), 4)
	b.Write(uint32(len(s)), clen)
	// data
	enc3, enc2, enc1 := m.Encode3, m.Encode2, m.Encode1
	if enc3 == nil && enc2 == nil && enc1 == nil {
		b.WriteBytes(s)
		return nil
	}
	if enc3 != nil {
		for ; len(s) >= 3; s = s[3:] {
			b.Write(enc3([3]byte{s[0], s[1], s[2]}))
		}
	}
	if enc2 != nil {
		for ; len(s) >= 2; s = s[2:] {
			b.Write(enc2([2]byte{s[0], s[1]}))
		}
	}
	if enc1 != nil {
		for ; len(s) >= 1; s = s[1:] {
			b.Write(enc1(s[0]))
		}
	}
	if s != "" {
		panic("qr: " + m.Name + " mode internal error")
	}
	return nil
}
