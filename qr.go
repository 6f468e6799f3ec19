// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qrpage encodes text as QR codes and renders them as images.

Encode splits text into segments, chooses the smallest QR version
holding them at the requested error correction level, adds
Reed-Solomon error correction and lays the symbol out with the mask
scoring the lowest penalty.  The resulting Code writes itself as PNG,
PBM, BMP, TIFF or text, or converts to an image.Paletted.

Generate runs the whole pipeline for a front end implementing Shell.
*/
package qrpage // import "github.com/unixdj/qrpage"

import (
	"image/color"
	"strconv"

	"github.com/unixdj/qrpage/coding"
	"github.com/unixdj/qrpage/split"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level = coding.Level

const (
	L Level = coding.L // 20% redundant
	M Level = coding.M // 38% redundant
	Q Level = coding.Q // 55% redundant
	H Level = coding.H // 65% redundant
)

// ParseLevel returns the Level named by s, one of "L", "M", "Q" or
// "H" in either case.
func ParseLevel(s string) (Level, bool) { return coding.ParseLevel(s) }

// Error kinds.  Errors returned by this package match one of these
// with errors.Is.
var (
	// ErrCapacityExceeded reports text too long for any QR version
	// at the requested level.
	ErrCapacityExceeded = coding.ErrCapacityExceeded

	// ErrInvalidCharacter reports text not encodable in a forced
	// mode.
	ErrInvalidCharacter = coding.ErrInvalidCharacter

	// ErrInvalidParameter reports an invalid scale, border or level.
	ErrInvalidParameter = coding.ErrInvalidParameter
)

var (
	ErrScale  error = coding.ParamError("scale")
	ErrBorder error = coding.ParamError("border")
)

// A Mode selects how Request text is split into segments.
type Mode int

const (
	Auto         Mode = iota // optimal mix of numeric, alphanumeric and byte
	Numeric                  // numeric mode only
	Alphanumeric             // alphanumeric mode only
	Byte                     // byte mode only
	AutoLatin1               // Auto, byte segments as ISO 8859-1
	Latin1                   // byte mode only, as ISO 8859-1
)

var modeNames = [...]string{
	"auto", "numeric", "alphanumeric", "byte", "auto-latin1", "latin1",
}

func (m Mode) String() string {
	if 0 <= m && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Default rendering parameters.
const (
	DefaultScale  = 10 // image pixels per module
	DefaultBorder = 4  // quiet zone modules
)

// A Request describes a code to generate.
type Request struct {
	Text   string // text to encode
	Level  Level  // error correction level
	Mode   Mode   // segmentation mode
	Scale  int    // image pixels per module, at least 1
	Border int    // quiet zone modules, at least 0
}

// NewRequest returns a Request for text with default parameters:
// level L, automatic segmentation, scale 10 and border 4.
func NewRequest(text string) Request {
	return Request{
		Text:   text,
		Level:  L,
		Scale:  DefaultScale,
		Border: DefaultBorder,
	}
}

// Validate checks the request parameters.
func (r Request) Validate() error {
	switch {
	case !r.Level.IsValid():
		return coding.ErrLevel
	case r.Scale < 1:
		return ErrScale
	case r.Border < 0:
		return ErrBorder
	}
	return nil
}

// Segments returns the segments and QR version for the request's
// text and level.
func (r Request) Segments() ([]coding.Segment, coding.Version, error) {
	switch r.Mode {
	case Auto:
		return split.Split(r.Text, coding.Byte, r.Level)
	case AutoLatin1:
		return split.Split(r.Text, coding.Latin1, r.Level)
	case Numeric:
		return split.Forced(r.Text, coding.Numeric, r.Level)
	case Alphanumeric:
		return split.Forced(r.Text, coding.Alphanumeric, r.Level)
	case Byte:
		return split.Forced(r.Text, coding.Byte, r.Level)
	case Latin1:
		return split.Forced(r.Text, coding.Latin1, r.Level)
	}
	return nil, 0, coding.ModeError(-1)
}

// Encode returns an encoding of text at the given error correction
// level, with default scale and border.
func Encode(text string, level Level) (*Code, error) {
	r := NewRequest(text)
	r.Level = level
	return EncodeRequest(r)
}

// EncodeRequest returns the Code described by r.  No Code is returned
// on error.
func EncodeRequest(r Request) (*Code, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	segs, v, err := r.Segments()
	if err != nil {
		return nil, err
	}
	cc, err := coding.Encode(v, r.Level, segs...)
	if err != nil {
		return nil, err
	}
	return &Code{
		Bitmap:   cc.Bitmap,
		Size:     cc.Size,
		Stride:   cc.Stride,
		Scale:    r.Scale,
		Border:   r.Border,
		Version:  cc.Version,
		Level:    cc.Level,
		Mask:     cc.Mask,
		Segments: segs,
	}, nil
}

// A Code is a square pixel grid.
// It implements direct PNG, PBM and text encoding.
type Code struct {
	Bitmap []byte // 1 is black, 0 is white
	Size   int    // number of pixels on a side
	Stride int    // number of bytes per row
	Scale  int    // number of image pixels per QR pixel
	Border int    // quiet zone width in QR pixels

	// Palette sets the light and dark colours, in that order.
	// If nil, white and black.
	Palette *[2]color.Color

	// Reverse swaps the light and dark colours.
	Reverse bool

	Version  coding.Version   // QR version
	Level    Level            // error correction level
	Mask     int              // mask pattern
	Segments []coding.Segment // encoded segments
}

// Black returns true if the pixel at (x,y) is black.
// Pixels outside the code, such as the quiet zone, are white.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x/8]&(1<<uint(7-x&7)) != 0
}

// Pixels returns the width and height of the image in pixels.
func (c *Code) Pixels() int { return (c.Size + 2*c.Border) * c.Scale }

// isValid checks rendering parameters.
func (c *Code) isValid() error {
	switch {
	case c == nil || c.Size < 1 || c.Stride < (c.Size+7)/8 ||
		len(c.Bitmap) < c.Stride*c.Size:
		return ErrArgs
	case c.Scale < 1:
		return ErrScale
	case c.Border < 0:
		return ErrBorder
	case c.Scale > maxPixels || c.Border > maxPixels || c.Pixels() > maxPixels:
		return ErrLargeImage
	}
	return nil
}

// colours returns the light and dark colours, honouring Palette and
// Reverse.
func (c *Code) colours() (light, dark color.Color) {
	light, dark = color.White, color.Black
	if c.Palette != nil {
		light, dark = c.Palette[0], c.Palette[1]
	}
	if c.Reverse {
		light, dark = dark, light
	}
	return light, dark
}
