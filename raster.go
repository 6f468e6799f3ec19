// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrArgs       = errors.New("qr: invalid arguments")
	ErrLargeImage = errors.New("qr: image too large")
)

// maxPixels limits the image side to what fits PNG and TIFF headers
// and reasonable memory.
const maxPixels = 32767 * 8

// Rasterize returns an image of the code with each module drawn as a
// moduleSize square and a light quiet zone of border modules on every
// side.  The image is (c.Size+2*border)*moduleSize pixels on a side,
// palette index 0 light and 1 dark.  c.Scale, c.Border, c.Palette and
// c.Reverse are ignored.
func Rasterize(c *Code, moduleSize, border int, dark, light color.Color) (*image.Paletted, error) {
	if c == nil {
		return nil, ErrArgs
	}
	cc := *c
	cc.Scale, cc.Border = moduleSize, border
	if err := cc.isValid(); err != nil {
		return nil, err
	}
	pix := cc.Pixels()
	img := image.NewPaletted(image.Rect(0, 0, pix, pix),
		color.Palette{light, dark})
	off := border * moduleSize
	for y := 0; y < c.Size; y++ {
		row := img.Pix[(off+y*moduleSize)*img.Stride:]
		row = row[:img.Stride]
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) {
				p := row[off+x*moduleSize:]
				for i := 0; i < moduleSize; i++ {
					p[i] = 1
				}
			}
		}
		// copy the first pixel row of the module row down
		for i := 1; i < moduleSize; i++ {
			copy(img.Pix[(off+y*moduleSize+i)*img.Stride:], row)
		}
	}
	return img, nil
}

// Image returns an image displaying the code at its scale and border,
// in its palette.
func (c *Code) Image() (*image.Paletted, error) {
	light, dark := c.colours()
	return Rasterize(c, c.Scale, c.Border, dark, light)
}

// packRow packs a row of QR pixels from the bitmap row srow into the
// 1 bit per pixel image row dst, MSB first, each QR pixel scale bits
// wide, starting at bit offset lead.  Bits set in white are inverted;
// pass 0xff to get 1 for light pixels.  Bits of dst outside the QR
// pixels are left alone.
func packRow(dst, srow []byte, siz, scale, lead int, white byte) {
	pos := lead
	for x := 0; x < siz; x++ {
		v := srow[x>>3]>>(7&^x)&1 != 0
		if white != 0 {
			v = !v
		}
		end := pos + scale
		// leading partial byte
		for ; pos < end && pos&7 != 0; pos++ {
			setPixel(dst, pos, v)
		}
		// whole bytes
		var fill byte
		if v {
			fill = 0xff
		}
		for ; pos+8 <= end; pos += 8 {
			dst[pos>>3] = fill
		}
		// trailing partial byte
		for ; pos < end; pos++ {
			setPixel(dst, pos, v)
		}
	}
}

func setPixel(row []byte, pos int, v bool) {
	b := byte(0x80) >> (pos & 7)
	if v {
		row[pos>>3] |= b
	} else {
		row[pos>>3] &^= b
	}
}

// fillRow sets every byte of row to b.
func fillRow(row []byte, b byte) {
	for i := range row {
		row[i] = b
	}
}
