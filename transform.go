// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Transformations accepted by Transform.
const (
	Flip   = 'f' // flip horizontally
	Rotate = 'r' // rotate 90° counterclockwise
)

// Transform returns a copy of c with the QR pixels flipped and rotated
// by each of ops in turn, Flip or Rotate.  To flip vertically, use
// "frr".  c is not modified.
func (c *Code) Transform(ops string) (*Code, error) {
	if err := c.isValid(); err != nil {
		return nil, err
	}
	cc := *c
	if ops == "" {
		return &cc, nil
	}
	var img image.Image = c.gray()
	for _, op := range ops {
		switch op {
		case Flip:
			img = imaging.FlipH(img)
		case Rotate:
			img = imaging.Rotate90(img)
		default:
			return nil, fmt.Errorf("qr: invalid transformation %q", op)
		}
	}
	cc.Bitmap = bitmapFrom(img, c.Size, c.Stride)
	return &cc, nil
}

// gray returns an image of the QR pixels, one image pixel each.
func (c *Code) gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, c.Size, c.Size))
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			if !c.Black(x, y) {
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
	}
	return img
}

// bitmapFrom packs a siz by siz image into a bitmap, dark pixels
// black.
func bitmapFrom(img image.Image, siz, stride int) []byte {
	b := make([]byte, stride*siz)
	min := img.Bounds().Min
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			g := color.GrayModel.Convert(img.At(min.X+x, min.Y+y)).(color.Gray)
			if g.Y < 0x80 {
				b[y*stride+x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return b
}
