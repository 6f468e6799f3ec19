// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// EncodeStdPNG writes a PNG image displaying the code to w using the
// standard library encoder.
func (c *Code) EncodeStdPNG(w io.Writer) error {
	img, err := c.Image()
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// EncodeBMP writes a BMP image displaying the code to w.
func (c *Code) EncodeBMP(w io.Writer) error {
	img, err := c.Image()
	if err != nil {
		return err
	}
	return bmp.Encode(w, img)
}

// EncodeTIFF writes a Deflate compressed TIFF image displaying the
// code to w.
func (c *Code) EncodeTIFF(w io.Writer) error {
	img, err := c.Image()
	if err != nil {
		return err
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}
