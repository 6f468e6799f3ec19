// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

/*
PNG Encoder

The encoder writes 1 bit per pixel images: grayscale for black on
white, otherwise a two entry palette with transparency when needed.
Rows are packed straight from the QR bitmap with filter type None and
compressed with zlib, relying on the compressor to find repeated rows.
IDAT chunks are split after 32 KB.
*/

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image/color"
	"io"

	"github.com/klauspost/compress/zlib"
)

// PNG returns a PNG image displaying the code.
// PNG returns nil if the parameters are invalid.
func (c *Code) PNG() []byte {
	var b bytes.Buffer
	if err := c.EncodePNG(&b); err != nil {
		return nil
	}
	return b.Bytes()
}

// EncodePNG writes a PNG image displaying the code to w.
func (c *Code) EncodePNG(w io.Writer) error {
	if w == nil {
		return ErrArgs
	}
	if err := c.isValid(); err != nil {
		return err
	}
	var pw pngWriter
	if err := pw.encode(c); err != nil {
		return err
	}
	_, err := pw.buf.WriteTo(w)
	return err
}

// A pngWriter assembles a PNG file in memory.
type pngWriter struct {
	buf bytes.Buffer
	tmp [16]byte
}

const (
	pngHeader = "\x89PNG\r\n\x1a\n"
	chunkSize = 0x8000 // chunks split after 32 KB
)

func (w *pngWriter) encode(c *Code) error {
	pix := c.Pixels()
	pal, indexed := c.palette()

	w.buf.WriteString(pngHeader)

	// Header block
	binary.BigEndian.PutUint32(w.tmp[0:4], uint32(pix))
	binary.BigEndian.PutUint32(w.tmp[4:8], uint32(pix))
	w.tmp[8] = 1 // 1-bit
	if indexed {
		w.tmp[9] = 3 // palette
	} else {
		w.tmp[9] = 0 // gray
	}
	w.tmp[10] = 0 // deflate
	w.tmp[11] = 0 // adaptive filtering
	w.tmp[12] = 0 // no interlace
	w.writeChunk("IHDR", w.tmp[:13])

	// Palette and transparency
	if indexed {
		w.tmp[0] = pal[0].R
		w.tmp[1] = pal[0].G
		w.tmp[2] = pal[0].B
		w.tmp[3] = pal[1].R
		w.tmp[4] = pal[1].G
		w.tmp[5] = pal[1].B
		w.writeChunk("PLTE", w.tmp[:6])
		w.tmp[0] = pal[0].A
		w.tmp[1] = pal[1].A
		for a := 2; a > 0; a-- {
			if w.tmp[a-1] != 0xff {
				w.writeChunk("tRNS", w.tmp[:a])
				break
			}
		}
	}

	w.writeChunk("tEXt", comment)

	// Data
	data, err := imageData(c, indexed)
	if err != nil {
		return err
	}
	for len(data) > chunkSize {
		w.writeChunk("IDAT", data[:chunkSize])
		data = data[chunkSize:]
	}
	w.writeChunk("IDAT", data)

	// End
	w.writeChunk("IEND", nil)
	return nil
}

var comment = []byte("Software\x00qrpage https://github.com/unixdj/qrpage")

// palette returns the light and dark colours and whether they need a
// palette.  Black on white is written as grayscale.
func (c *Code) palette() ([2]color.NRGBA, bool) {
	light, dark := c.colours()
	var pal [2]color.NRGBA
	for i, v := range [2]color.Color{light, dark} {
		pal[i] = color.NRGBAModel.Convert(v).(color.NRGBA)
	}
	const b, w, o = 0x00, 0xff, 0xff // black, white, opaque
	return pal, pal != [2]color.NRGBA{{w, w, w, o}, {b, b, b, o}}
}

// imageData returns the zlib compressed image rows.  In grayscale
// images 1 is white, in indexed ones 1 is the dark palette entry.
func imageData(c *Code, indexed bool) ([]byte, error) {
	var white byte = 0xff
	if indexed {
		white = 0
	}
	siz, scale, bord := c.Size, c.Scale, c.Border
	length := (c.Pixels() + 7) / 8
	row := make([]byte, 1+length) // filter type, pixels

	var b bytes.Buffer
	zw, err := zlib.NewWriterLevel(&b, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	write := func(n int) {
		for i := 0; i < n && err == nil; i++ {
			_, err = zw.Write(row)
		}
	}

	// Quiet zone above.
	fillRow(row[1:], white)
	write(scale * bord)

	// Code rows; quiet zone columns keep their fill.
	for y := 0; y < siz && err == nil; y++ {
		srow := c.Bitmap[y*c.Stride : (y+1)*c.Stride]
		packRow(row[1:], srow, siz, scale, scale*bord, white)
		write(scale)
	}

	// Quiet zone below.
	fillRow(row[1:], white)
	write(scale * bord)

	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writeChunk writes a chunk.  data may alias w.tmp.
func (w *pngWriter) writeChunk(name string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	w.buf.Write(n[:])
	start := w.buf.Len()
	w.buf.WriteString(name)
	w.buf.Write(data)
	crc := crc32.ChecksumIEEE(w.buf.Bytes()[start:])
	binary.BigEndian.PutUint32(n[:], crc)
	w.buf.Write(n[:])
}
