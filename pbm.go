// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"bufio"
	"io"
	"strconv"
)

// EncodePBM writes a Portable Bit Map image displaying the code to w,
// for use with netpbm.  EncodePBM disregards c.Palette, as other PNM
// formats are not supported.
func (c *Code) EncodePBM(w io.Writer) error {
	if err := c.isValid(); err != nil {
		return err
	}
	b := bufio.NewWriter(w)
	siz, scale, bord := c.Size, c.Scale, c.Border
	length := c.Pixels()
	ls := strconv.Itoa(length)
	if _, err := b.WriteString("P4\n" + ls + " " + ls + "\n"); err != nil {
		return err
	}
	// PBM: 1 is black
	var white byte
	if c.Reverse {
		white = 0xff
	}
	row := make([]byte, (length+7)/8)
	fillRow(row, white)
	write := func(n int) error {
		for i := 0; i < n; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(scale * bord); err != nil {
		return err
	}
	for y := 0; y < siz; y++ {
		packRow(row, c.Bitmap[y*c.Stride:(y+1)*c.Stride], siz, scale,
			scale*bord, white)
		if err := write(scale); err != nil {
			return err
		}
	}
	fillRow(row, white)
	if err := write(scale * bord); err != nil {
		return err
	}
	return b.Flush()
}
