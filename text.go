// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"io"
	"strings"
)

// halfBlocks maps two vertically adjacent pixels (top<<1 | bottom,
// 1 is ink) to a character.
var halfBlocks = [4]string{" ", "▄", "▀", "█"}

// String returns the code drawn with Unicode block elements, two QR
// pixels per character, including the quiet zone.  Black pixels are
// drawn as ink unless c.Reverse is set.  Scale is ignored.
func (c *Code) String() string {
	if c == nil || c.Size < 1 || c.Border > maxPixels {
		return ""
	}
	bord := max(c.Border, 0)
	pix := c.Size + 2*bord
	var b strings.Builder
	b.Grow((pix*len(halfBlocks[3]) + 1) * (pix + 1) / 2)
	for y := -bord; y < c.Size+bord; y += 2 {
		for x := -bord; x < c.Size+bord; x++ {
			top, bot := c.ink(x, y), c.ink(x, y+1)
			if y+1 >= c.Size+bord {
				bot = false
			}
			i := 0
			if top {
				i |= 2
			}
			if bot {
				i |= 1
			}
			b.WriteString(halfBlocks[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ink reports whether the pixel at (x,y) is drawn.
func (c *Code) ink(x, y int) bool { return c.Black(x, y) != c.Reverse }

// EncodeText writes c.String() to w.
func (c *Code) EncodeText(w io.Writer) error {
	_, err := io.WriteString(w, c.String())
	return err
}

// EncodeASCII writes the code to w as ASCII art, each QR pixel two
// characters wide, '#' for ink.  Scale is ignored.
func (c *Code) EncodeASCII(w io.Writer) error {
	if c == nil || c.Size < 1 {
		return ErrArgs
	}
	if c.Border > maxPixels {
		return ErrLargeImage
	}
	bord := max(c.Border, 0)
	pix := c.Size + 2*bord
	b := make([]byte, (pix*2+1)*pix)
	i := 0
	for y := -bord; y < c.Size+bord; y++ {
		for x := -bord; x < c.Size+bord; x++ {
			var p byte = ' '
			if c.ink(x, y) {
				p = '#'
			}
			b[i], b[i+1] = p, p
			i += 2
		}
		b[i] = '\n'
		i++
	}
	_, err := w.Write(b)
	return err
}
