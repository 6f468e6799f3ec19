// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A Code is a square pixel grid.
type Code struct {
	Bitmap []byte // 1 is black, 0 is white
	Size   int    // number of pixels on a side
	Stride int    // number of bytes per row

	Version Version // QR version
	Level   Level   // error correction level
	Mask    int     // mask pattern applied
}

// Black returns true if the pixel at (x, y) is black.
// Out of bounds pixels are white.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		getBit(c.Bitmap, c.Stride, x, y)
}

// Penalty scores c for undesirable features: runs of five or more
// modules of the same colour, 2x2 blocks of the same colour,
// finder-like patterns and imbalance of dark and light modules.
// Lower is better.
func (c *Code) Penalty() int {
	const (
		n1 = 3
		n2 = 3
		n3 = 40
		n4 = 10
	)
	siz := c.Size
	score := 0

	// Runs and finder-like patterns in rows, then columns.
	for _, vertical := range [2]bool{false, true} {
		for i := 0; i < siz; i++ {
			at := func(j int) bool {
				if vertical {
					return c.Black(i, j)
				}
				return c.Black(j, i)
			}
			var h runHistory
			h.size = siz
			colour, run := false, 0
			for j := 0; j < siz; j++ {
				if at(j) == colour {
					run++
					if run == 5 {
						score += n1
					} else if run > 5 {
						score++
					}
					continue
				}
				h.add(run)
				if !colour {
					score += h.countPatterns() * n3
				}
				colour, run = at(j), 1
			}
			score += h.terminateAndCount(colour, run) * n3
		}
	}

	// 2x2 blocks.
	for y := 0; y < siz-1; y++ {
		for x := 0; x < siz-1; x++ {
			b := c.Black(x, y)
			if b == c.Black(x+1, y) && b == c.Black(x, y+1) &&
				b == c.Black(x+1, y+1) {
				score += n2
			}
		}
	}

	// Balance of dark and light modules.
	dark := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if c.Black(x, y) {
				dark++
			}
		}
	}
	score += balance(dark, siz*siz) * n4
	return score
}

// balance returns the number of whole 5% steps by which the share of
// dark modules lies outside 45% to 55%.
func balance(dark, total int) int {
	return (abs(dark*20-total*10)+total-1)/total - 1
}

// runHistory holds the lengths of the last seven runs in a row or
// column, most recent first.  The light border outside the symbol
// counts as a light run of size modules.
type runHistory struct {
	runs [7]int
	size int
}

func (h *runHistory) add(run int) {
	if h.runs[0] == 0 {
		run += h.size // light border before the first module
	}
	copy(h.runs[1:], h.runs[:6])
	h.runs[0] = run
}

// countPatterns returns 0, 1 or 2: the number of 1:1:3:1:1 patterns
// with a light run of four at either side, ending at the most recent
// light run.  It is called after a light run is added.
func (h *runHistory) countPatterns() int {
	r := &h.runs
	n := r[1]
	core := n > 0 && r[2] == n && r[3] == n*3 && r[4] == n && r[5] == n
	cnt := 0
	if core && r[0] >= n*4 && r[6] >= n {
		cnt++
	}
	if core && r[6] >= n*4 && r[0] >= n {
		cnt++
	}
	return cnt
}

// terminateAndCount closes the final run, adds the light border after
// it and counts patterns.
func (h *runHistory) terminateAndCount(colour bool, run int) int {
	if colour { // dark run ends; border follows
		h.add(run)
		run = 0
	}
	run += h.size
	h.add(run)
	return h.countPatterns()
}
