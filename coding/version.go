// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "strconv"

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side.
// Versions run from 1 to 40: the larger the version,
// the more information the code can store.
type Version int

// Version bounds.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// IsValid reports whether v is a QR version.
func (v Version) IsValid() bool { return MinVersion <= v && v <= MaxVersion }

// Size returns the number of modules on a side of a code of version v.
func (v Version) Size() int { return int(v)*4 + 17 }

// QR version size classes.  The length of character count fields
// depends on the class.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
	NumClasses
)

// ClassVersions lists the smallest and largest versions of each size
// class.
var ClassVersions = [NumClasses]struct{ Min, Max Version }{
	{1, 9}, {10, 26}, {27, 40},
}

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if L <= l && l <= H {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is a QR error correction level.
func (l Level) IsValid() bool { return L <= l && l <= H }

// ParseLevel returns the Level named by s, one of "L", "M", "Q" or
// "H" in either case.
func ParseLevel(s string) (Level, bool) {
	if len(s) == 1 {
		for l := L; l <= H; l++ {
			if c := s[0] | 0x20; c == "lmqh"[l] {
				return l, true
			}
		}
	}
	return 0, false
}

// formatBits returns the 2 bit format field value for l.
func (l Level) formatBits() uint16 { return uint16(l ^ 1) } // L=01, M=00, Q=11, H=10

// A version describes metadata associated with a version.
type version struct {
	words int      // total codewords
	align []int    // alignment pattern centre coordinates
	pat   uint32   // version information bits, 0 below version 7
	level [4]level // block structure for each level
}

// A level describes the error correction blocks of a version and level.
type level struct {
	nblock int // number of blocks
	check  int // check bytes per block
}

// vtab is built from the tables below by init.
var vtab [MaxVersion + 1]version

// Tables from qrencode-3.1.1/qrspec.c.

// capacity lists total codewords and total check codewords for
// levels L, M, Q, H.
var capacity = [MaxVersion + 1]struct {
	words int
	ec    [4]int
}{
	{},
	{26, [4]int{7, 10, 13, 17}}, // 1
	{44, [4]int{10, 16, 22, 28}},
	{70, [4]int{15, 26, 36, 44}},
	{100, [4]int{20, 36, 52, 64}},
	{134, [4]int{26, 48, 72, 88}}, // 5
	{172, [4]int{36, 64, 96, 112}},
	{196, [4]int{40, 72, 108, 130}},
	{242, [4]int{48, 88, 132, 156}},
	{292, [4]int{60, 110, 160, 192}},
	{346, [4]int{72, 130, 192, 224}}, // 10
	{404, [4]int{80, 150, 224, 264}},
	{466, [4]int{96, 176, 260, 308}},
	{532, [4]int{104, 198, 288, 352}},
	{581, [4]int{120, 216, 320, 384}},
	{655, [4]int{132, 240, 360, 432}}, // 15
	{733, [4]int{144, 280, 408, 480}},
	{815, [4]int{168, 308, 448, 532}},
	{901, [4]int{180, 338, 504, 588}},
	{991, [4]int{196, 364, 546, 650}},
	{1085, [4]int{224, 416, 600, 700}}, // 20
	{1156, [4]int{224, 442, 644, 750}},
	{1258, [4]int{252, 476, 690, 816}},
	{1364, [4]int{270, 504, 750, 900}},
	{1474, [4]int{300, 560, 810, 960}},
	{1588, [4]int{312, 588, 870, 1050}}, // 25
	{1706, [4]int{336, 644, 952, 1110}},
	{1828, [4]int{360, 700, 1020, 1200}},
	{1921, [4]int{390, 728, 1050, 1260}},
	{2051, [4]int{420, 784, 1140, 1350}},
	{2185, [4]int{450, 812, 1200, 1440}}, // 30
	{2323, [4]int{480, 868, 1290, 1530}},
	{2465, [4]int{510, 924, 1350, 1620}},
	{2611, [4]int{540, 980, 1440, 1710}},
	{2761, [4]int{570, 1036, 1530, 1800}},
	{2876, [4]int{570, 1064, 1590, 1890}}, // 35
	{3034, [4]int{600, 1120, 1680, 1980}},
	{3196, [4]int{630, 1204, 1770, 2100}},
	{3362, [4]int{660, 1260, 1860, 2220}},
	{3532, [4]int{720, 1316, 1950, 2310}},
	{3706, [4]int{750, 1372, 2040, 2430}}, // 40
}

// blocks lists the number of short and long blocks for levels
// L, M, Q, H.
var blocks = [MaxVersion + 1][4][2]int{
	{},
	{{1, 0}, {1, 0}, {1, 0}, {1, 0}}, // 1
	{{1, 0}, {1, 0}, {1, 0}, {1, 0}},
	{{1, 0}, {1, 0}, {2, 0}, {2, 0}},
	{{1, 0}, {2, 0}, {2, 0}, {4, 0}},
	{{1, 0}, {2, 0}, {2, 2}, {2, 2}}, // 5
	{{2, 0}, {4, 0}, {4, 0}, {4, 0}},
	{{2, 0}, {4, 0}, {2, 4}, {4, 1}},
	{{2, 0}, {2, 2}, {4, 2}, {4, 2}},
	{{2, 0}, {3, 2}, {4, 4}, {4, 4}},
	{{2, 2}, {4, 1}, {6, 2}, {6, 2}}, // 10
	{{4, 0}, {1, 4}, {4, 4}, {3, 8}},
	{{2, 2}, {6, 2}, {4, 6}, {7, 4}},
	{{4, 0}, {8, 1}, {8, 4}, {12, 4}},
	{{3, 1}, {4, 5}, {11, 5}, {11, 5}},
	{{5, 1}, {5, 5}, {5, 7}, {11, 7}}, // 15
	{{5, 1}, {7, 3}, {15, 2}, {3, 13}},
	{{1, 5}, {10, 1}, {1, 15}, {2, 17}},
	{{5, 1}, {9, 4}, {17, 1}, {2, 19}},
	{{3, 4}, {3, 11}, {17, 4}, {9, 16}},
	{{3, 5}, {3, 13}, {15, 5}, {15, 10}}, // 20
	{{4, 4}, {17, 0}, {17, 6}, {19, 6}},
	{{2, 7}, {17, 0}, {7, 16}, {34, 0}},
	{{4, 5}, {4, 14}, {11, 14}, {16, 14}},
	{{6, 4}, {6, 14}, {11, 16}, {30, 2}},
	{{8, 4}, {8, 13}, {7, 22}, {22, 13}}, // 25
	{{10, 2}, {19, 4}, {28, 6}, {33, 4}},
	{{8, 4}, {22, 3}, {8, 26}, {12, 28}},
	{{3, 10}, {3, 23}, {4, 31}, {11, 31}},
	{{7, 7}, {21, 7}, {1, 37}, {19, 26}},
	{{5, 10}, {19, 10}, {15, 25}, {23, 25}}, // 30
	{{13, 3}, {2, 29}, {42, 1}, {23, 28}},
	{{17, 0}, {10, 23}, {10, 35}, {19, 35}},
	{{17, 1}, {14, 21}, {29, 19}, {11, 46}},
	{{13, 6}, {14, 23}, {44, 7}, {59, 1}},
	{{12, 7}, {12, 26}, {39, 14}, {22, 41}}, // 35
	{{6, 14}, {6, 34}, {46, 10}, {2, 64}},
	{{17, 4}, {29, 14}, {49, 10}, {24, 46}},
	{{4, 18}, {13, 32}, {48, 14}, {42, 32}},
	{{20, 4}, {40, 7}, {43, 22}, {10, 67}},
	{{19, 6}, {18, 31}, {34, 34}, {20, 61}}, // 40
}

// alignStart lists the second and third alignment pattern
// coordinates; the first is always 6, the rest follow at the same
// distance up to the last one at 4v+10.
var alignStart = [MaxVersion + 1][2]int{
	{0, 0},
	{0, 0}, {18, 0}, {22, 0}, {26, 0}, {30, 0}, // 1-5
	{34, 0}, {22, 38}, {24, 42}, {26, 46}, {28, 50}, // 6-10
	{30, 54}, {32, 58}, {34, 62}, {26, 46}, {26, 48}, // 11-15
	{26, 50}, {30, 54}, {30, 56}, {30, 58}, {34, 62}, // 16-20
	{28, 50}, {26, 50}, {30, 54}, {28, 54}, {32, 58}, // 21-25
	{30, 58}, {34, 62}, {26, 50}, {30, 54}, {26, 52}, // 26-30
	{30, 56}, {34, 60}, {30, 58}, {34, 62}, {30, 54}, // 31-35
	{24, 50}, {28, 54}, {32, 58}, {26, 54}, {30, 58}, // 36-40
}

func init() {
	for v := MinVersion; v <= MaxVersion; v++ {
		vt := &vtab[v]
		c := &capacity[v]
		vt.words = c.words
		for l := range vt.level {
			n := blocks[v][l][0] + blocks[v][l][1]
			vt.level[l] = level{nblock: n, check: c.ec[l] / n}
		}
		if a := alignStart[v]; a[0] != 0 {
			last := v.Size() - 7
			vt.align = []int{6}
			if a[1] == 0 {
				vt.align = append(vt.align, a[0])
			} else {
				for p := a[0]; p <= last; p += a[1] - a[0] {
					vt.align = append(vt.align, p)
				}
			}
		}
		if v >= 7 {
			vt.pat = versionInfo(v)
		}
	}
}

// dataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) dataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.words - lev.nblock*lev.check
}

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	if !v.IsValid() || !l.IsValid() {
		return 0
	}
	return v.dataBytes(l)
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// Blocks returns the number of error correction blocks and the
// number of check bytes per block for the given version and level.
func (v Version) Blocks(l Level) (nblock, check int) {
	if !v.IsValid() || !l.IsValid() {
		return 0, 0
	}
	lev := vtab[v].level[l]
	return lev.nblock, lev.check
}

// Codewords returns the total number of codewords in a QR code of
// version v.
func (v Version) Codewords() int {
	if !v.IsValid() {
		return 0
	}
	return vtab[v].words
}

// AlignmentCenters returns the coordinates of alignment pattern
// centres along either axis.  Version 1 has none.
func (v Version) AlignmentCenters() []int {
	if !v.IsValid() {
		return nil
	}
	return append([]int(nil), vtab[v].align...)
}

// bch returns data followed by the remainder of data·x^n divided by
// poly, where n is the degree of poly.
func bch(data, poly uint32) uint32 {
	n := bitlen(poly) - 1
	rem := data << n
	for i := bitlen(rem) - 1; i >= n; i-- {
		if rem>>i&1 != 0 {
			rem ^= poly << (i - n)
		}
	}
	return data<<n | rem
}

func bitlen(x uint32) int {
	n := 0
	for ; x != 0; x >>= 1 {
		n++
	}
	return n
}

// formatInfo returns the 15 bit format information for the level and
// mask: BCH(15,5) masked with 0x5412.
func formatInfo(l Level, mask int) uint16 {
	const formatPoly = 0x537
	return uint16(bch(uint32(l.formatBits())<<3|uint32(mask), formatPoly)) ^ 0x5412
}

// versionInfo returns the 18 bit version information: BCH(18,6).
func versionInfo(v Version) uint32 {
	const versionPoly = 0x1f25
	return bch(uint32(v), versionPoly)
}
