// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/unixdj/qrpage/coding"
)

// decode reads the QR code in img.
func decode(t *testing.T, img image.Image) string {
	t.Helper()
	bm, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(
		gozxing.NewLuminanceSourceFromImage(img)))
	require.NoError(t, err)
	res, err := qrcode.NewQRCodeReader().Decode(bm, nil)
	require.NoError(t, err)
	return res.GetText()
}

func TestEncodeHelloWorld(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	assert.Equal(t, coding.Version(1), c.Version)
	assert.Equal(t, M, c.Level)
	assert.Equal(t, 21, c.Size)
	assert.Equal(t, []coding.Segment{{Text: "HELLO WORLD", Mode: coding.Alphanumeric}}, c.Segments)
	assert.Equal(t, 290, c.Pixels())

	img, err := png.Decode(bytes.NewReader(c.PNG()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 290, 290), img.Bounds())
	assert.Equal(t, "HELLO WORLD", decode(t, img))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		text  string
		level Level
		mode  Mode
	}{
		{"https://example.com/", L, Auto},
		{"Hello, world!", Q, Auto},
		{"0123456789012345678901234567890123456789", H, Auto},
		{"MIXED 12345678901234567890 case text", M, Auto},
		{strings.Repeat("lorem ipsum dolor sit amet ", 20), M, Auto},
		{"12345", L, Byte},
		{"PLAIN", H, Alphanumeric},
		{"98765", M, Numeric},
	}
	for _, tt := range tests {
		r := NewRequest(tt.text)
		r.Level, r.Mode, r.Scale = tt.level, tt.mode, 4
		c, err := EncodeRequest(r)
		require.NoError(t, err, tt.text)
		img, err := c.Image()
		require.NoError(t, err)
		assert.Equal(t, tt.text, decode(t, img), tt.text)
	}
}

func TestEmptyText(t *testing.T) {
	c, err := Encode("", L)
	require.NoError(t, err)
	assert.Equal(t, coding.Version(1), c.Version)
	assert.Equal(t, 21, c.Size)
	assert.Equal(t, []coding.Segment{{Mode: coding.Byte}}, c.Segments)
}

func TestEncodeErrors(t *testing.T) {
	c, err := Encode(strings.Repeat("a", 3000), H)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, c)

	r := NewRequest("text")
	r.Scale = 0
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.ErrorIs(t, err, ErrScale)

	r = NewRequest("text")
	r.Border = -1
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrBorder)

	r = NewRequest("text")
	r.Level = Level(7)
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	r = NewRequest("text")
	r.Mode = Numeric
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrInvalidCharacter)

	r = NewRequest("€uro")
	r.Mode = Latin1
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrInvalidCharacter)

	r = NewRequest("text")
	r.Mode = Mode(42)
	_, err = EncodeRequest(r)
	assert.ErrorIs(t, err, ErrInvalidCharacter)
	assert.Equal(t, "mode(42)", r.Mode.String())
}

func TestRasterize(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	img, err := Rasterize(c, 3, 2, color.Black, color.White)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 75, 75), img.Bounds())
	for y := 0; y < 75; y++ {
		for x := 0; x < 75; x++ {
			want := c.Black(x/3-2, y/3-2)
			require.Equal(t, want, img.ColorIndexAt(x, y) == 1, "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, "HELLO WORLD", decode(t, img))

	img, err = Rasterize(c, 1, 0, color.Black, color.White)
	require.NoError(t, err)
	assert.Equal(t, 21, img.Bounds().Dx())

	_, err = Rasterize(c, 0, 4, color.Black, color.White)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Rasterize(c, 10, -1, color.Black, color.White)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Rasterize(nil, 10, 4, color.Black, color.White)
	assert.ErrorIs(t, err, ErrArgs)
	_, err = Rasterize(c, 20000, 4, color.Black, color.White)
	assert.ErrorIs(t, err, ErrLargeImage)
	// sizes whose product overflows int
	for _, sb := range [][2]int{{1 << 61, 0}, {1, 1 << 62}, {3, (1 << 62) / 3}, {maxPixels + 1, 0}} {
		img, err := Rasterize(c, sb[0], sb[1], color.Black, color.White)
		assert.ErrorIs(t, err, ErrLargeImage, "scale %d border %d", sb[0], sb[1])
		assert.Nil(t, img)
	}
	c.Scale, c.Border = 1<<61, 0
	assert.ErrorIs(t, c.EncodePNG(io.Discard), ErrLargeImage)
	assert.ErrorIs(t, c.EncodePBM(io.Discard), ErrLargeImage)
}

func TestPNGDeterministic(t *testing.T) {
	a, err := Encode("https://example.com/", L)
	require.NoError(t, err)
	b, err := Encode("https://example.com/", L)
	require.NoError(t, err)
	pa, pb := a.PNG(), b.PNG()
	require.NotNil(t, pa)
	assert.Equal(t, pa, pb)
	assert.True(t, bytes.HasPrefix(pa, []byte(pngHeader)))

	a.Scale = 0
	assert.Nil(t, a.PNG())
	assert.ErrorIs(t, a.EncodePNG(io.Discard), ErrScale)
	assert.ErrorIs(t, b.EncodePNG(nil), ErrArgs)
}

func TestPNGPalette(t *testing.T) {
	c, err := Encode("colours", L)
	require.NoError(t, err)
	navy := color.NRGBA{0, 0, 0x80, 0xff}
	c.Palette = &[2]color.Color{color.Transparent, navy}
	img, err := png.Decode(bytes.NewReader(c.PNG()))
	require.NoError(t, err)
	_, ok := img.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{}, color.NRGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, navy, color.NRGBAModel.Convert(img.At(40, 40)))

	c.Palette = nil
	c.Reverse = true
	img, err = png.Decode(bytes.NewReader(c.PNG()))
	require.NoError(t, err)
	assert.Equal(t, color.Gray{0}, color.GrayModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.Gray{0xff}, color.GrayModel.Convert(img.At(40, 40)))
}

func TestPNGLarge(t *testing.T) {
	c, err := Encode(strings.Repeat("random-ish text 7 ", 100), L)
	require.NoError(t, err)
	c.Scale = 16
	img, err := png.Decode(bytes.NewReader(c.PNG()))
	require.NoError(t, err)
	assert.Equal(t, c.Pixels(), img.Bounds().Dx())
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			px := (c.Border+x)*c.Scale + c.Scale/2
			py := (c.Border+y)*c.Scale + c.Scale/2
			g := color.GrayModel.Convert(img.At(px, py)).(color.Gray)
			require.Equal(t, c.Black(x, y), g.Y == 0, "(%d,%d)", x, y)
		}
	}
}

func TestImageFormats(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	c.Scale = 4
	decoders := map[string]func(io.Reader) (image.Image, error){
		"png":  png.Decode,
		"PNG":  png.Decode,
		"bmp":  bmp.Decode,
		"tiff": tiff.Decode,
	}
	for name, dec := range decoders {
		f, inv, err := ParseFormat(name)
		require.NoError(t, err)
		assert.False(t, inv)
		var b bytes.Buffer
		require.NoError(t, f.Encode(c, &b), name)
		img, err := dec(&b)
		require.NoError(t, err, name)
		assert.Equal(t, 116, img.Bounds().Dx(), name)
		assert.Equal(t, "HELLO WORLD", decode(t, img), name)
	}
}

func TestPBM(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	c.Scale, c.Border = 1, 0
	var b bytes.Buffer
	require.NoError(t, c.EncodePBM(&b))
	head := "P4\n21 21\n"
	require.Equal(t, len(head)+21*3, b.Len())
	assert.Equal(t, head, b.String()[:len(head)])
	row := b.Bytes()[len(head):]
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			bit := row[y*3+x/8]>>(7-x%8)&1 != 0
			require.Equal(t, c.Black(x, y), bit, "(%d,%d)", x, y)
		}
	}

	c.Scale, c.Border = 10, 4
	b.Reset()
	require.NoError(t, c.EncodePBM(&b))
	head = "P4\n290 290\n"
	assert.Equal(t, len(head)+290*37, b.Len())
	assert.Equal(t, byte(0), b.Bytes()[len(head)])

	c.Reverse = true
	b.Reset()
	require.NoError(t, c.EncodePBM(&b))
	assert.Equal(t, byte(0xff), b.Bytes()[len(head)])

	c.Border = -1
	assert.ErrorIs(t, c.EncodePBM(&b), ErrBorder)
}

func TestText(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	require.Len(t, lines, 15)
	for _, l := range lines {
		assert.Equal(t, 29, len([]rune(l)))
	}
	assert.Equal(t, strings.Repeat(" ", 29), lines[0])
	// the first two rows of the top left finder pattern
	assert.Equal(t, "    █▀▀▀▀▀█", string([]rune(lines[2])[:11]))

	var b bytes.Buffer
	require.NoError(t, c.EncodeASCII(&b))
	lines = strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 29)
	assert.Equal(t, strings.Repeat("#", 14), lines[4][8:22])

	c.Reverse = true
	b.Reset()
	require.NoError(t, c.EncodeASCII(&b))
	assert.Equal(t, strings.Repeat("#", 58), strings.SplitN(b.String(), "\n", 2)[0])

	c.Border = 1 << 62
	assert.Empty(t, c.String())
	assert.ErrorIs(t, c.EncodeASCII(&b), ErrLargeImage)

	var nc *Code
	assert.Empty(t, nc.String())
	assert.ErrorIs(t, nc.EncodeASCII(&b), ErrArgs)
}

// sameModules reports whether f(x, y) is dark exactly where c is.
func sameModules(c *Code, f func(x, y int) bool) bool {
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) != f(x, y) {
				return false
			}
		}
	}
	return true
}

func TestTransform(t *testing.T) {
	c, err := Encode("transform me", Q)
	require.NoError(t, err)
	siz := c.Size

	f, err := c.Transform("f")
	require.NoError(t, err)
	assert.True(t, sameModules(f, func(x, y int) bool { return c.Black(siz-1-x, y) }))

	r, err := c.Transform("r")
	require.NoError(t, err)
	assert.True(t, sameModules(r, func(x, y int) bool { return c.Black(siz-1-y, x) }))

	for _, ops := range []string{"", "ff", "rrrr", "frfr"} {
		id, err := c.Transform(ops)
		require.NoError(t, err, ops)
		assert.True(t, sameModules(id, c.Black), ops)
	}
	fr, err := c.Transform("fr")
	require.NoError(t, err)
	for _, ops := range []string{"rfrr", "rrrf"} {
		o, err := c.Transform(ops)
		require.NoError(t, err, ops)
		assert.True(t, sameModules(o, fr.Black), ops)
	}

	_, err = c.Transform("x")
	assert.Error(t, err)
	c.Scale = 0
	_, err = c.Transform("f")
	assert.ErrorIs(t, err, ErrScale)
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		s    string
		want color.NRGBA
	}{
		{"black", color.NRGBA{0, 0, 0, 0xff}},
		{"Dark Grey", color.NRGBA{0xa9, 0xa9, 0xa9, 0xff}},
		{"transparent", color.NRGBA{}},
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"f00", color.NRGBA{0xff, 0, 0, 0xff}},
		{"1234", color.NRGBA{0x11, 0x22, 0x33, 0x44}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 0xff}},
		{"10203040", color.NRGBA{0x10, 0x20, 0x30, 0x40}},
	}
	for _, tt := range tests {
		got, err := ParseColour(tt.s)
		require.NoError(t, err, tt.s)
		assert.Equal(t, tt.want, got, tt.s)
	}
	for _, s := range []string{"", "#", "xyz", "12345", "#1234567", "123456789"} {
		_, err := ParseColour(s)
		assert.ErrorContains(t, err, "bad colour spec", s)
	}
}

func TestParseFormat(t *testing.T) {
	names := FormatNames()
	assert.Len(t, names, len(Formats)*2-1)
	assert.Contains(t, names, "tiffi")
	assert.NotContains(t, names, "infoi")

	f, inv, err := ParseFormat("pngi")
	require.NoError(t, err)
	assert.Equal(t, "png", f.Name)
	assert.True(t, inv)

	f, inv, err = ParseFormat("info")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", f.Ext)
	assert.True(t, f.Text)
	assert.False(t, inv)

	for _, s := range []string{"infoi", "gif", "", "PNGI"} {
		_, _, err = ParseFormat(s)
		assert.ErrorContains(t, err, "unknown format", s)
	}
}

func TestInfo(t *testing.T) {
	c, err := Encode("HELLO WORLD", M)
	require.NoError(t, err)
	in := c.Info()
	assert.Equal(t, 1, in.Version)
	assert.Equal(t, "M", in.Level)
	assert.Equal(t, 290, in.Pixels)
	assert.Equal(t, []SegmentInfo{{"alphanumeric", 11, 74}}, in.Segments)

	var b bytes.Buffer
	require.NoError(t, c.EncodeInfo(&b))
	assert.Contains(t, b.String(), "modules: 21\n")
	assert.Contains(t, b.String(), "  - mode: alphanumeric\n")
	assert.Contains(t, b.String(), "    bits: 74\n")
}

// fakeShell records what Generate renders.
type fakeShell struct {
	req      Request
	err      error
	renderer error

	code     *Code
	data     []byte
	filename string
	mimeType string
	rendered int
}

func (s *fakeShell) UserInputs() (Request, error) { return s.req, s.err }

func (s *fakeShell) RenderImageWithDownload(c *Code, data []byte, filename, mimeType string) error {
	s.rendered++
	s.code, s.data, s.filename, s.mimeType = c, data, filename, mimeType
	return s.renderer
}

func TestGenerate(t *testing.T) {
	sh := &fakeShell{req: NewRequest("HELLO WORLD")}
	c, err := Generate(sh)
	require.NoError(t, err)
	assert.Equal(t, 1, sh.rendered)
	assert.Same(t, c, sh.code)
	assert.Equal(t, DownloadName, sh.filename)
	assert.Equal(t, DownloadMIME, sh.mimeType)
	assert.Equal(t, c.PNG(), sh.data)
	img, err := png.Decode(bytes.NewReader(sh.data))
	require.NoError(t, err)
	assert.Equal(t, 290, img.Bounds().Dx())
	assert.Equal(t, "HELLO WORLD", decode(t, img))
}

func TestGenerateErrors(t *testing.T) {
	inputErr := errors.New("input closed")
	renderErr := errors.New("display gone")
	long := NewRequest(strings.Repeat("a", 3000))
	long.Level = H
	zero := NewRequest("x")
	zero.Scale = 0

	tests := []struct {
		sh       *fakeShell
		want     error
		rendered int
	}{
		{&fakeShell{req: NewRequest("")}, ErrNoContent, 0},
		{&fakeShell{err: inputErr}, inputErr, 0},
		{&fakeShell{req: long}, ErrCapacityExceeded, 0},
		{&fakeShell{req: zero}, ErrInvalidParameter, 0},
		{&fakeShell{req: NewRequest("x"), renderer: renderErr}, renderErr, 1},
	}
	for _, tt := range tests {
		c, err := Generate(tt.sh)
		assert.ErrorIs(t, err, tt.want)
		assert.Nil(t, c)
		assert.Equal(t, tt.rendered, tt.sh.rendered, tt.want)
	}
}
