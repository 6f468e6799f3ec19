// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// colourNames lists the colour names accepted by ParseColour.
var colourNames = map[string]color.NRGBA{
	"black":       {0x00, 0x00, 0x00, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0x00, 0x00, 0xff},
	"green":       {0x00, 0x80, 0x00, 0xff},
	"lime":        {0x00, 0xff, 0x00, 0xff},
	"blue":        {0x00, 0x00, 0xff, 0xff},
	"navy":        {0x00, 0x00, 0x80, 0xff},
	"yellow":      {0xff, 0xff, 0x00, 0xff},
	"cyan":        {0x00, 0xff, 0xff, 0xff},
	"magenta":     {0xff, 0x00, 0xff, 0xff},
	"gray":        {0xbe, 0xbe, 0xbe, 0xff},
	"grey":        {0xbe, 0xbe, 0xbe, 0xff},
	"darkgray":    {0xa9, 0xa9, 0xa9, 0xff},
	"darkgrey":    {0xa9, 0xa9, 0xa9, 0xff},
	"lightgray":   {0xd3, 0xd3, 0xd3, 0xff},
	"lightgrey":   {0xd3, 0xd3, 0xd3, 0xff},
	"orange":      {0xff, 0xa5, 0x00, 0xff},
	"purple":      {0xa0, 0x20, 0xf0, 0xff},
	"brown":       {0xa5, 0x2a, 0x2a, 0xff},
	"maroon":      {0xb0, 0x30, 0x60, 0xff},
	"darkgreen":   {0x00, 0x64, 0x00, 0xff},
	"darkblue":    {0x00, 0x00, 0x8b, 0xff},
	"transparent": {0x00, 0x00, 0x00, 0x00},
}

// ParseColour parses a colour given as 3, 4, 6 or 8 hex digits (RGB,
// RGBA, RRGGBB or RRGGBBAA, optionally preceded by "#") or as a name
// such as "black" or "dark grey".
func ParseColour(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if c, ok := colourNames[name]; ok {
		return c, nil
	}
	h := strings.TrimPrefix(name, "#")
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%q: bad colour spec", s)
	}
	switch len(h) {
	case 3:
		n = n<<4 | 0xf
		fallthrough
	case 4:
		var nn uint64
		for i := 0; i < 4; i++ {
			nn <<= 8
			nn |= n >> 12 & 0xf * 0x11
			n <<= 4
		}
		n = nn
	case 6:
		n = n<<8 | 0xff
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%q: bad colour spec", s)
	}
	return color.NRGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}
