// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Info describes an encoded code.
type Info struct {
	Version  int           `yaml:"version"`
	Level    string        `yaml:"level"`
	Mask     int           `yaml:"mask"`
	Modules  int           `yaml:"modules"`
	Pixels   int           `yaml:"pixels"`
	Scale    int           `yaml:"scale"`
	Border   int           `yaml:"border"`
	Segments []SegmentInfo `yaml:"segments"`
}

// SegmentInfo describes an encoded segment.
type SegmentInfo struct {
	Mode   string `yaml:"mode"`
	Length int    `yaml:"length"` // character count
	Bits   int    `yaml:"bits"`   // encoded length including header
}

// Info returns a description of c.
func (c *Code) Info() Info {
	in := Info{
		Version: int(c.Version),
		Level:   c.Level.String(),
		Mask:    c.Mask,
		Modules: c.Size,
		Pixels:  c.Pixels(),
		Scale:   c.Scale,
		Border:  c.Border,
	}
	class := c.Version.SizeClass()
	for _, seg := range c.Segments {
		in.Segments = append(in.Segments, SegmentInfo{
			Mode:   seg.Mode.String(),
			Length: seg.Len(),
			Bits:   seg.EncodedLength(class),
		})
	}
	return in
}

// EncodeInfo writes c.Info() to w as YAML.
func (c *Code) EncodeInfo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Info()); err != nil {
		return err
	}
	return enc.Close()
}
