// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrpage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Download defaults.
const (
	DownloadName = "qr_code.png"
	DownloadMIME = "image/png"
)

// ErrNoContent is returned by Generate for empty text.
var ErrNoContent = errors.New("qr: no content to encode")

// A Shell is a front end collecting requests and presenting results.
type Shell interface {
	// UserInputs returns the request entered by the user.
	UserInputs() (Request, error)

	// RenderImageWithDownload displays the code and offers data, an
	// encoding of it, for download under filename with the given
	// content type.
	RenderImageWithDownload(code *Code, data []byte, filename, mimeType string) error
}

// Generate reads a request from sh, encodes it as a PNG image and
// passes it to sh for display and download.  Errors are returned
// unaltered; nothing is rendered on error.
func Generate(sh Shell) (*Code, error) {
	r, err := sh.UserInputs()
	if err != nil {
		return nil, err
	}
	if r.Text == "" {
		return nil, ErrNoContent
	}
	c, err := EncodeRequest(r)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := c.EncodePNG(&b); err != nil {
		return nil, err
	}
	if err := sh.RenderImageWithDownload(c, b.Bytes(), DownloadName,
		DownloadMIME); err != nil {
		return nil, err
	}
	return c, nil
}

// A Format is an output format.
type Format struct {
	Name   string                       // format name
	MIME   string                       // content type
	Ext    string                       // filename suffix
	Text   bool                         // for terminals
	Encode func(*Code, io.Writer) error // encoder
}

// Formats lists the output formats.  "png" is the default.
var Formats = []Format{
	{"png", "image/png", ".png", false, (*Code).EncodePNG},
	{"PNG", "image/png", ".png", false, (*Code).EncodeStdPNG},
	{"pbm", "image/x-portable-bitmap", ".pbm", false, (*Code).EncodePBM},
	{"bmp", "image/bmp", ".bmp", false, (*Code).EncodeBMP},
	{"tiff", "image/tiff", ".tiff", false, (*Code).EncodeTIFF},
	{"utf8", "text/plain; charset=utf-8", ".txt", true, (*Code).EncodeText},
	{"ascii", "text/plain", ".txt", true, (*Code).EncodeASCII},
	{"info", "application/yaml", ".yaml", true, (*Code).EncodeInfo},
}

// FormatNames returns the accepted format names, each followed by its
// inverted variant.
func FormatNames() []string {
	names := make([]string, 0, len(Formats)*2)
	for _, f := range Formats {
		names = append(names, f.Name)
		if f.Name != "info" {
			names = append(names, f.Name+"i")
		}
	}
	return names
}

// ParseFormat returns the Format named by s and whether colours are
// inverted, as requested by an "i" suffix.
func ParseFormat(s string) (Format, bool, error) {
	for _, f := range Formats {
		if s == f.Name {
			return f, false, nil
		}
		if f.Name != "info" && s == f.Name+"i" {
			return f, true, nil
		}
	}
	return Format{}, false, fmt.Errorf("qr: unknown format %q, want one of %s",
		s, strings.Join(FormatNames(), ", "))
}
