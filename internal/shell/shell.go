// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shell implements qrpage.Shell for the command line.
package shell

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/unixdj/qrpage"
	"github.com/unixdj/qrpage/internal/config"
	"github.com/unixdj/qrpage/internal/metrics"
)

// User-facing messages.
const (
	MsgNoContent = "Please enter some content for the QR Code"
	MsgError     = "Error generating QR Code: "
)

// Stdout is the output name for standard output.
const Stdout = "-"

// Options are the command line settings not covered by config.Config.
type Options struct {
	Args      []string // text to encode, joined by spaces; nil: read Stdin
	Upper     bool     // convert text to uppercase
	Latin1    bool     // byte segments as ISO 8859-1
	ByteOnly  bool     // encode everything in one byte segment
	Transform string   // qrpage.Flip and qrpage.Rotate operations
}

// A Terminal reads text from arguments or standard input and writes
// the code to a file or standard output.
type Terminal struct {
	cfg  *config.Config
	opts Options

	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Log     *slog.Logger
	Metrics *metrics.Metrics

	palette *[2]color.Color
	format  qrpage.Format
	reverse bool
	req     qrpage.Request
	written string // name of the file written, or Stdout
}

// New returns a Terminal using cfg, which must be valid, and opts.
// It uses the process's standard streams, a logger discarding
// everything and a fresh metrics registry.
func New(cfg *config.Config, opts Options) (*Terminal, error) {
	pal, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	t := &Terminal{
		cfg:     cfg,
		opts:    opts,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		palette: pal,
	}
	if cfg.Format != "" {
		if t.format, t.reverse, err = qrpage.ParseFormat(cfg.Format); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// outputFormat returns the output format.  If none is configured, it
// is utf8 when writing to a terminal and png otherwise.
func (t *Terminal) outputFormat() (qrpage.Format, bool) {
	if t.format.Encode != nil {
		return t.format, t.reverse
	}
	name := "png"
	if t.cfg.Output == Stdout && isTerminal(t.Stdout) {
		name = "utf8"
	}
	f, _, _ := qrpage.ParseFormat(name)
	return f, false
}

// UserInputs returns the request from the arguments or, if there are
// none, from standard input with a final newline stripped.
func (t *Terminal) UserInputs() (qrpage.Request, error) {
	var s string
	if t.opts.Args != nil {
		s = strings.Join(t.opts.Args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, t.Stdin); err != nil {
			return qrpage.Request{}, err
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if t.opts.Upper {
		s = strings.ToUpper(s)
	}
	r := qrpage.NewRequest(s)
	r.Level = t.cfg.QRLevel()
	r.Scale = t.cfg.Scale
	r.Border = t.cfg.Border
	switch {
	case t.opts.ByteOnly && t.opts.Latin1:
		r.Mode = qrpage.Latin1
	case t.opts.ByteOnly:
		r.Mode = qrpage.Byte
	case t.opts.Latin1:
		r.Mode = qrpage.AutoLatin1
	}
	t.req = r
	t.Log.Debug("request", "length", len(s), "level", r.Level,
		"mode", r.Mode, "scale", r.Scale, "border", r.Border)
	return r, nil
}

// outputName returns the name of the file to write for the download
// name filename, or Stdout.  The default name gets the suffix of the
// output format.
func (t *Terminal) outputName(filename string, f qrpage.Format) string {
	name := t.cfg.Output
	switch name {
	case "", Stdout:
		return Stdout
	case qrpage.DownloadName:
		name = filename
	}
	if name == filename && filepath.Ext(name) != f.Ext {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + f.Ext
	}
	return name
}

// RenderImageWithDownload writes code in the output format.  data, a
// PNG encoding with default colours, is written as is when it
// matches.
func (t *Terminal) RenderImageWithDownload(code *qrpage.Code, data []byte, filename, mimeType string) error {
	f, rev := t.outputFormat()
	cc := *code
	c := &cc
	if t.opts.Transform != "" {
		var err error
		if c, err = code.Transform(t.opts.Transform); err != nil {
			return err
		}
	}
	c.Palette = t.palette
	c.Reverse = rev
	if f.MIME != mimeType || f.Name != "png" || rev ||
		t.opts.Transform != "" || !defaultPalette(t.palette) {
		var b bytes.Buffer
		if err := f.Encode(c, &b); err != nil {
			return err
		}
		data = b.Bytes()
	}
	t.Log.Debug("encoded", "version", c.Version, "level", c.Level,
		"mask", c.Mask, "segments", len(c.Segments),
		"modules", c.Size, "pixels", c.Pixels(), "format", f.Name)

	name := t.outputName(filename, f)
	if err := t.write(name, data); err != nil {
		return err
	}
	t.written = name
	t.Metrics.ObserveOutput(f.Name, len(data))
	t.Log.Debug("written", "output", name, "bytes", len(data))
	return nil
}

// defaultPalette reports whether pal is black on white.
func defaultPalette(pal *[2]color.Color) bool {
	if pal == nil {
		return true
	}
	bg := color.NRGBAModel.Convert(pal[0]).(color.NRGBA)
	fg := color.NRGBAModel.Convert(pal[1]).(color.NRGBA)
	return bg == color.NRGBA{0xff, 0xff, 0xff, 0xff} &&
		fg == color.NRGBA{0x00, 0x00, 0x00, 0xff}
}

func (t *Terminal) write(name string, data []byte) error {
	if name == Stdout {
		_, err := t.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o666)
}

// Written returns the name of the file written by the last successful
// Run, or Stdout.
func (t *Terminal) Written() string { return t.written }

// Run generates a code and reports failures on Stderr.  It returns
// the process exit status.
func (t *Terminal) Run() int {
	t.req = qrpage.Request{Level: t.cfg.QRLevel()}
	start := time.Now()
	c, err := qrpage.Generate(t)
	t.Metrics.Observe(t.req.Level, time.Since(start), c, err)

	status := 0
	switch {
	case errors.Is(err, qrpage.ErrNoContent):
		t.Log.Debug("empty input")
		fmt.Fprintln(t.Stderr, MsgNoContent)
		status = 1
	case err != nil:
		t.Log.Debug("generate failed", "error", err, "kind", metrics.Status(err))
		fmt.Fprintln(t.Stderr, MsgError+err.Error())
		status = 1
	}
	if file := t.cfg.MetricsFile; file != "" {
		if err := t.Metrics.WriteTextfile(file); err != nil {
			t.Log.Error("writing metrics", "file", file, "error", err)
			fmt.Fprintln(t.Stderr, err)
			status = 1
		}
	}
	return status
}
