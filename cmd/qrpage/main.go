// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Qrpage encodes text as a QR code image.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pborman/getopt/v2"

	"github.com/unixdj/qrpage"
	"github.com/unixdj/qrpage/internal/config"
	"github.com/unixdj/qrpage/internal/shell"
)

const versionText = `qrpage version 1.0.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2024 Vadim Vygonets
`

// flags holds the command line.  Values are copied to the
// configuration only if given.
type flags struct {
	set *getopt.Set

	help, version, verbose bool
	configFile             string
	ops                    string // flips and rotations, in order
	latin1, byteOnly       bool
	upper                  bool

	scale, border  int
	bg, fg         string
	output, format string
	level          string
	metricsFile    string
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func newFlags() *flags {
	f := &flags{set: getopt.New()}
	s := f.set
	s.Flag(&f.help, 'h', "show this help")
	s.Flag(&f.version, 'V', "print version and copyright")
	s.Flag(&f.verbose, 'v', "log debugging information")
	s.FlagLong(&f.configFile, "config", 'c', "configuration file; "+
		"default: qrpage.yaml, .toml or .json in ., "+
		"~/.config/qrpage or /etc/qrpage", "file")
	s.FlagLong(&f.bg, "background", 'B', `background colour; see -F`,
		"RGB[A]|name")
	s.FlagLong(&f.fg, "foreground", 'F', `foreground colour `+
		`as 3, 4, 6 or 8 hex digits or a colour name; `+
		`only for image types`, "RGB[A]|name")
	s.Flag(opt(func() { f.ops += string(qrpage.Flip) }), 'f',
		`flip code horizontally; to flip vertically, use "-frr"`).SetFlag()
	s.Flag(opt(func() { f.ops += string(qrpage.Rotate) }), 'r',
		`rotate code 90° counterclockwise; `+
			`-r and -f may be given multiple times, `+
			`order matters: "-fr" = "-rfrr" = "-rrrf"`).SetFlag()
	s.Flag(&f.latin1, '1', "convert byte mode segments to Latin-1")
	s.Flag(&f.byteOnly, '8', "encode entire data in byte mode")
	s.Flag(&f.upper, 'i', "ignore case, convert input to uppercase")
	s.FlagLong(&f.border, "border", 'm', "quiet zone modules [4]", "margin")
	s.FlagLong(&f.output, "output", 'o', `output file, or "-" for `+
		`standard output [qr_code.png]`, "file")
	s.FlagLong(&f.level, "level", 'l', "error correction level, "+
		"lowest to highest [l]", "l|m|q|h")
	s.FlagLong(&f.scale, "scale", 's', "image pixels per QR module [10]; "+
		"ignored for text types", "scale")
	s.FlagLong(&f.format, "type", 't', `output format, one of: `+
		strings.Join(qrpage.FormatNames(), ", ")+
		`; types with "i" appended have colours inverted; `+
		`"png" uses a bespoke QR PNG encoder, "PNG" the standard one; `+
		`if the output is "-" and standard output is a TTY, `+
		`default is utf8, otherwise png`, "type")
	s.FlagLong(&f.metricsFile, "metrics-file", 0,
		"write Prometheus metrics to file", "file")
	return f
}

func (f *flags) printUsage(w io.Writer) {
	prog := f.set.Program()
	ul := make([]string, 1, 4)
	ul[0] = f.set.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Settings not given on the command line are taken
from the configuration file and QRPAGE_* environment variables.

`)
	f.set.PrintOptions(w)
}

// apply copies the flags given to cfg.
func (f *flags) apply(cfg *config.Config) error {
	s := f.set
	if s.IsSet('s') {
		cfg.Scale = f.scale
	}
	if s.IsSet('m') {
		cfg.Border = f.border
	}
	if s.IsSet('l') {
		cfg.Level = f.level
	}
	if s.IsSet('B') {
		cfg.Background = f.bg
	}
	if s.IsSet('F') {
		cfg.Foreground = f.fg
	}
	if s.IsSet('o') {
		cfg.Output = f.output
	}
	if s.IsSet('t') {
		cfg.Format = f.format
	}
	if s.IsSet("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg.Validate()
}

// run runs the command with the given arguments, including the
// program name, and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f := newFlags()
	if err := f.set.Getopt(args, nil); err != nil {
		fmt.Fprintln(stderr, err)
		f.printUsage(stderr)
		return 2
	}
	prog := f.set.Program()
	switch {
	case f.help:
		f.printUsage(stdout)
		return 0
	case f.version:
		fmt.Fprint(stdout, versionText)
		return 0
	}

	cfg, err := config.NewLoader().Load(f.configFile)
	if err == nil {
		err = f.apply(cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		return 2
	}
	lev, _ := cfg.SlogLevel()
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lev}))

	opts := shell.Options{
		Upper:     f.upper,
		Latin1:    f.latin1,
		ByteOnly:  f.byteOnly,
		Transform: f.ops,
	}
	if a := f.set.Args(); len(a) != 0 {
		opts.Args = a
	}
	term, err := shell.New(cfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		return 2
	}
	term.Stdin = stdin
	term.Stdout = stdout
	term.Stderr = stderr
	term.Log = log
	log.Debug("configuration", "scale", cfg.Scale, "border", cfg.Border,
		"level", cfg.Level, "format", cfg.Format, "output", cfg.Output)
	return term.Run()
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
