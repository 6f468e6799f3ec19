// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads qrpage settings from configuration files, a
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/unixdj/qrpage"
)

// Config holds the settings of the qrpage command.  Command line flags
// override them.
type Config struct {
	Scale       int    `mapstructure:"scale" yaml:"scale"`
	Border      int    `mapstructure:"border" yaml:"border"`
	Level       string `mapstructure:"level" yaml:"level"`
	Foreground  string `mapstructure:"foreground" yaml:"foreground"`
	Background  string `mapstructure:"background" yaml:"background"`
	Output      string `mapstructure:"output" yaml:"output"`
	Format      string `mapstructure:"format" yaml:"format"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Scale:      qrpage.DefaultScale,
		Border:     qrpage.DefaultBorder,
		Level:      "L",
		Foreground: "black",
		Background: "white",
		Output:     qrpage.DownloadName,
		LogLevel:   "warn",
	}
}

// Validation errors.
var (
	ErrScale    = errors.New("scale must be at least 1")
	ErrBorder   = errors.New("border must not be negative")
	ErrLevel    = errors.New("level must be one of L, M, Q, H")
	ErrLogLevel = errors.New("log_level must be one of debug, info, warn, error")
)

// Validate checks the settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Scale < 1 {
		errs = append(errs, ErrScale)
	}
	if c.Border < 0 {
		errs = append(errs, ErrBorder)
	}
	if _, ok := qrpage.ParseLevel(c.Level); !ok {
		errs = append(errs, ErrLevel)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Format != "" {
		if _, _, err := qrpage.ParseFormat(c.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// QRLevel returns the error correction level.
func (c *Config) QRLevel() qrpage.Level {
	l, _ := qrpage.ParseLevel(c.Level)
	return l
}

// Palette returns the background and foreground colours.
func (c *Config) Palette() (*[2]color.Color, error) {
	bg, err := qrpage.ParseColour(c.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	fg, err := qrpage.ParseColour(c.Foreground)
	if err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	return &[2]color.Color{bg, fg}, nil
}

// SlogLevel returns the log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, ErrLogLevel
}
