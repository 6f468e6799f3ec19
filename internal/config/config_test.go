// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qrpage"
)

// emptyDir changes to an empty directory so that no configuration
// or .env file is found.
func emptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	emptyDir(t)
	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, 10, cfg.Scale)
	assert.Equal(t, 4, cfg.Border)
	assert.Equal(t, qrpage.L, cfg.QRLevel())
	assert.Equal(t, "qr_code.png", cfg.Output)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := emptyDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qrpage.yaml"),
		[]byte("scale: 6\nborder: 2\nlevel: q\nforeground: '#112233'\n"), 0o600))

	l := NewLoader()
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Scale)
	assert.Equal(t, 2, cfg.Border)
	assert.Equal(t, qrpage.Q, cfg.QRLevel())
	assert.Equal(t, "white", cfg.Background)
	assert.Contains(t, l.ConfigFileUsed(), "qrpage.yaml")

	pal, err := cfg.Palette()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x11, 0x22, 0x33, 0xff}, pal[1])
}

func TestLoadExplicitFile(t *testing.T) {
	dir := emptyDir(t)
	file := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"level": "H", "format": "utf8"}`), 0o600))

	cfg, err := NewLoader().Load(file)
	require.NoError(t, err)
	assert.Equal(t, qrpage.H, cfg.QRLevel())
	assert.Equal(t, "utf8", cfg.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := emptyDir(t)
	_, err := NewLoader().Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	emptyDir(t)
	t.Setenv("QRPAGE_SCALE", "3")
	t.Setenv("QRPAGE_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scale)
	lev, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lev)
}

func TestLoadDotEnv(t *testing.T) {
	dir := emptyDir(t)
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("QRPAGE_BORDER=7\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("QRPAGE_BORDER") })

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Border)
}

func TestLoadBadDotEnv(t *testing.T) {
	dir := emptyDir(t)
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("QRPAGE-BORDER=7\n"), 0o600))

	_, err := NewLoader().Load("")
	assert.ErrorContains(t, err, "env file")
}

func TestLoadInvalid(t *testing.T) {
	emptyDir(t)
	t.Setenv("QRPAGE_SCALE", "0")
	_, err := NewLoader().Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScale)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"default", func(*Config) {}, nil},
		{"scale", func(c *Config) { c.Scale = 0 }, ErrScale},
		{"border", func(c *Config) { c.Border = -1 }, ErrBorder},
		{"level", func(c *Config) { c.Level = "X" }, ErrLevel},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, ErrLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}

	c := DefaultConfig()
	c.Format = "gif"
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Foreground = "not a colour"
	assert.Error(t, c.Validate())
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
