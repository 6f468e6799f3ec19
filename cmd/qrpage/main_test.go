// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliContext holds the state of one scenario.
type cliContext struct {
	dir    string // working directory
	oldDir string
	stdin  string
	stdout bytes.Buffer
	stderr bytes.Buffer
	status int
}

// unescape expands \n in feature file strings.
func unescape(s string) string { return strings.ReplaceAll(s, `\n`, "\n") }

func (c *cliContext) standardInput(s string) error {
	c.stdin = unescape(s)
	return nil
}

func (c *cliContext) standardInputOf(n int, s string) error {
	c.stdin = strings.Repeat(s, n)
	return nil
}

func (c *cliContext) aFileContaining(name, content string) error {
	return os.WriteFile(filepath.Join(c.dir, name), []byte(unescape(content)), 0o600)
}

func (c *cliContext) iRun(command string) error {
	c.stdout.Reset()
	c.stderr.Reset()
	c.status = run(strings.Fields(command), strings.NewReader(c.stdin),
		&c.stdout, &c.stderr)
	return nil
}

func (c *cliContext) theCommandShouldSucceed() error {
	if c.status != 0 {
		return fmt.Errorf("exit status %d: %s", c.status, c.stderr.String())
	}
	return nil
}

func (c *cliContext) theCommandShouldFailWithStatus(status int) error {
	if c.status != status {
		return fmt.Errorf("exit status %d, want %d: %s", c.status, status, c.stderr.String())
	}
	return nil
}

func (c *cliContext) theErrorOutputShouldBe(s string) error {
	if got := strings.TrimSuffix(c.stderr.String(), "\n"); got != s {
		return fmt.Errorf("error output %q, want %q", got, s)
	}
	return nil
}

func (c *cliContext) theErrorOutputShouldContain(s string) error {
	if !strings.Contains(c.stderr.String(), s) {
		return fmt.Errorf("error output %q does not contain %q", c.stderr.String(), s)
	}
	return nil
}

func (c *cliContext) theOutputShouldContain(s string) error {
	if !strings.Contains(c.stdout.String(), s) {
		return fmt.Errorf("output %q does not contain %q", c.stdout.String(), s)
	}
	return nil
}

func (c *cliContext) theOutputShouldHaveLines(n int) error {
	lines := strings.Count(c.stdout.String(), "\n")
	if lines != n {
		return fmt.Errorf("output has %d lines, want %d", lines, n)
	}
	return nil
}

func (c *cliContext) theFileShouldBeAPNGImage(name string, w, h int) error {
	f, err := os.Open(filepath.Join(c.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return err
	}
	if cfg.Width != w || cfg.Height != h {
		return fmt.Errorf("%s is %dx%d, want %dx%d", name, cfg.Width, cfg.Height, w, h)
	}
	return nil
}

func (c *cliContext) theQRCodeShouldDecodeTo(name, text string) error {
	f, err := os.Open(filepath.Join(c.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return err
	}
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(
		gozxing.NewLuminanceSourceFromImage(img)))
	if err != nil {
		return err
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	if res.GetText() != text {
		return fmt.Errorf("%s decodes to %q, want %q", name, res.GetText(), text)
	}
	return nil
}

func (c *cliContext) theFilesShouldBeIdentical(a, b string) error {
	ba, err := os.ReadFile(filepath.Join(c.dir, a))
	if err != nil {
		return err
	}
	bb, err := os.ReadFile(filepath.Join(c.dir, b))
	if err != nil {
		return err
	}
	if !bytes.Equal(ba, bb) {
		return fmt.Errorf("%s and %s differ", a, b)
	}
	return nil
}

// initializeScenario runs each scenario in its own empty directory,
// where no configuration or .env file is found unless created.
func initializeScenario(sc *godog.ScenarioContext) {
	c := &cliContext{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "qrpage-feature-")
		if err != nil {
			return ctx, err
		}
		if c.oldDir, err = os.Getwd(); err != nil {
			return ctx, err
		}
		c.dir = dir
		os.Setenv("XDG_CONFIG_HOME", dir)
		return ctx, os.Chdir(dir)
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if c.oldDir != "" {
			os.Chdir(c.oldDir)
		}
		return ctx, os.RemoveAll(c.dir)
	})

	sc.Step(`^standard input "([^"]*)"$`, c.standardInput)
	sc.Step(`^standard input of (\d+) "([^"]*)" characters$`, c.standardInputOf)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, c.aFileContaining)
	sc.Step(`^I run "([^"]*)"$`, c.iRun)
	sc.Step(`^the command should succeed$`, c.theCommandShouldSucceed)
	sc.Step(`^the command should fail with status (\d+)$`, c.theCommandShouldFailWithStatus)
	sc.Step(`^the error output should be "([^"]*)"$`, c.theErrorOutputShouldBe)
	sc.Step(`^the error output should contain "([^"]*)"$`, c.theErrorOutputShouldContain)
	sc.Step(`^the output should contain "([^"]*)"$`, c.theOutputShouldContain)
	sc.Step(`^the output should have (\d+) lines$`, c.theOutputShouldHaveLines)
	sc.Step(`^the file "([^"]*)" should be a (\d+)x(\d+) PNG image$`, c.theFileShouldBeAPNGImage)
	sc.Step(`^the QR code in "([^"]*)" should decode to "([^"]*)"$`, c.theQRCodeShouldDecodeTo)
	sc.Step(`^the files "([^"]*)" and "([^"]*)" should be identical$`, c.theFilesShouldBeIdentical)
}

func TestFeatures(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "progress"
	}
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   format,
			Tags:     os.Getenv("GODOG_TAGS"),
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func TestHelpAndVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"qrpage", "-h"}, nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage: qrpage")
	assert.Contains(t, stdout.String(), "--metrics-file")
	assert.Empty(t, stderr.String())

	stdout.Reset()
	require.Equal(t, 0, run([]string{"qrpage", "-V"}, nil, &stdout, &stderr))
	assert.Equal(t, versionText, stdout.String())
}

func TestBadFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"qrpage", "-x"}, "unknown option"},
		{[]string{"qrpage", "-l", "z", "x"}, "level"},
		{[]string{"qrpage", "-t", "gif", "x"}, "unknown format"},
		{[]string{"qrpage", "-F", "nocolour", "x"}, "bad colour spec"},
		{[]string{"qrpage", "-m", "-1", "x"}, "border"},
		{[]string{"qrpage", "-c", "missing.yaml", "x"}, "config file"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(tt.args, strings.NewReader(""), &stdout, &stderr), tt.args)
		assert.Contains(t, stderr.String(), tt.want, tt.args)
		assert.Empty(t, stdout.String(), tt.args)
	}
}

func TestFlagOrder(t *testing.T) {
	f := newFlags()
	require.NoError(t, f.set.Getopt([]string{"qrpage", "-frr", "-r", "-f", "text"}, nil))
	assert.Equal(t, "frrrf", f.ops)
	assert.Equal(t, []string{"text"}, f.set.Args())
}

func TestVerboseLogging(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"qrpage", "-v", "-o", "-", "-t", "utf8", "x"},
		nil, &stdout, &stderr), stderr.String())
	assert.Contains(t, stderr.String(), "level=DEBUG")
	assert.Contains(t, stderr.String(), "version=1")
	assert.Contains(t, stdout.String(), "█")
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
