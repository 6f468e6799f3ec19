// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// FileName is the base name of configuration files.
	FileName = "qrpage"

	// EnvPrefix is the prefix of environment variables.
	EnvPrefix = "QRPAGE"
)

// Loader loads configuration from files, .env and the environment.
type Loader struct {
	v *viper.Viper

	// DotEnv names the .env files to load; nil means ".env" in the
	// working directory.  Missing files are ignored.
	DotEnv []string
}

// NewLoader returns a Loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration from the named file or, if file is empty,
// from the first qrpage.{yaml,toml,json} found in the search paths.
// A missing default file is not an error.
func (l *Loader) Load(file string) (*Config, error) {
	// Variables already set in the environment take precedence.
	if err := godotenv.Load(l.DotEnv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("env file: %w", err)
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(FileName)
		l.addConfigPaths()
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &c, nil
}

// ConfigFileUsed returns the path of the file read, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

// addConfigPaths adds the configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(dir, FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	l.v.AddConfigPath(filepath.Join("/etc", FileName))
}

// setupEnvironmentVariables maps QRPAGE_SCALE to scale etc.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all keys, which also makes
// AutomaticEnv apply to them on Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()
	l.v.SetDefault("scale", d.Scale)
	l.v.SetDefault("border", d.Border)
	l.v.SetDefault("level", d.Level)
	l.v.SetDefault("foreground", d.Foreground)
	l.v.SetDefault("background", d.Background)
	l.v.SetDefault("output", d.Output)
	l.v.SetDefault("format", d.Format)
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("metrics_file", d.MetricsFile)
}
