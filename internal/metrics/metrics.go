// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics counts generated QR codes and their sizes.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unixdj/qrpage"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	Registry *prometheus.Registry

	codesTotal     *prometheus.CounterVec
	encodeDuration prometheus.Histogram
	codeVersion    *prometheus.HistogramVec
	outputBytes    *prometheus.HistogramVec
}

// New returns Metrics registered in a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		codesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrpage_codes_total",
				Help: "Total number of QR code requests",
			},
			[]string{"level", "status"}, // status: ok, capacity, character, parameter, empty, error
		),
		encodeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrpage_generate_duration_seconds",
				Help:    "Time to encode and render a QR code in seconds",
				Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
		codeVersion: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrpage_code_version",
				Help:    "QR version of generated codes",
				Buckets: []float64{1, 2, 5, 10, 15, 20, 26, 30, 35, 40},
			},
			[]string{"level"},
		),
		outputBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrpage_output_bytes",
				Help:    "Size of written output in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"format"},
		),
	}
}

// Status classifies err for the status label.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, qrpage.ErrNoContent):
		return "empty"
	case errors.Is(err, qrpage.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, qrpage.ErrInvalidCharacter):
		return "character"
	case errors.Is(err, qrpage.ErrInvalidParameter):
		return "parameter"
	}
	return "error"
}

// Observe records a generation attempt at the given level that took
// d and produced c, or failed with err.
func (m *Metrics) Observe(level qrpage.Level, d time.Duration, c *qrpage.Code, err error) {
	m.codesTotal.WithLabelValues(level.String(), Status(err)).Inc()
	if err != nil {
		return
	}
	m.encodeDuration.Observe(d.Seconds())
	m.codeVersion.WithLabelValues(level.String()).Observe(float64(c.Version))
}

// ObserveOutput records n bytes written in format.
func (m *Metrics) ObserveOutput(format string, n int) {
	m.outputBytes.WithLabelValues(format).Observe(float64(n))
}

// WriteTextfile writes the metrics to filename in the text exposition
// format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.Registry)
}
