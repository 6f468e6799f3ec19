// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qrpage"
	"github.com/unixdj/qrpage/coding"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{qrpage.ErrNoContent, "empty"},
		{coding.CapacityError{Bits: 1 << 20}, "capacity"},
		{coding.SegmentError{Text: "x", Mode: coding.Numeric}, "character"},
		{qrpage.ErrScale, "parameter"},
		{fmt.Errorf("wrapped: %w", qrpage.ErrBorder), "parameter"},
		{os.ErrPermission, "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "%v", tt.err)
	}
}

func TestObserve(t *testing.T) {
	m := New()
	c, err := qrpage.Encode("HELLO WORLD", qrpage.M)
	require.NoError(t, err)

	m.Observe(qrpage.M, time.Millisecond, c, nil)
	m.Observe(qrpage.M, time.Millisecond, c, nil)
	m.Observe(qrpage.H, 0, nil, coding.CapacityError{})
	m.ObserveOutput("png", 300)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.codesTotal.WithLabelValues("M", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.codesTotal.WithLabelValues("H", "capacity")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.codeVersion))
	assert.Equal(t, 1, testutil.CollectAndCount(m.outputBytes))

	n, err := testutil.GatherAndCount(m.Registry, "qrpage_codes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(qrpage.L, 0, nil, qrpage.ErrNoContent)
	file := filepath.Join(t.TempDir(), "qrpage.prom")
	require.NoError(t, m.WriteTextfile(file))

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `qrpage_codes_total{level="L",status="empty"} 1`)
}
