// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package ddsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSketchQuantileWithinRange(t *testing.T) {
	s := NewSketch()
	values := []float64{1, 5, -3, 0, 2.5, -10, 100}
	for _, v := range values {
		require.NoError(t, s.Add(v))
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	for _, q := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got, err := s.Quantile(q)
		require.NoError(t, err)
		// Allow the mapping's own relative accuracy plus slack for a sketch
		// that is mostly empty-bin zero near the boundary.
		assert.GreaterOrEqual(t, got, min-1)
		assert.LessOrEqual(t, got, max+1)
	}
}

func TestSketchQuantileEmpty(t *testing.T) {
	s := NewSketch()
	_, err := s.Quantile(0.5)
	assert.Error(t, err, "expected error for quantile on empty sketch")
}

func TestSketchQuantileOutOfRange(t *testing.T) {
	s := NewSketch()
	s.Add(1)
	_, err := s.Quantile(-0.1)
	assert.Error(t, err, "expected error for quantile < 0")

	_, err = s.Quantile(1.1)
	assert.Error(t, err, "expected error for quantile > 1")
}

func TestSketchTotalCountInvariant(t *testing.T) {
	s := NewSketch()
	s.AddWithCount(5, 3)
	s.AddWithCount(0, 2)
	s.AddWithCount(-5, 4)
	assert.Equal(t, 9.0, s.TotalCount())
}

func TestSketchNegativeCountRejected(t *testing.T) {
	s := NewSketch()
	err := s.AddWithCount(1, -1)
	assert.Error(t, err, "expected error for negative count")
}

func TestSketchEncodeDecodeRoundTrip(t *testing.T) {
	s := NewSketch()
	for _, v := range []float64{1, -1, 2.5, -2.5, 0, 10, -10} {
		s.Add(v)
	}
	b := s.EncodeInto(nil)
	decoded, err := DecodeSketch(b)
	require.NoError(t, err)
	assert.Equal(t, s.TotalCount(), decoded.TotalCount())

	for _, q := range []float64{0.1, 0.5, 0.9} {
		orig, err1 := s.Quantile(q)
		dec, err2 := decoded.Quantile(q)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.InDelta(t, orig, dec, 1e-9, "quantile %v", q)
	}
}
