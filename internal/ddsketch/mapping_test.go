// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package ddsketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingAccuracyBound(t *testing.T) {
	m, err := NewLogarithmicMapping(0.01)
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 0.5, 1e-3, 1e6, 123.456} {
		idx := m.Index(v)
		got := m.Value(idx)
		bound := m.RelativeAccuracy() * math.Max(math.Abs(got), math.Abs(v))
		diff := math.Abs(got - v)
		assert.LessOrEqualf(t, diff, bound+1e-9, "value(index(%v))=%v exceeds accuracy bound %v", v, got, bound)
	}
}

func TestMappingInvalidAccuracy(t *testing.T) {
	_, err := NewLogarithmicMapping(0)
	assert.Error(t, err, "expected error for alpha=0")

	_, err = NewLogarithmicMapping(1)
	assert.Error(t, err, "expected error for alpha=1")

	_, err = NewLogarithmicMapping(-0.1)
	assert.Error(t, err, "expected error for negative alpha")
}

func TestMappingEquals(t *testing.T) {
	a, _ := NewLogarithmicMapping(0.01)
	b, _ := NewLogarithmicMapping(0.01)
	c, _ := NewLogarithmicMapping(0.02)
	assert.True(t, a.Equals(b), "mappings built from the same accuracy should be equal")
	assert.False(t, a.Equals(c), "mappings built from different accuracies should not be equal")
	assert.False(t, a.Equals(nil), "mapping should never equal nil")
}

func TestMappingIndexFloorsTowardNegativeInfinity(t *testing.T) {
	m, _ := NewLogarithmicMapping(0.01)
	// For values just below 1, ln(v) is a small negative number; the index
	// must floor toward -inf, not truncate toward zero.
	idx1 := m.Index(0.999999)
	idx2 := m.Index(1.0)
	assert.Less(t, idx1, idx2)
}
