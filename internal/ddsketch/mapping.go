// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package ddsketch implements the DDSketch quantile sketch: a logarithmic
// index mapping over a dense, dynamically resized bin store, partitioned
// into negative/zero/positive sub-stores. It is the latency-distribution
// primitive the aggregator keeps one of per (pathway-hash, bucket) group.
package ddsketch

import (
	"fmt"
	"math"
)

// Mapping maps positive reals onto signed integer bin indices with a
// bounded relative accuracy. It is the logarithmic mapping described for
// DDSketch: index(v) = floor(log_gamma(v)).
type Mapping struct {
	relativeAccuracy float64
	gamma            float64
	multiplier       float64 // 1 / ln(gamma)
	indexOffset      float64
}

// NewLogarithmicMapping builds a Mapping for the given target relative
// accuracy alpha, which must be in (0, 1).
func NewLogarithmicMapping(alpha float64) (*Mapping, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("ddsketch: relative accuracy must be in (0,1), got %v", alpha)
	}
	gamma := (1 + alpha) / (1 - alpha)
	return &Mapping{
		relativeAccuracy: alpha,
		gamma:            gamma,
		multiplier:       1 / math.Log(gamma),
		indexOffset:      0,
	}, nil
}

// RelativeAccuracy returns the mapping's target accuracy.
func (m *Mapping) RelativeAccuracy() float64 { return m.relativeAccuracy }

// Index returns the bin index for v, which MUST be strictly positive.
func (m *Mapping) Index(v float64) int {
	x := math.Log(v)*m.multiplier + m.indexOffset
	idx := int(x)
	if float64(idx) > x {
		// floor toward negative infinity: math truncation rounds toward
		// zero, so negative non-integer results need one more step down.
		idx--
	}
	return idx
}

// LowerBound returns the lower bound of the bucket for index i.
func (m *Mapping) LowerBound(i int) float64 {
	return math.Exp((float64(i) - m.indexOffset) / m.multiplier)
}

// Value returns the representative value DDSketch reports for bucket i:
// the bucket's lower bound scaled by (1 + effective accuracy), which sits
// at the bucket's relative-accuracy-preserving midpoint.
func (m *Mapping) Value(i int) float64 {
	return m.LowerBound(i) * (1 + m.alphaEff())
}

func (m *Mapping) alphaEff() float64 {
	return 1 - 2/(1+m.gamma)
}

// Equals reports whether m and other describe the same mapping, within a
// 1e-12 relative tolerance on gamma and indexOffset.
func (m *Mapping) Equals(other *Mapping) bool {
	if other == nil {
		return false
	}
	return closeEnough(m.gamma, other.gamma) && closeEnough(m.indexOffset, other.indexOffset)
}

func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	tol := 1e-12 * math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tol
}
