// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package ddsketch

// Sketch is a DDSketch: a mapping shared between a positive and a
// negative dense store, plus a separate zero-count accumulator.
type Sketch struct {
	mapping        *Mapping
	positiveStore  *DenseStore
	negativeStore  *DenseStore
	zeroCount      float64
}

// DefaultRelativeAccuracy is the accuracy used when the aggregator
// constructs the pathway- and edge-latency sketches of each group.
const DefaultRelativeAccuracy = 0.01

// NewSketch builds an empty sketch using the default relative accuracy.
func NewSketch() *Sketch {
	m, err := NewLogarithmicMapping(DefaultRelativeAccuracy)
	if err != nil {
		// DefaultRelativeAccuracy is a compile-time constant in (0,1); this
		// can never happen.
		panic(err)
	}
	return &Sketch{
		mapping:       m,
		positiveStore: NewDenseStore(),
		negativeStore: NewDenseStore(),
	}
}

// Add inserts v with count 1. v may be any real number.
func (s *Sketch) Add(v float64) error {
	return s.AddWithCount(v, 1)
}

// AddWithCount inserts v with count c, which must be non-negative.
func (s *Sketch) AddWithCount(v float64, c float64) error {
	if c < 0 {
		return errNegativeCount
	}
	switch {
	case v == 0:
		s.zeroCount += c
	case v > 0:
		s.positiveStore.AddWithCount(s.mapping.Index(v), c)
	default:
		s.negativeStore.AddWithCount(s.mapping.Index(-v), c)
	}
	return nil
}

// TotalCount returns zeroCount + positive + negative counts (invariant I3).
func (s *Sketch) TotalCount() float64 {
	return s.zeroCount + s.positiveStore.TotalCount() + s.negativeStore.TotalCount()
}

// IsEmpty reports whether anything has been added.
func (s *Sketch) IsEmpty() bool {
	return s.TotalCount() == 0
}

// Quantile returns the value at quantile q in [0,1]. Returns an error if
// the sketch is empty or q is out of range.
func (s *Sketch) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, errQuantileRange
	}
	n := s.TotalCount()
	if n == 0 {
		return 0, errEmptySketch
	}
	rank := q * (n - 1)

	negCount := s.negativeStore.TotalCount()
	if rank < negCount {
		// Negative partition is scanned from its high (largest-magnitude,
		// most negative) end, so the rank we look for is counted from that
		// end too.
		revRank := negCount - 1 - rank
		key := s.negativeStore.KeyAtRank(revRank)
		return -s.mapping.Value(key), nil
	}
	rank -= negCount

	if rank < s.zeroCount {
		return 0, nil
	}
	rank -= s.zeroCount

	key := s.positiveStore.KeyAtRank(rank)
	return s.mapping.Value(key), nil
}

var errEmptySketch = newSketchError("quantile on empty sketch is undefined")

type sketchError string

func (e sketchError) Error() string { return string(e) }

func newSketchError(msg string) error { return sketchError(msg) }
