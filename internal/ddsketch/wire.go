// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package ddsketch

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for the embedded DDSketch protobuf message. There is no
// vendored copy of Datadog's own .proto in the retrieval pack this module
// was built from, so this is a self-consistent numbering rather than a
// byte-for-byte reproduction of Datadog's public schema; see DESIGN.md.
const (
	fieldMapping        = 1
	fieldPositiveValues = 2
	fieldNegativeValues = 3
	fieldZeroCount      = 4

	fieldMappingGamma       = 1
	fieldMappingIndexOffset = 2

	fieldStoreBinCounts   = 1
	fieldStoreIndexOffset = 2
)

// EncodeInto appends the wire-format protobuf encoding of the sketch to
// dst: { mapping: {gamma, indexOffset}, positiveValues: Store,
// negativeValues: Store, zeroCount: f64 }.
func (s *Sketch) EncodeInto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, fieldMapping, protowire.BytesType)
	dst = protowire.AppendBytes(dst, encodeMapping(nil, s.mapping))

	dst = protowire.AppendTag(dst, fieldPositiveValues, protowire.BytesType)
	dst = protowire.AppendBytes(dst, encodeStore(nil, s.positiveStore))

	dst = protowire.AppendTag(dst, fieldNegativeValues, protowire.BytesType)
	dst = protowire.AppendBytes(dst, encodeStore(nil, s.negativeStore))

	if s.zeroCount != 0 {
		dst = protowire.AppendTag(dst, fieldZeroCount, protowire.Fixed64Type)
		dst = protowire.AppendFixed64(dst, math.Float64bits(s.zeroCount))
	}
	return dst
}

func encodeMapping(dst []byte, m *Mapping) []byte {
	dst = protowire.AppendTag(dst, fieldMappingGamma, protowire.Fixed64Type)
	dst = protowire.AppendFixed64(dst, math.Float64bits(m.gamma))
	dst = protowire.AppendTag(dst, fieldMappingIndexOffset, protowire.Fixed64Type)
	dst = protowire.AppendFixed64(dst, math.Float64bits(m.indexOffset))
	return dst
}

func encodeStore(dst []byte, st *DenseStore) []byte {
	bins, indexOffset := st.WireBins()
	for _, v := range bins {
		dst = protowire.AppendTag(dst, fieldStoreBinCounts, protowire.Fixed64Type)
		dst = protowire.AppendFixed64(dst, math.Float64bits(v))
	}
	if indexOffset != 0 {
		dst = protowire.AppendTag(dst, fieldStoreIndexOffset, protowire.VarintType)
		dst = protowire.AppendVarint(dst, protowire.EncodeZigZag(int64(indexOffset)))
	}
	return dst
}

// DecodeSketch parses the wire format EncodeInto produces. It is used by
// tests to verify round-tripping; the production flush path only ever
// encodes.
func DecodeSketch(b []byte) (*Sketch, error) {
	s := &Sketch{positiveStore: NewDenseStore(), negativeStore: NewDenseStore()}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("ddsketch: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldMapping:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("ddsketch: bad mapping field: %w", protowire.ParseError(n))
			}
			m, err := decodeMapping(v)
			if err != nil {
				return nil, err
			}
			s.mapping = m
			b = b[n:]
		case fieldPositiveValues:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("ddsketch: bad positiveValues field: %w", protowire.ParseError(n))
			}
			if err := decodeStore(v, s.positiveStore); err != nil {
				return nil, err
			}
			b = b[n:]
		case fieldNegativeValues:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("ddsketch: bad negativeValues field: %w", protowire.ParseError(n))
			}
			if err := decodeStore(v, s.negativeStore); err != nil {
				return nil, err
			}
			b = b[n:]
		case fieldZeroCount:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("ddsketch: bad zeroCount field: %w", protowire.ParseError(n))
			}
			s.zeroCount = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("ddsketch: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return s, nil
}

func decodeMapping(b []byte) (*Mapping, error) {
	m := &Mapping{}
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("ddsketch: bad mapping tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, fmt.Errorf("ddsketch: bad mapping value: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldMappingGamma:
			m.gamma = math.Float64frombits(v)
		case fieldMappingIndexOffset:
			m.indexOffset = math.Float64frombits(v)
		}
	}
	if m.gamma != 0 {
		m.multiplier = 1 / math.Log(m.gamma)
		m.relativeAccuracy = (m.gamma - 1) / (m.gamma + 1)
	}
	return m, nil
}

func decodeStore(b []byte, st *DenseStore) error {
	var bins []float64
	var indexOffset int32
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("ddsketch: bad store tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldStoreBinCounts:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("ddsketch: bad binCounts value: %w", protowire.ParseError(n))
			}
			bins = append(bins, math.Float64frombits(v))
			b = b[n:]
		case fieldStoreIndexOffset:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("ddsketch: bad indexOffset value: %w", protowire.ParseError(n))
			}
			indexOffset = int32(protowire.DecodeZigZag(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("ddsketch: bad store field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	for i, v := range bins {
		if v == 0 {
			continue
		}
		st.AddWithCount(int(indexOffset)+i, v)
	}
	return nil
}
