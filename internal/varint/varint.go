// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package varint implements the zigzag + LEB128 varint codec the
// propagator uses to pack millisecond timestamps into the in-band
// pathway header. Values in the representable range of real-world
// timestamps (roughly ±2^35 ms) encode to exactly six bytes.
package varint

import "errors"

// ErrTruncated is returned when decoding runs off the end of the buffer
// before finding a terminating byte.
var ErrTruncated = errors.New("varint: truncated input")

func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagDecode(z uint64) int64 {
	return int64(z>>1) ^ -int64(z&1)
}

// EncodeInto appends the zigzag-varint encoding of n to dst and returns the
// extended slice.
func EncodeInto(dst []byte, n int64) []byte {
	z := zigzagEncode(n)
	for z >= 0x80 {
		dst = append(dst, byte(z)|0x80)
		z >>= 7
	}
	return append(dst, byte(z))
}

// Decode reads one zigzag-varint from src, returning the value and the
// number of bytes consumed.
func Decode(src []byte) (int64, int, error) {
	var z uint64
	var shift uint
	for i, b := range src {
		z |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return zigzagDecode(z), i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			break
		}
	}
	return 0, 0, ErrTruncated
}

// EncodeMillis encodes a nanosecond timestamp as the varint-zigzag
// millisecond value used on the wire.
func EncodeMillis(dst []byte, ns int64) []byte {
	return EncodeInto(dst, ns/1_000_000)
}

// DecodeMillis decodes a varint-zigzag millisecond value back into
// nanoseconds, along with the number of bytes consumed.
func DecodeMillis(src []byte) (int64, int, error) {
	ms, n, err := Decode(src)
	if err != nil {
		return 0, 0, err
	}
	return ms * 1_000_000, n, nil
}
