// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package pathway

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"time"

	"github.com/pathwire/pathwire-go/internal/varint"
)

// Header keys carrying the in-band pathway context. HeaderBinary is
// preferred; HeaderBase64 exists for transports that can't carry raw
// binary values (most message-bus headers can, but some HTTP-adjacent
// ones can't).
const (
	HeaderBinary = "pw-pathway-ctx"
	HeaderBase64 = "pw-pathway-ctx-b64"
)

// Encode produces the 20-byte binary wire form of p: 8 bytes little-endian
// hash, followed by two varint-zigzag millisecond timestamps.
func (p Pathway) Encode() []byte {
	b := make([]byte, 8, 20)
	binary.LittleEndian.PutUint64(b, p.hash)
	b = varint.EncodeMillis(b, p.pathwayStart.UnixNano())
	b = varint.EncodeMillis(b, p.edgeStart.UnixNano())
	return b
}

// EncodeBase64 is Encode's output, base64-std-encoded.
func (p Pathway) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(p.Encode())
}

// Decode parses the binary wire form produced by Encode. Malformed or
// truncated input yields the empty pathway and false, never an error:
// per the wire-decode error taxonomy, callers should proceed with a fresh
// pathway rather than fail the call.
func Decode(data []byte) (Pathway, bool) {
	if len(data) < 8 {
		return Pathway{}, false
	}
	hash := binary.LittleEndian.Uint64(data)
	rest := data[8:]
	pathwayStartMs, n, err := varint.Decode(rest)
	if err != nil {
		return Pathway{}, false
	}
	rest = rest[n:]
	edgeStartMs, _, err := varint.Decode(rest)
	if err != nil {
		return Pathway{}, false
	}
	return Pathway{
		hash:         hash,
		pathwayStart: time.Unix(0, pathwayStartMs*1_000_000),
		edgeStart:    time.Unix(0, edgeStartMs*1_000_000),
	}, true
}

// DecodeBase64 base64-decodes str and parses it as Decode does.
func DecodeBase64(str string) (Pathway, bool) {
	data, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return Pathway{}, false
	}
	return Decode(data)
}

// Inject removes any existing pathway header entries (case-insensitively)
// from headers and sets HeaderBinary to p's binary encoding.
func Inject(headers map[string][]byte, p Pathway) {
	removeHeaderCI(headers, HeaderBinary)
	removeHeaderCI(headers, HeaderBase64)
	headers[HeaderBinary] = p.Encode()
}

func removeHeaderCI(headers map[string][]byte, name string) {
	for k := range headers {
		if strings.EqualFold(k, name) {
			delete(headers, k)
		}
	}
}

// Extract decodes a pathway from headers, preferring the binary form when
// both are present. ok is false if neither header is present or both fail
// to decode; callers proceed with a fresh (empty) pathway in that case.
func Extract(headers map[string][]byte) (Pathway, bool) {
	var binVal, b64Val []byte
	var haveBin, haveB64 bool
	for k, v := range headers {
		switch {
		case strings.EqualFold(k, HeaderBinary):
			binVal, haveBin = v, true
		case strings.EqualFold(k, HeaderBase64):
			b64Val, haveB64 = v, true
		}
	}
	if haveBin {
		if p, ok := Decode(binVal); ok {
			return p, true
		}
	}
	if haveB64 {
		if p, ok := DecodeBase64(string(b64Val)); ok {
			return p, true
		}
	}
	return Pathway{}, false
}
