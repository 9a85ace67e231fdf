// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package pathway

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
)

// maxHashCacheSize bounds the node-hash memoization cache. High node-hash
// cardinality shouldn't happen in practice given the limited set of
// topics/exchanges any one service talks to.
const maxHashCacheSize = 1000

// nodeHash computes the FNV-1 64-bit hash of service ∥ env ∥ primaryTag ∥
// rendered-hashable-tags, with tags sorted ascending by key and rendered
// "k:v". Tags that do not parse or whose key is not a hashable-tag key are
// dropped before sorting.
func nodeHash(service, env, primaryTag string, hashableTags []string) uint64 {
	sorted := make([]string, 0, len(hashableTags))
	for _, t := range hashableTags {
		if tag, ok := ParseTag(t); ok && IsHashableTag(tag.Key) {
			sorted = append(sorted, t)
		}
	}
	sort.Strings(sorted)

	h := fnv.New64()
	h.Write([]byte(service))
	h.Write([]byte(env))
	h.Write([]byte(primaryTag))
	for _, t := range sorted {
		h.Write([]byte(t))
	}
	return h.Sum64()
}

// pathwayHash combines a node hash with its parent's pathway hash:
// FNV-1(encode_u64_le(nodeHash) ++ encode_u64_le(parentHash)).
func pathwayHash(nodeHash, parentHash uint64) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], nodeHash)
	binary.LittleEndian.PutUint64(b[8:16], parentHash)
	h := fnv.New64()
	h.Write(b[:])
	return h.Sum64()
}

// hashCache memoizes nodeHash/pathwayHash results keyed by the rendered
// edge-tag string plus the parent hash's raw bytes. It never changes the
// hash produced for a given input; it only avoids recomputing FNV over the
// same inputs repeatedly on a hot path.
type hashCache struct {
	mu sync.RWMutex
	m  map[string]uint64
}

func newHashCache() *hashCache {
	return &hashCache{m: make(map[string]uint64)}
}

func cacheKey(hashableTags []string, parentHash uint64) string {
	var s strings.Builder
	n := 8
	for _, t := range hashableTags {
		n += len(t)
	}
	s.Grow(n)
	for _, t := range hashableTags {
		s.WriteString(t)
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], parentHash)
	s.Write(b[:])
	return s.String()
}

func (c *hashCache) get(service, env, primaryTag string, hashableTags []string, parentHash uint64) uint64 {
	key := cacheKey(hashableTags, parentHash)
	c.mu.RLock()
	if h, ok := c.m[key]; ok {
		c.mu.RUnlock()
		return h
	}
	c.mu.RUnlock()

	h := pathwayHash(nodeHash(service, env, primaryTag, hashableTags), parentHash)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.m) >= maxHashCacheSize {
		c.m = make(map[string]uint64)
	}
	c.m[key] = h
	return h
}
