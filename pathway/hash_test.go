// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package pathway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeHashGoldenVectors(t *testing.T) {
	cases := []struct {
		name     string
		hashable []string
		wantHash uint64
	}{
		{"no tags", nil, 2071821778175304604},
		{"unknown key dropped", []string{"edge:1"}, 2071821778175304604},
		{"hashable type tag", []string{"type:kafka"}, 9272613839978655432},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := nodeHash("service-1", "env", "d:1", c.hashable)
			assert.Equal(t, c.wantHash, got)
		})
	}
}

func TestNodeHashOrderIndependent(t *testing.T) {
	a := nodeHash("svc", "env", "", []string{"type:kafka", "topic:orders"})
	b := nodeHash("svc", "env", "", []string{"topic:orders", "type:kafka"})
	assert.Equal(t, a, b, "nodeHash should be order-independent over its tag bag")
}

func TestPathwayHashGoldenVectors(t *testing.T) {
	cases := []struct {
		node, parent uint64
		want         uint64
	}{
		{0, 0, 9808874869469701221},
		{2071821778175304604, 0, 17210443572488294574},
		{2071821778175304604, 17210443572488294574, 2003974475228685984},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, pathwayHash(c.node, c.parent))
	}
}

func TestPathwayHashNonCommutative(t *testing.T) {
	a := pathwayHash(2071821778175304604, 17210443572488294574)
	b := pathwayHash(17210443572488294574, 2071821778175304604)
	assert.NotEqual(t, a, b, "pathwayHash(a,b) should differ from pathwayHash(b,a)")
}

func TestHashCacheEvictsAtCapacity(t *testing.T) {
	c := newHashCache()
	for i := 0; i < maxHashCacheSize+10; i++ {
		tag := Tag{Key: "topic", Value: randTopic(i)}
		c.get("svc", "env", "", []string{tag.Render()}, 0)
	}
	assert.LessOrEqual(t, len(c.m), maxHashCacheSize)
}

func randTopic(i int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 8)
	for j := range b {
		b[j] = digits[(i>>(j*2))%len(digits)]
	}
	return string(b)
}
