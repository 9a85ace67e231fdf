// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package pathway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmpty(t *testing.T) {
	assert.True(t, Merge(nil).IsEmpty())
}

func TestMergeSingle(t *testing.T) {
	p := Pathway{hash: 7}
	assert.Equal(t, p, Merge([]Pathway{p}))
}

func TestMergeMultiplePicksOneOfThem(t *testing.T) {
	ps := []Pathway{{hash: 1}, {hash: 2}, {hash: 3}}
	got := Merge(ps)
	assert.Contains(t, ps, got)
}

func TestCheckpointFromEmptyPathway(t *testing.T) {
	c := NewCheckpointer("svc", "env", "")
	now := time.Unix(0, 1_700_000_000_000_000_000)
	c.timeSource = func() time.Time { return now }

	next, point := c.Checkpoint(Pathway{}, []string{"type:kafka", "topic:orders"})

	require.False(t, next.IsEmpty(), "checkpointed pathway should not be empty")
	assert.Equal(t, now, next.pathwayStart)
	assert.Zero(t, point.ParentHash, "first checkpoint should have no parent")
	assert.Zero(t, point.PathwayLatency)
	assert.Zero(t, point.EdgeLatency)
	assert.Equal(t, []string{"type:kafka", "topic:orders"}, point.EdgeTags, "edge tag order must be preserved")
}

func TestCheckpointPreservesPathwayStartAcrossHops(t *testing.T) {
	c := NewCheckpointer("svc", "env", "")
	t0 := time.Unix(0, 1_700_000_000_000_000_000)
	c.timeSource = func() time.Time { return t0 }
	first, _ := c.Checkpoint(Pathway{}, nil)

	t1 := t0.Add(5 * time.Second)
	c.timeSource = func() time.Time { return t1 }
	second, point := c.Checkpoint(first, []string{"direction:out"})

	assert.Equal(t, first.pathwayStart, second.pathwayStart, "pathwayStart must not change across hops")
	assert.Equal(t, t1, second.edgeStart)
	assert.Equal(t, first.pathwayStart, point.Timestamp, "point.Timestamp should equal pathway_start")
	assert.Equal(t, 5*time.Second, point.PathwayLatency)
	assert.Equal(t, first.hash, point.ParentHash)
}

func TestCheckpointDropsUnknownTagKeys(t *testing.T) {
	c := NewCheckpointer("svc", "env", "")
	_, point := c.Checkpoint(Pathway{}, []string{"bogus:value", "topic:orders"})
	assert.Equal(t, []string{"topic:orders"}, point.EdgeTags)
}

func TestContextRoundTrip(t *testing.T) {
	p := Pathway{hash: 99}
	ctx := ContextWithPathway(context.Background(), p)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok, "FromContext on a bare context should report not found")
}

func TestWithPayloadSize(t *testing.T) {
	c := NewCheckpointer("svc", "env", "")
	_, withSize := c.Checkpoint(Pathway{}, nil, WithPayloadSize(1024))
	assert.EqualValues(t, 1024, withSize.PayloadSize)

	_, withoutSize := c.Checkpoint(Pathway{}, nil)
	assert.EqualValues(t, -1, withoutSize.PayloadSize, "PayloadSize should default to -1 when unset")
}
