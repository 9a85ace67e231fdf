// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwire/pathwire-go/config"
	"github.com/pathwire/pathwire-go/internal/statsd"
	"github.com/pathwire/pathwire-go/pathway"
)

func newTestAggregator() *Aggregator {
	return New(&config.Config{AgentEnabled: true, Service: "svc", Env: "env"}, statsd.NoOpClient{})
}

func TestBucketPlacementGoldenVector(t *testing.T) {
	a := newTestAggregator()
	p := point{
		hash:             1,
		timestampNs:      1_678_471_420_000_000_000,
		pathwayLatencyNs: 10_000_000_000,
	}
	a.addPoint(p)

	wantCurrentKey := int64(1_678_471_420_000_000_000)
	wantOriginKey := int64(1_678_471_410_000_000_000)

	cb, ok := a.currentBuckets[wantCurrentKey]
	require.True(t, ok, "no current bucket at key %d; buckets: %v", wantCurrentKey, keysOf(a.currentBuckets))
	assert.Equal(t, uint64(wantCurrentKey), cb.start)
	assert.Equal(t, uint64(bucketDuration), cb.duration)

	ob, ok := a.originBuckets[wantOriginKey]
	require.True(t, ok, "no origin bucket at key %d; buckets: %v", wantOriginKey, keysOf(a.originBuckets))
	assert.Equal(t, uint64(wantOriginKey), ob.start)
	assert.Equal(t, uint64(bucketDuration), ob.duration)
}

func keysOf(m map[int64]*bucket) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestOffsetUpsertGoldenVector(t *testing.T) {
	a := newTestAggregator()
	o := Offset{
		Value:     13,
		Timestamp: time.Unix(0, 1_687_986_447_538_450_340),
		Type:      OffsetTypeCommit,
		Tags: map[string]string{
			"consumer_group": "test-group",
			"partition":      "0",
			"topic":          "test-topic",
			"type":           "kafka_commit",
		},
	}
	a.addOffset(o)
	a.addOffset(o)

	btime := alignTs(o.Timestamp.UnixNano())
	b, ok := a.currentBuckets[btime]
	require.True(t, ok, "no bucket at key %d", btime)
	assert.Len(t, b.commitOffsets, 1)
}

func TestOffsetUpsertDifferentTagsDoesNotCollide(t *testing.T) {
	a := newTestAggregator()
	base := Offset{
		Value:     1,
		Timestamp: time.Unix(0, 1_687_986_447_538_450_340),
		Type:      OffsetTypeProduce,
		Tags:      map[string]string{"topic": "a", "partition": "0"},
	}
	other := base
	other.Tags = map[string]string{"topic": "a", "partition": "1"}

	a.addOffset(base)
	a.addOffset(other)

	btime := alignTs(base.Timestamp.UnixNano())
	b := a.currentBuckets[btime]
	assert.Len(t, b.produceOffsets, 2, "distinct partitions must not collide")
}

func TestExportSortsEdgeTagsByKey(t *testing.T) {
	a := newTestAggregator()
	a.addPoint(point{
		hash:        1,
		timestampNs: 1_678_471_420_000_000_000,
		edgeTags:    []string{"type:kafka", "direction:out", "group:g", "topic:orders", "partition:0"},
	})

	b := a.currentBuckets[alignTs(1_678_471_420_000_000_000)]
	exported := b.export(timestampTypeCurrent)
	require.Len(t, exported.Stats, 1)
	assert.Equal(t,
		[]string{"direction:out", "group:g", "partition:0", "topic:orders", "type:kafka"},
		exported.Stats[0].EdgeTags,
		"wire EdgeTags must be sorted by key regardless of checkpoint call order",
	)
}

func TestEmptyPayloadNeverFlushed(t *testing.T) {
	a := newTestAggregator()
	called := false
	a.transport = fakeTransport{fn: func(*StatsPayload) error { called = true; return nil }}
	a.sendToAgent(StatsPayload{})
	assert.False(t, called, "sendToAgent must not invoke the transport for an empty payload")
}

func TestFlushRemovesOnlyElapsedBuckets(t *testing.T) {
	a := newTestAggregator()
	now := time.Unix(0, 2_000_000_000_000)
	a.addPoint(point{hash: 1, timestampNs: now.UnixNano()})

	// Bucket's window hasn't elapsed yet relative to "now" itself.
	payload := a.flush(now)
	assert.Empty(t, payload.Stats, "expected no flushed buckets yet")
	assert.NotEmpty(t, a.currentBuckets, "bucket should not have been removed before its window elapsed")

	later := now.Add(time.Duration(bucketDuration) * time.Nanosecond)
	payload = a.flush(later)
	assert.NotEmpty(t, payload.Stats, "expected the bucket to flush once its window elapsed")
	assert.Empty(t, a.currentBuckets, "flushed bucket should have been removed from state")
}

func TestDisabledAggregatorDiscardsAddCalls(t *testing.T) {
	a := New(&config.Config{AgentEnabled: false}, nil)
	a.Start() // must be a no-op
	a.Add(pathway.Point{})
	a.AddOffset(Offset{})
	a.Flush()
	a.Stop()
}

type fakeTransport struct {
	fn func(*StatsPayload) error
}

func (f fakeTransport) sendPipelineStats(p *StatsPayload) error { return f.fn(p) }
