// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/pathwire/pathwire-go/internal/ddsketch"
	"github.com/pathwire/pathwire-go/internal/log"
)

// bucketDuration is the width of one aggregation window (D in the design).
const bucketDuration = 10_000_000_000 // 10s, in nanoseconds

// OffsetType distinguishes the two kinds of Kafka offset an integration can
// report.
type OffsetType int

const (
	OffsetTypeProduce OffsetType = iota
	OffsetTypeCommit
)

// Offset is a single Kafka offset observation, upserted into whichever
// current-bucket is aligned to its timestamp.
type Offset struct {
	Timestamp time.Time
	Type      OffsetType
	Value     int64
	Tags      map[string]string
}

func (o Offset) tagKey() string {
	keys := make([]string, 0, len(o.Tags))
	for k := range o.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := ""
	for _, k := range keys {
		key += k + "=" + o.Tags[k] + ","
	}
	return key
}

func (o Offset) renderedTags() []string {
	keys := make([]string, 0, len(o.Tags))
	for k := range o.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s:%s", k, o.Tags[k]))
	}
	return out
}

type offsetEntry struct {
	tags  []string
	value int64
}

// group accumulates the two latency sketches for one pathway hash within a
// single bucket.
type group struct {
	edgeTags       []string
	hash           uint64
	parentHash     uint64
	pathwayLatency *ddsketch.Sketch
	edgeLatency    *ddsketch.Sketch
}

// newGroup sorts its own copy of edgeTags by key, since the wire
// StatsPoint.EdgeTags contract requires a sorted order while the
// pathway.Point these are derived from deliberately keeps them in call
// order.
func newGroup(edgeTags []string, hash, parentHash uint64) *group {
	sorted := append([]string(nil), edgeTags...)
	sort.Strings(sorted)
	return &group{
		edgeTags:       sorted,
		hash:           hash,
		parentHash:     parentHash,
		pathwayLatency: ddsketch.NewSketch(),
		edgeLatency:    ddsketch.NewSketch(),
	}
}

type bucket struct {
	groups         map[uint64]*group
	produceOffsets map[string]offsetEntry
	commitOffsets  map[string]offsetEntry
	start          uint64
	duration       uint64
}

func newBucket(start uint64) *bucket {
	return &bucket{
		groups:         make(map[uint64]*group),
		produceOffsets: make(map[string]offsetEntry),
		commitOffsets:  make(map[string]offsetEntry),
		start:          start,
		duration:       bucketDuration,
	}
}

func (b *bucket) addPoint(p point) {
	g, ok := b.groups[p.hash]
	if !ok {
		g = newGroup(p.edgeTags, p.hash, p.parentHash)
		b.groups[p.hash] = g
	}
	if err := g.pathwayLatency.Add(nonNegativeSeconds(p.pathwayLatencyNs)); err != nil {
		log.Error("failed to add pathway latency: %v", err)
	}
	if err := g.edgeLatency.Add(nonNegativeSeconds(p.edgeLatencyNs)); err != nil {
		log.Error("failed to add edge latency: %v", err)
	}
}

func (b *bucket) addOffset(o Offset) {
	entry := offsetEntry{tags: o.renderedTags(), value: o.Value}
	switch o.Type {
	case OffsetTypeProduce:
		b.produceOffsets[o.tagKey()] = entry
	case OffsetTypeCommit:
		b.commitOffsets[o.tagKey()] = entry
	}
}

// export converts the bucket into its wire representation, labelling every
// contained point with timestampType ("current" or "origin").
func (b *bucket) export(timestampType string) StatsBucket {
	stats := make([]StatsPoint, 0, len(b.groups))
	for _, g := range b.groups {
		pathwayLatency := g.pathwayLatency.EncodeInto(nil)
		edgeLatency := g.edgeLatency.EncodeInto(nil)
		stats = append(stats, StatsPoint{
			EdgeTags:       g.edgeTags,
			Hash:           g.hash,
			ParentHash:     g.parentHash,
			PathwayLatency: pathwayLatency,
			EdgeLatency:    edgeLatency,
			TimestampType:  timestampType,
		})
	}
	backlogs := make([]Backlog, 0, len(b.produceOffsets)+len(b.commitOffsets))
	for _, entry := range b.produceOffsets {
		backlogs = append(backlogs, Backlog{Tags: entry.tags, Value: entry.value})
	}
	for _, entry := range b.commitOffsets {
		backlogs = append(backlogs, Backlog{Tags: entry.tags, Value: entry.value})
	}
	return StatsBucket{
		Start:    b.start,
		Duration: b.duration,
		Stats:    stats,
		Backlogs: backlogs,
	}
}

func nonNegativeSeconds(ns int64) float64 {
	v := float64(ns) / 1e9
	if v < 0 {
		return 0
	}
	return v
}

// alignTs truncates ts down to the start of the bucket it falls in.
func alignTs(ts int64) int64 {
	return ts - ts%bucketDuration
}
