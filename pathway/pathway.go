// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package pathway implements the pathway model: an immutable identity for
// a node in a directed graph of service hops, derived by hashing service
// identity and edge tags, and checkpointed (advanced by one hop) as
// messages move through a pipeline.
package pathway

import (
	"context"
	"math/rand"
	"time"
)

// Pathway is an immutable triple identifying a node in the per-service-hop
// graph. The empty Pathway has all fields zero.
type Pathway struct {
	hash         uint64
	pathwayStart time.Time
	edgeStart    time.Time
}

// Hash returns the pathway's identity hash.
func (p Pathway) Hash() uint64 { return p.hash }

// PathwayStart returns the start time of the first node in the pathway.
func (p Pathway) PathwayStart() time.Time { return p.pathwayStart }

// EdgeStart returns the start time of the previous node.
func (p Pathway) EdgeStart() time.Time { return p.edgeStart }

// IsEmpty reports whether p is the zero pathway.
func (p Pathway) IsEmpty() bool { return p == (Pathway{}) }

// Merge picks one pathway among several converging at a fan-in point.
// Per spec this is intentionally not a real merge: merging distributions
// from multiple parents is out of scope, so one parent is sampled at
// random and propagated downstream. Callers must tolerate the
// non-determinism.
func Merge(pathways []Pathway) Pathway {
	switch len(pathways) {
	case 0:
		return Pathway{}
	case 1:
		return pathways[0]
	default:
		return pathways[rand.Intn(len(pathways))]
	}
}

// Point is emitted by Checkpoint and carries everything the aggregator
// needs to update its sketches and bucket placement for one hop.
type Point struct {
	EdgeTags       []string
	Hash           uint64
	ParentHash     uint64
	Timestamp      time.Time // equals the pathway's PathwayStart, not wall-clock
	PathwayLatency time.Duration
	EdgeLatency    time.Duration
	PayloadSize    int64 // -1 when not supplied
}

type contextKey struct{}

var activePathwayKey = contextKey{}

// ContextWithPathway returns a copy of ctx carrying p as the active
// pathway.
func ContextWithPathway(ctx context.Context, p Pathway) context.Context {
	return context.WithValue(ctx, activePathwayKey, p)
}

// FromContext returns the pathway stored in ctx, if any.
func FromContext(ctx context.Context) (p Pathway, ok bool) {
	if ctx == nil {
		return Pathway{}, false
	}
	v := ctx.Value(activePathwayKey)
	p, ok = v.(Pathway)
	return p, ok
}

// Checkpointer derives node hashes for one service identity (service, env,
// primary tag) and advances pathways through it. One Checkpointer is
// created per host application and shared across all produce/consume call
// sites.
type Checkpointer struct {
	service    string
	env        string
	primaryTag string
	hashCache  *hashCache
	timeSource func() time.Time
}

// NewCheckpointer builds a Checkpointer for the given service identity.
func NewCheckpointer(service, env, primaryTag string) *Checkpointer {
	return &Checkpointer{
		service:    service,
		env:        env,
		primaryTag: primaryTag,
		hashCache:  newHashCache(),
		timeSource: time.Now,
	}
}

func (c *Checkpointer) now() time.Time {
	if c.timeSource != nil {
		return c.timeSource()
	}
	return time.Now()
}

// CheckpointOption customizes a single Checkpoint call.
type CheckpointOption func(*checkpointParams)

type checkpointParams struct {
	payloadSize int64
}

// WithPayloadSize attaches the size in bytes of the message being
// checkpointed to the emitted Point's PayloadSize. The aggregator does not
// use this field; it is not sketched or sent on the wire.
func WithPayloadSize(n int64) CheckpointOption {
	return func(p *checkpointParams) { p.payloadSize = n }
}

// Checkpoint advances prev by one hop, deriving a new Pathway and emitting
// the Point describing that hop. prev may be the empty Pathway, in which
// case a fresh pathway is created first and checkpointed immediately
// (mirroring the "create on first checkpoint in a call context" lifecycle).
// tags are "key:value" strings; unrecognized keys are dropped from both
// the hash and the wire.
func (c *Checkpointer) Checkpoint(prev Pathway, tags []string, opts ...CheckpointOption) (Pathway, Point) {
	var params checkpointParams
	params.payloadSize = -1
	for _, opt := range opts {
		opt(&params)
	}

	now := c.now()
	if prev.IsEmpty() {
		prev = Pathway{hash: 0, pathwayStart: now, edgeStart: now}
	}

	hashableTags := filterAndRender(tags, IsHashableTag)
	edgeTags := filterAndRender(tags, IsEdgeTag)

	hash := c.hashCache.get(c.service, c.env, c.primaryTag, hashableTags, prev.hash)
	next := Pathway{
		hash:         hash,
		pathwayStart: prev.pathwayStart,
		edgeStart:    now,
	}
	point := Point{
		EdgeTags:       edgeTags,
		Hash:           hash,
		ParentHash:     prev.hash,
		Timestamp:      prev.pathwayStart,
		PathwayLatency: nonNegative(now.Sub(prev.pathwayStart)),
		EdgeLatency:    nonNegative(now.Sub(prev.edgeStart)),
		PayloadSize:    params.payloadSize,
	}
	return next, point
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
