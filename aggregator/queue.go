// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"sync/atomic"
	"time"
)

// queueSize is the ring buffer capacity. Once the writer laps the reader by
// this many slots, the oldest unread entries are silently overwritten.
const queueSize = 10000

type itemKind int

const (
	itemKindPoint itemKind = iota
	itemKindOffset
)

// point is the internal, nanosecond-timestamped shape of a checkpoint
// enqueued for aggregation. It is derived from a pathway.Point at the Add
// call site.
type point struct {
	edgeTags         []string
	hash             uint64
	parentHash       uint64
	timestampNs      int64
	pathwayLatencyNs int64
	edgeLatencyNs    int64
}

// queueItem is the tagged union pushed through the ring buffer: either a
// latency point or a Kafka offset, never both.
type queueItem struct {
	kind     itemKind
	point    point
	offset   Offset
	queuePos int64
}

// fastQueue is a many-producer, single-consumer lock-free ring buffer: any goroutine may push, only the aggregator's own
// goroutine pops. Each element is read at most once. If the reader falls
// queueSize entries behind the writer, the reader gives up catching up and
// the oldest unread entries are dropped; there is no guarantee which ones.
type fastQueue struct {
	elements [queueSize]atomic.Pointer[queueItem]
	writePos atomic.Int64
	readPos  atomic.Int64
}

func newFastQueue() *fastQueue {
	return &fastQueue{}
}

// push enqueues item. dropped reports whether the writer has lapped the
// reader, i.e. the queue is over capacity and the oldest entries are being
// overwritten before they were ever read.
func (q *fastQueue) push(item *queueItem) (dropped bool) {
	nextPos := q.writePos.Add(1)
	l := nextPos - q.readPos.Load()
	item.queuePos = nextPos - 1
	q.elements[(nextPos-1)%queueSize].Store(item)
	return l > queueSize
}

// pop returns the next unread item, or nil if the writer hasn't caught up
// yet (queue empty, or the in-flight write for this slot hasn't landed).
func (q *fastQueue) pop() *queueItem {
	writePos := q.writePos.Load()
	readPos := q.readPos.Load()
	if writePos <= readPos {
		return nil
	}
	loaded := q.elements[readPos%queueSize].Load()
	if loaded == nil || loaded.queuePos < readPos {
		return nil
	}
	// If the writer has lapped the reader, loaded is newer than readPos:
	// skip ahead past it so the overwritten range is dropped, not re-read.
	q.readPos.Store(loaded.queuePos + 1)
	return loaded
}

// poll is pop with a bounded busy-wait.
func (q *fastQueue) poll(timeout time.Duration) *queueItem {
	deadline := time.Now().Add(timeout)
	for {
		if p := q.pop(); p != nil {
			return p
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}
