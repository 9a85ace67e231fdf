// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package aggregator implements the long-lived actor that buckets
// checkpointed pathway points into ten-second windows, maintains a latency
// sketch per (hash, window), and periodically flushes them to the agent.
package aggregator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pathwire/pathwire-go/config"
	"github.com/pathwire/pathwire-go/internal/log"
	"github.com/pathwire/pathwire-go/internal/statsd"
	"github.com/pathwire/pathwire-go/pathway"
)

const tracerVersion = "0.1.0"
const lang = "Go"

type aggregatorStats struct {
	payloadsIn      int64
	flushedPayloads int64
	flushedBuckets  int64
	flushErrors     int64
	dropped         int64
}

// Aggregator is the single process-wide actor that owns bucket state. The
// host application constructs exactly one and wires it into its
// integrations; it is not a global singleton.
type Aggregator struct {
	in                   *fastQueue
	currentBuckets       map[int64]*bucket
	originBuckets        map[int64]*bucket
	wg                   sync.WaitGroup
	stopped              atomic.Uint64
	stop                 chan struct{}
	flushRequest         chan chan<- struct{}
	stats                aggregatorStats
	transport            transport
	statsdClient         statsd.Client
	service, env         string
	primaryTag           string
	disabled             bool
	timeSource           func() time.Time
}

// New builds an Aggregator from cfg. If cfg.AgentEnabled is false, the
// returned Aggregator is permanently disabled: Start is a no-op and
// Add/AddOffset silently succeed without ever touching bucket state.
func New(cfg *config.Config, statsdClient statsd.Client) *Aggregator {
	if statsdClient == nil {
		statsdClient = statsd.NoOpClient{}
	}
	if cfg == nil || !cfg.AgentEnabled {
		return &Aggregator{disabled: true, statsdClient: statsdClient}
	}
	a := &Aggregator{
		currentBuckets: make(map[int64]*bucket),
		originBuckets:  make(map[int64]*bucket),
		in:             newFastQueue(),
		statsdClient:   statsdClient,
		service:        cfg.Service,
		env:            cfg.Env,
		primaryTag:     cfg.PrimaryTag,
		transport:      newHTTPTransport(cfg.AgentHost, cfg.AgentPort, nil, discoverContainerID()),
		timeSource:     time.Now,
	}
	a.stopped.Store(1)
	return a
}

func (a *Aggregator) now() time.Time {
	if a.timeSource != nil {
		return a.timeSource()
	}
	return time.Now()
}

// Start launches the actor's event loop goroutine. No-op on a disabled
// Aggregator.
func (a *Aggregator) Start() {
	if a.disabled {
		return
	}
	if a.stopped.Swap(0) == 0 {
		log.Warn("(*Aggregator).Start called more than once; this is likely a programming error")
		return
	}
	a.stop = make(chan struct{})
	a.flushRequest = make(chan chan<- struct{})
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.reportStats()
	}()
	go func() {
		defer a.wg.Done()
		tick := time.NewTicker(bucketDuration * time.Nanosecond)
		defer tick.Stop()
		a.run(tick.C)
	}()
}

// Stop forces one final synchronous flush of every bucket, current and
// past alike, then halts the event loop and waits for it to exit.
func (a *Aggregator) Stop() {
	if a.disabled {
		return
	}
	if a.stopped.Swap(1) > 0 {
		return
	}
	close(a.stop)
	a.wg.Wait()
}

// Flush triggers an out-of-band flush and waits for it to complete.
func (a *Aggregator) Flush() {
	if a.disabled || a.stopped.Load() > 0 {
		return
	}
	done := make(chan struct{})
	select {
	case a.flushRequest <- done:
		<-done
	case <-a.stop:
	}
}

// Add enqueues one checkpoint for aggregation. Never blocks: if the ring
// buffer is saturated, the oldest unread entry is overwritten and the drop
// is counted.
func (a *Aggregator) Add(p pathway.Point) {
	if a.disabled {
		return
	}
	item := &queueItem{kind: itemKindPoint, point: point{
		edgeTags:         p.EdgeTags,
		hash:             p.Hash,
		parentHash:       p.ParentHash,
		timestampNs:      p.Timestamp.UnixNano(),
		pathwayLatencyNs: int64(p.PathwayLatency),
		edgeLatencyNs:    int64(p.EdgeLatency),
	}}
	if a.in.push(item) {
		atomic.AddInt64(&a.stats.dropped, 1)
	}
}

// AddOffset enqueues one Kafka offset observation for upsert into the
// current bucket aligned to its timestamp.
func (a *Aggregator) AddOffset(o Offset) {
	if a.disabled {
		return
	}
	item := &queueItem{kind: itemKindOffset, offset: o}
	if a.in.push(item) {
		atomic.AddInt64(&a.stats.dropped, 1)
	}
}

func (a *Aggregator) getBucket(btime int64, buckets map[int64]*bucket) *bucket {
	b, ok := buckets[btime]
	if !ok {
		b = newBucket(uint64(btime))
		buckets[btime] = b
	}
	return b
}

func (a *Aggregator) addPoint(p point) {
	currentBtime := alignTs(p.timestampNs)
	a.getBucket(currentBtime, a.currentBuckets).addPoint(p)

	originTs := p.timestampNs - p.pathwayLatencyNs
	originBtime := alignTs(originTs)
	a.getBucket(originBtime, a.originBuckets).addPoint(p)
}

func (a *Aggregator) addOffset(o Offset) {
	btime := alignTs(o.Timestamp.UnixNano())
	a.getBucket(btime, a.currentBuckets).addOffset(o)
}

func (a *Aggregator) processItem(item *queueItem) {
	atomic.AddInt64(&a.stats.payloadsIn, 1)
	switch item.kind {
	case itemKindPoint:
		a.addPoint(item.point)
	case itemKindOffset:
		a.addOffset(item.offset)
	}
}

func (a *Aggregator) drainQueue() {
	for {
		item := a.in.pop()
		if item == nil {
			return
		}
		a.processItem(item)
	}
}

// run is the actor's single-goroutine event loop. Its select arms mirror
// the reference processor: a timer tick and an explicit flush request take
// priority; the default arm drains one queue item per iteration, or sleeps
// briefly when the queue is momentarily empty.
func (a *Aggregator) run(tick <-chan time.Time) {
	for {
		select {
		case <-a.stop:
			a.drainQueue()
			a.sendToAgent(a.flush(a.now().Add(10 * bucketDuration * time.Nanosecond)))
			return
		case now := <-tick:
			a.sendToAgent(a.flush(now))
		case done := <-a.flushRequest:
			a.drainQueue()
			a.sendToAgent(a.flush(a.now().Add(10 * bucketDuration * time.Nanosecond)))
			close(done)
		default:
			item := a.in.pop()
			if item == nil {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			a.processItem(item)
		}
	}
}

func (a *Aggregator) reportStats() {
	tick := time.NewTicker(10 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-tick.C:
		}
		a.statsdClient.Count("aggregator.payloads_in", atomic.SwapInt64(&a.stats.payloadsIn, 0), nil, 1)
		a.statsdClient.Count("aggregator.flushed_payloads", atomic.SwapInt64(&a.stats.flushedPayloads, 0), nil, 1)
		a.statsdClient.Count("aggregator.flushed_buckets", atomic.SwapInt64(&a.stats.flushedBuckets, 0), nil, 1)
		a.statsdClient.Count("aggregator.flush_errors", atomic.SwapInt64(&a.stats.flushErrors, 0), nil, 1)
	}
}

func (a *Aggregator) flushBucket(buckets map[int64]*bucket, btime int64, timestampType string) StatsBucket {
	b := buckets[btime]
	delete(buckets, btime)
	return b.export(timestampType)
}

// flush encodes every bucket whose window has fully elapsed as of now
// (start+D <= now) into one StatsPayload, removing those buckets from
// state regardless of what happens to the payload afterward. Buckets whose
// window hasn't elapsed yet are left in place for a later flush.
func (a *Aggregator) flush(now time.Time) StatsPayload {
	nowNano := now.UnixNano()
	payload := StatsPayload{
		Env:           a.env,
		Service:       a.service,
		PrimaryTag:    a.primaryTag,
		TracerVersion: tracerVersion,
		Lang:          lang,
		Stats:         make([]StatsBucket, 0, len(a.currentBuckets)+len(a.originBuckets)),
	}
	for btime := range a.currentBuckets {
		if btime > nowNano-bucketDuration {
			continue
		}
		payload.Stats = append(payload.Stats, a.flushBucket(a.currentBuckets, btime, timestampTypeCurrent))
	}
	for btime := range a.originBuckets {
		if btime > nowNano-bucketDuration {
			continue
		}
		payload.Stats = append(payload.Stats, a.flushBucket(a.originBuckets, btime, timestampTypeOrigin))
	}
	return payload
}

func (a *Aggregator) sendToAgent(payload StatsPayload) {
	if len(payload.Stats) == 0 {
		// An empty payload must never be flushed.
		return
	}
	atomic.AddInt64(&a.stats.flushedPayloads, 1)
	atomic.AddInt64(&a.stats.flushedBuckets, int64(len(payload.Stats)))
	if err := a.transport.sendPipelineStats(&payload); err != nil {
		log.Error("failed to send pipeline stats: %v", err)
		atomic.AddInt64(&a.stats.flushErrors, 1)
	}
}
