// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package statsd defines the small observability-counter interface the
// aggregator reports through, backed in production by datadog-go/v5.
package statsd

import "time"

// Client is the surface the aggregator needs for its counters
// (aggregator.payloads_in, .flushed_payloads, .flushed_buckets, .flush_errors).
type Client interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Flush() error
	Close() error
}

// NoOpClient discards every call. Used when the agent collaborator reports
// "not enabled", and by tests that don't care about counters.
type NoOpClient struct{}

func (NoOpClient) Count(string, int64, []string, float64) error    { return nil }
func (NoOpClient) Gauge(string, float64, []string, float64) error  { return nil }
func (NoOpClient) Timing(string, time.Duration, []string, float64) error { return nil }
func (NoOpClient) Flush() error                                    { return nil }
func (NoOpClient) Close() error                                    { return nil }

var _ Client = NoOpClient{}
