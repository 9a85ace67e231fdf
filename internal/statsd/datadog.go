// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package statsd

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// DatadogClient adapts github.com/DataDog/datadog-go/v5/statsd.Client to
// Client. It is the production implementation wired by the host
// application; NoOpClient is used when DSM reporting is disabled.
type DatadogClient struct {
	c *statsd.Client
}

// NewDatadogClient dials a dogstatsd client at addr (host:port, typically
// the agent's StatsD endpoint alongside its trace-agent port).
func NewDatadogClient(addr string) (*DatadogClient, error) {
	c, err := statsd.New(addr)
	if err != nil {
		return nil, err
	}
	return &DatadogClient{c: c}, nil
}

func (d *DatadogClient) Count(name string, value int64, tags []string, rate float64) error {
	return d.c.Count(name, value, tags, rate)
}

func (d *DatadogClient) Gauge(name string, value float64, tags []string, rate float64) error {
	return d.c.Gauge(name, value, tags, rate)
}

func (d *DatadogClient) Timing(name string, value time.Duration, tags []string, rate float64) error {
	return d.c.Timing(name, value, tags, rate)
}

func (d *DatadogClient) Flush() error { return d.c.Flush() }
func (d *DatadogClient) Close() error { return d.c.Close() }

var _ Client = (*DatadogClient)(nil)
