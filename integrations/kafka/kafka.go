// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package kafka wires the pathway propagator and checkpointer into
// confluentinc/confluent-kafka-go/v2 producers and consumers.
package kafka

import (
	"context"
	"strconv"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/pathwire/pathwire-go/aggregator"
	"github.com/pathwire/pathwire-go/pathway"
)

// TraceProduce checkpoints a produce-side hop for msg, records it with agg,
// and injects the resulting pathway into msg's Kafka headers so that a
// downstream TraceConsume call can pick it up. It returns ctx carrying the
// new pathway.
func TraceProduce(ctx context.Context, cp *pathway.Checkpointer, agg *aggregator.Aggregator, msg *ckafka.Message) context.Context {
	prev, _ := pathway.FromContext(ctx)
	edgeTags := edgeTagsFor("out", "", msg)

	next, pt := cp.Checkpoint(prev, edgeTags, pathway.WithPayloadSize(int64(len(msg.Value))))
	agg.Add(pt)
	injectHeaders(msg, next)
	return pathway.ContextWithPathway(ctx, next)
}

// TraceConsume extracts the pathway from msg's Kafka headers (falling back
// to whatever is already in ctx if the headers carry none), checkpoints a
// consume-side hop for it, and records it with agg. It returns ctx carrying
// the new pathway; do not pass that context into a second TraceConsume call
// for the same message.
func TraceConsume(ctx context.Context, cp *pathway.Checkpointer, agg *aggregator.Aggregator, msg *ckafka.Message, group string) context.Context {
	prev, ok := extractHeaders(msg)
	if !ok {
		prev, _ = pathway.FromContext(ctx)
	}
	edgeTags := edgeTagsFor("in", group, msg)

	next, pt := cp.Checkpoint(prev, edgeTags)
	agg.Add(pt)
	return pathway.ContextWithPathway(ctx, next)
}

// TrackProduceOffset reports the latest offset a producer has sent for a
// topic/partition, feeding the backlog metric on the next flush.
func TrackProduceOffset(agg *aggregator.Aggregator, topic string, partition int32, offset int64) {
	agg.AddOffset(aggregator.Offset{
		Timestamp: time.Now(),
		Type:      aggregator.OffsetTypeProduce,
		Value:     offset,
		Tags: map[string]string{
			"topic":     topic,
			"partition": strconv.Itoa(int(partition)),
			"type":      "kafka_produce",
		},
	})
}

// TrackCommitOffset reports a consumer group's committed offset for a
// topic/partition, feeding the backlog metric on the next flush.
func TrackCommitOffset(agg *aggregator.Aggregator, group, topic string, partition int32, offset int64) {
	agg.AddOffset(aggregator.Offset{
		Timestamp: time.Now(),
		Type:      aggregator.OffsetTypeCommit,
		Value:     offset,
		Tags: map[string]string{
			"consumer_group": group,
			"topic":          topic,
			"partition":      strconv.Itoa(int(partition)),
			"type":           "kafka_commit",
		},
	})
}

func edgeTagsFor(direction, group string, msg *ckafka.Message) []string {
	edges := []string{"type:kafka", "direction:" + direction}
	if group != "" {
		edges = append(edges, "group:"+group)
	}
	if msg.TopicPartition.Topic != nil {
		edges = append(edges, "topic:"+*msg.TopicPartition.Topic)
	}
	edges = append(edges, "partition:"+strconv.Itoa(int(msg.TopicPartition.Partition)))
	return edges
}

func injectHeaders(msg *ckafka.Message, p pathway.Pathway) {
	headers := make(map[string][]byte, 1)
	pathway.Inject(headers, p)

	filtered := msg.Headers[:0]
	for _, h := range msg.Headers {
		if h.Key == pathway.HeaderBinary || h.Key == pathway.HeaderBase64 {
			continue
		}
		filtered = append(filtered, h)
	}
	for key, value := range headers {
		filtered = append(filtered, ckafka.Header{Key: key, Value: value})
	}
	msg.Headers = filtered
}

func extractHeaders(msg *ckafka.Message) (pathway.Pathway, bool) {
	headers := make(map[string][]byte, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = h.Value
	}
	return pathway.Extract(headers)
}
