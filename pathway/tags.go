// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package pathway

import "strings"

// Tag is a (key, value) pair attached to a checkpoint call, e.g.
// "direction:out" or "topic:orders".
type Tag struct {
	Key   string
	Value string
}

// edgeTagKeys are the keys carried through to the wire on a StatsPoint's
// EdgeTags.
var edgeTagKeys = map[string]struct{}{
	"type":      {},
	"direction": {},
	"topic":     {},
	"partition": {},
	"group":     {},
	"exchange":  {},
}

// hashableTagKeys are the subset of edge tags that participate in node
// hashing. Notably this excludes "partition": including the partition
// number in the hash would explode node cardinality per-topic.
var hashableTagKeys = map[string]struct{}{
	"group":     {},
	"type":      {},
	"direction": {},
	"topic":     {},
	"exchange":  {},
}

// IsEdgeTag reports whether key is a recognized edge-tag key.
func IsEdgeTag(key string) bool {
	_, ok := edgeTagKeys[key]
	return ok
}

// IsHashableTag reports whether key is a recognized hashable-tag key.
func IsHashableTag(key string) bool {
	_, ok := hashableTagKeys[key]
	return ok
}

// ParseTag splits a "key:value" string into a Tag. ok is false if s does
// not contain exactly one colon separating a non-empty key.
func ParseTag(s string) (t Tag, ok bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return Tag{}, false
	}
	if strings.IndexByte(s[i+1:], ':') != -1 {
		// A second colon makes the key ambiguous; reject rather than guess.
		return Tag{}, false
	}
	return Tag{Key: s[:i], Value: s[i+1:]}, true
}

// Render renders t back into "key:value" form.
func (t Tag) Render() string { return t.Key + ":" + t.Value }

// filterAndRender parses each raw "k:v" string, keeps those whose key
// passes keep, and returns the rendered "k:v" strings of the survivors in
// their original order.
func filterAndRender(raw []string, keep func(string) bool) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t, ok := ParseTag(r)
		if !ok || !keep(t.Key) {
			continue
		}
		out = append(out, t.Render())
	}
	return out
}
