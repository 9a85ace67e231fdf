// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }

func TestParseContainerIDDocker(t *testing.T) {
	const cgroup = `12:pids:/docker/34dc0b5e626f2c5c4c5170e34b4e0c6b2aee50e1f0da4f1b89c4e5e2c6d9d1a1
11:hugetlb:/docker/34dc0b5e626f2c5c4c5170e34b4e0c6b2aee50e1f0da4f1b89c4e5e2c6d9d1a1
`
	got := parseContainerID(stringsReader(cgroup))
	assert.Equal(t, "34dc0b5e626f2c5c4c5170e34b4e0c6b2aee50e1f0da4f1b89c4e5e2c6d9d1a1", got)
}

func TestParseContainerIDNoMatch(t *testing.T) {
	const cgroup = "12:pids:/\n11:hugetlb:/\n"
	assert.Empty(t, parseContainerID(stringsReader(cgroup)))
}
