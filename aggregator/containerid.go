// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"bufio"
	"io"
	"os"
	"regexp"
)

const cgroupPath = "/proc/self/cgroup"

var (
	expCgroupLine  = regexp.MustCompile(`^\d+:[^:]*:(.+)$`)
	expContainerID = regexp.MustCompile(`([0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}|[0-9a-f]{64}|[0-9a-f]{32}-\d+)(?:\.scope)?$`)
)

// parseContainerID scans r line by line for the first cgroup path segment
// that looks like a container or task ID.
func parseContainerID(r io.Reader) string {
	scn := bufio.NewScanner(r)
	for scn.Scan() {
		path := expCgroupLine.FindStringSubmatch(scn.Text())
		if len(path) != 2 {
			continue
		}
		if id := expContainerID.FindString(path[1]); id != "" {
			return id
		}
	}
	return ""
}

// discoverContainerID reads cgroupPath once and returns the container ID it
// contains, or "" if the file is unreadable or contains no recognizable ID.
// Per the container-id-discovery-failure error class, failure is silent:
// callers simply omit the header.
func discoverContainerID() string {
	f, err := os.Open(cgroupPath)
	if err != nil {
		return ""
	}
	defer f.Close()
	return parseContainerID(f)
}
