// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package ddsketch

import "errors"

var (
	errNonPositiveWeight = errors.New("ddsketch: reweight factor must be > 0")
	errNegativeCount     = errors.New("ddsketch: count must be >= 0")
	errQuantileRange     = errors.New("ddsketch: quantile must be in [0,1]")
)
