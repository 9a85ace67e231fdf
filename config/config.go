// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

// Package config reads the handful of environment variables that control
// node identity and agent connectivity, mirroring the reference tracer's
// environment-variable-driven configuration style (see its
// internal/globalconfig and ddtrace/tracer/option.go) but trimmed to only
// the keys this module actually consumes.
package config

import (
	"os"
	"strconv"
)

const (
	defaultService    = "unnamed-go-service"
	defaultEnv        = ""
	defaultPrimaryTag = ""
	defaultAgentHost  = "localhost"
	defaultAgentPort  = 8126
)

// Config is the node identity and agent connectivity the aggregator and
// checkpointer are built from.
type Config struct {
	Service      string
	Env          string
	PrimaryTag   string
	AgentEnabled bool
	AgentHost    string
	AgentPort    int
}

// FromEnv reads PW_SERVICE, PW_ENV, PW_PRIMARY_TAG, PW_AGENT_ENABLED,
// PW_AGENT_HOST and PW_AGENT_PORT, falling back to spec-mandated defaults
// for anything unset or unparseable.
func FromEnv() *Config {
	return &Config{
		Service:      getEnvOr("PW_SERVICE", defaultService),
		Env:          getEnvOr("PW_ENV", defaultEnv),
		PrimaryTag:   getEnvOr("PW_PRIMARY_TAG", defaultPrimaryTag),
		AgentEnabled: getBoolEnvOr("PW_AGENT_ENABLED", false),
		AgentHost:    getEnvOr("PW_AGENT_HOST", defaultAgentHost),
		AgentPort:    getIntEnvOr("PW_AGENT_PORT", defaultAgentPort),
	}
}

func getEnvOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBoolEnvOr(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getIntEnvOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
