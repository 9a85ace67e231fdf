// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/tinylib/msgp/msgp"
)

const (
	defaultAgentHost   = "localhost"
	defaultAgentPort   = 8126
	defaultHTTPTimeout = 2 * time.Second
)

var defaultDialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
}

var defaultClient = &http.Client{
	// A dedicated transport, not net/http's DefaultTransport: this process
	// may itself be traced, and that transport could be instrumented.
	Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           defaultDialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
	Timeout: defaultHTTPTimeout,
}

// transport is the collaborator the aggregator hands encoded payloads to.
// httpTransport is the production implementation; tests substitute a fake.
type transport interface {
	sendPipelineStats(p *StatsPayload) error
}

type httpTransport struct {
	url     string
	client  *http.Client
	headers map[string]string
}

func newHTTPTransport(host string, port int, client *http.Client, containerID string) *httpTransport {
	if client == nil {
		client = defaultClient
	}
	headers := map[string]string{
		"Pathwire-Meta-Lang":             "go",
		"Pathwire-Meta-Lang-Version":     strings.TrimPrefix(runtime.Version(), "go"),
		"Pathwire-Meta-Lang-Interpreter": runtime.Compiler + "-" + runtime.GOARCH + "-" + runtime.GOOS,
		"Content-Type":                   "application/msgpack",
		"Content-Encoding":               "gzip",
	}
	if containerID != "" {
		headers["Pathwire-Container-ID"] = containerID
	}
	return &httpTransport{
		url:     fmt.Sprintf("http://%s:%d/v0.1/pipeline_stats", host, port),
		client:  client,
		headers: headers,
	}
}

func (t *httpTransport) sendPipelineStats(p *StatsPayload) error {
	var buf bytes.Buffer
	gzipWriter, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return err
	}
	if err := msgp.Encode(gzipWriter, p); err != nil {
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.url, &buf)
	if err != nil {
		return err
	}
	for header, value := range t.headers {
		req.Header.Set(header, value)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)
	if code := resp.StatusCode; code >= 400 {
		txt := http.StatusText(code)
		msg := make([]byte, 100)
		n, _ := resp.Body.Read(msg)
		if n > 0 {
			return fmt.Errorf("%s (status: %s)", msg[:n], txt)
		}
		return fmt.Errorf("%s", txt)
	}
	return nil
}
