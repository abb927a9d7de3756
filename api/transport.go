// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader carries the per-request id set by Client.
const RequestIDHeader = "X-Request-ID"

// LoggingTransport logs every round trip with its status and duration.
type LoggingTransport struct {
	Next http.RoundTripper
}

func (t *LoggingTransport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	id := r.Header.Get(RequestIDHeader)

	slog.Debug("request started",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", id,
	)

	resp, err := t.next().RoundTrip(r)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", id,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	slog.Info("request completed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"request_id", id,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}
