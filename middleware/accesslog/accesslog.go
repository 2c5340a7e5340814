// Copyright 2026 The Viaduct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package accesslog provides structured per-request logging middleware
// built on log/slog. It complements the router's built-in access line
// with richer, filterable fields.
package accesslog

import (
	"log/slog"
	"time"

	"github.com/viaduct-dev/viaduct"
	"github.com/viaduct-dev/viaduct/middleware"
)

// Option defines functional options for accesslog middleware
// configuration.
type Option func(*config)

// config holds the configuration for the accesslog middleware.
type config struct {
	// logger receives the access records; nil disables logging
	logger *slog.Logger

	// excludePaths are exact paths never logged (health checks etc.)
	excludePaths map[string]bool

	// slowThreshold marks requests at or above it as slow
	slowThreshold time.Duration

	// errorsOnly logs only responses with status >= 400
	errorsOnly bool
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
	}
}

// WithLogger sets the destination logger. Without it the middleware is
// a no-op passthrough.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithExcludePaths suppresses logging for exact request paths.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithSlowThreshold marks requests taking at least d as slow. Slow
// requests are logged at Warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *config) { cfg.slowThreshold = d }
}

// WithErrorsOnly logs only requests whose final status is >= 400.
// Errors and slow requests are always logged.
func WithErrorsOnly(enabled bool) Option {
	return func(cfg *config) { cfg.errorsOnly = enabled }
}

// New returns middleware that logs one structured record per request at
// completion: method, path, status, response size and elapsed time,
// plus the route pattern and request ID when available.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := viaduct.MustNew()
//	r.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health"),
//	))
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		if cfg.logger == nil || cfg.excludePaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := 0
		var size int64
		if info, ok := c.Response.(viaduct.ResponseInfo); ok {
			status = info.StatusCode()
			size = info.Size()
		}

		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		if cfg.errorsOnly && !isError && !isSlow {
			return
		}

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes_sent", size,
			"duration_ms", duration.Milliseconds(),
			"host", c.Request.Host,
		}
		if pattern := c.RoutePattern(); pattern != "" {
			fields = append(fields, "route", pattern)
		}
		if id, ok := c.Request.Context().Value(middleware.RequestIDKey).(string); ok && id != "" {
			fields = append(fields, "request_id", id)
		}

		switch {
		case isSlow:
			cfg.logger.Warn("slow request", fields...)
		case isError:
			cfg.logger.Warn("request failed", fields...)
		default:
			cfg.logger.Info("request", fields...)
		}
	}
}
