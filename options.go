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

package viaduct

import (
	"log/slog"
	"maps"
	"time"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// RouteOption overrides one router-level default for a single route at
// creation time. Routes that set no overrides inherit the owning
// router's options.
type RouteOption func(*routeOptions)

// routeOptions is the per-scope option set. The router holds the
// defaults; each route snapshots them at creation and applies its own
// overrides.
type routeOptions struct {
	bodyLimit      int64             // max body bytes, 0 = unbounded
	defaultHeaders map[string]string // applied to every response in scope
	custom404Path  string            // file served on unmatched routes
	indexFile      string            // static index filename
	enableLogging  bool              // per-request access logging
	timeout        time.Duration     // per-request chain timeout, 0 = none
}

func defaultRouteOptions() routeOptions {
	return routeOptions{
		indexFile: DefaultIndexFile,
	}
}

// clone deep-copies the option set so a route override never mutates
// the router's defaults.
func (o routeOptions) clone() routeOptions {
	c := o
	if o.defaultHeaders != nil {
		c.defaultHeaders = maps.Clone(o.defaultHeaders)
	}
	return c
}

// WithBodyLimit sets the maximum number of request-body bytes accepted
// before the engine responds 413 and stops reading. Zero means
// unbounded.
//
//	r := viaduct.MustNew(viaduct.WithBodyLimit(1 << 20)) // 1 MiB
func WithBodyLimit(n int64) Option {
	return func(r *Router) { r.opts.bodyLimit = n }
}

// WithDefaultHeaders sets headers applied to every response served by
// the router, unless a route overrides them.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(r *Router) { r.opts.defaultHeaders = maps.Clone(headers) }
}

// WithCustom404 sets a filesystem path served as the body of 404
// responses instead of the built-in minimal body.
func WithCustom404(path string) Option {
	return func(r *Router) { r.opts.custom404Path = path }
}

// WithIndexFile sets the static index filename served when a request
// path equals a route's base path. Default: "index.html".
func WithIndexFile(name string) Option {
	return func(r *Router) { r.opts.indexFile = name }
}

// WithLogging enables per-request access logging. Each request logs
// method, path, final status code and elapsed time at response
// completion, regardless of whether it resolved static, dynamic or 404.
func WithLogging(enabled bool) Option {
	return func(r *Router) { r.opts.enableLogging = enabled }
}

// WithLogger sets the structured logger used for access logs and
// server-side error detail. Defaults to slog.Default when logging is
// enabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithTimeout sets a per-request deadline. When the chain has not
// completed in time the request context is canceled, the chain is
// aborted at its next step, and a 503 is sent if nothing was written
// yet. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) { r.opts.timeout = d }
}

// WithH2C enables HTTP/2 cleartext support on Serve. Use only in
// development or behind a trusted load balancer.
func WithH2C(enable bool) Option {
	return func(r *Router) { r.enableH2C = enable }
}

// WithServerTimeouts configures the HTTP server's read-header, read,
// write and idle timeouts used by Serve and ServeTLS.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// WithRouteBodyLimit overrides the body size limit for one route.
func WithRouteBodyLimit(n int64) RouteOption {
	return func(o *routeOptions) { o.bodyLimit = n }
}

// WithRouteHeaders overrides the default response headers for one
// route.
func WithRouteHeaders(headers map[string]string) RouteOption {
	return func(o *routeOptions) { o.defaultHeaders = maps.Clone(headers) }
}

// WithRouteCustom404 overrides the 404 page for requests that matched
// this route's pattern but had no handler for the method.
func WithRouteCustom404(path string) RouteOption {
	return func(o *routeOptions) { o.custom404Path = path }
}

// WithRouteIndexFile overrides the static index filename for one route.
func WithRouteIndexFile(name string) RouteOption {
	return func(o *routeOptions) { o.indexFile = name }
}

// WithRouteLogging overrides access logging for one route.
func WithRouteLogging(enabled bool) RouteOption {
	return func(o *routeOptions) { o.enableLogging = enabled }
}

// WithRouteTimeout overrides the per-request deadline for one route.
func WithRouteTimeout(d time.Duration) RouteOption {
	return func(o *routeOptions) { o.timeout = d }
}
