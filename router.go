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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// noopLogger is a singleton no-op logger used when no logger is
// configured and logging is disabled.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Router owns the full set of routes and the global middleware chain,
// and dispatches every inbound request.
//
// Lifecycle: construct with New or MustNew, register middleware and
// routes during a setup phase, then serve. Routes and middleware are
// treated as immutable once serving starts; concurrent registration
// while serving is out of contract. Concurrent reads during serving
// need no locking.
//
// Resolution order for every request, each step exclusive of the next:
//
//  1. Static exact match (GET): some route's static map contains the
//     literal request path.
//  2. Static index match (GET): the request path equals a route's base
//     path and the route's static map contains its index file.
//  3. Dynamic match: the first registered route whose pattern matches,
//     in registration order. Earlier routes shadow later ones.
//  4. No match: the 404 responder.
//
// Global middleware runs before step 1 for every request, including
// ones that end up static or 404.
type Router struct {
	routes     []*Route
	middleware []HandlerFunc
	opts       routeOptions
	logger     *slog.Logger

	serverTimeouts *serverTimeouts
	enableH2C      bool

	// staticWG tracks in-flight SendStatic scans; Warmup waits on it.
	staticWG sync.WaitGroup
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// New creates a router with optional configuration. Configuration is
// validated immediately rather than at request time.
//
//	r, err := viaduct.New(
//	    viaduct.WithBodyLimit(1<<20),
//	    viaduct.WithLogging(true),
//	)
func New(opts ...Option) (*Router, error) {
	r := &Router{
		opts: defaultRouteOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}
	return r, nil
}

// MustNew creates a router and panics if configuration is invalid. Use
// when configuration errors should fail the application at startup.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("viaduct.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration for common errors.
func (r *Router) validate() error {
	if r.opts.bodyLimit < 0 {
		return fmt.Errorf("%w: got %d", ErrBodyLimitInvalid, r.opts.bodyLimit)
	}
	if r.opts.timeout < 0 {
		return fmt.Errorf("%w: got %s", ErrTimeoutInvalid, r.opts.timeout)
	}
	if r.opts.indexFile == "" {
		r.opts.indexFile = DefaultIndexFile
	}
	if t := r.serverTimeouts; t != nil {
		if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
			return ErrServerTimeoutInvalid
		}
	}
	return nil
}

// Use adds global middleware executed for every request, in
// registration order, before any routing decision.
func (r *Router) Use(middleware ...HandlerFunc) {
	for _, m := range middleware {
		if m == nil {
			panic(fmt.Errorf("%w: global middleware", ErrNilHandler))
		}
	}
	r.middleware = append(r.middleware, middleware...)
}

// Route registers a new route for the given path pattern and returns it
// for chained handler registration. Options override the router's
// defaults for this route only.
//
// A duplicate pattern panics with ErrDuplicateRoute: route identity is
// the pattern, and silently shadowing an existing registration would
// hide a configuration bug.
func (r *Router) Route(pattern string, opts ...RouteOption) *Route {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: %q", ErrEmptyPattern, pattern))
	}
	for _, rt := range r.routes {
		if rt.pattern == pattern {
			panic(fmt.Errorf("%w: %q", ErrDuplicateRoute, pattern))
		}
	}

	o := r.opts.clone()
	for _, opt := range opts {
		opt(&o)
	}
	rt := &Route{
		router:         r,
		pattern:        pattern,
		opts:           o,
		methodHandlers: make(map[string][]HandlerFunc),
	}
	r.routes = append(r.routes, rt)
	return rt
}

// Warmup blocks until all pending static scans have published their
// maps. Serving before Warmup is safe: requests for assets whose scan
// has not finished fall through to 404 until the map appears.
func (r *Router) Warmup() {
	r.staticWG.Wait()
}

// baseLogger returns the configured logger, or slog.Default when none
// was set. Used for server-side error detail regardless of access-log
// settings.
func (r *Router) baseLogger() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// ServeHTTP implements http.Handler. It assembles the chain for one
// request (global middleware plus the dispatch stage), executes it, and
// emits the access log line at completion.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rw := &responseWriter{ResponseWriter: w}

	c := &Context{
		Request:  req,
		Response: rw,
		router:   r,
		index:    -1,
		logger:   r.baseLogger(),
	}

	applyHeaders(rw, r.opts.defaultHeaders)

	if r.opts.timeout > 0 {
		c.armTimeout(r.opts.timeout)
	}

	chain := make([]HandlerFunc, 0, len(r.middleware)+1)
	chain = append(chain, r.middleware...)
	chain = append(chain, r.dispatch)
	c.handlers = chain
	c.Next()

	// A chain that was cut short by a deadline may not have written
	// anything; the client still gets a response.
	if errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) && !rw.Written() {
		writeTimeout(rw)
	}

	c.finish()

	if r.accessLogEnabled(c) {
		r.baseLogger().Info("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rw.StatusCode(),
			"bytes", rw.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// accessLogEnabled resolves the effective logging flag: the matched
// route's override when there is one, the router default otherwise.
func (r *Router) accessLogEnabled(c *Context) bool {
	if c.route != nil {
		return c.route.opts.enableLogging
	}
	return r.opts.enableLogging
}

// dispatch is the terminal entry of the global chain: it resolves the
// request to a static asset, a dynamic route, or the 404 responder.
func (r *Router) dispatch(c *Context) {
	path := c.Request.URL.Path

	if c.Request.Method == http.MethodGet {
		// Static exact match wins over every dynamic pattern.
		for _, rt := range r.routes {
			if fsPath, ok := rt.staticLookup(path); ok {
				c.route = rt
				applyHeaders(c.Response, rt.opts.defaultHeaders)
				serveFile(c, fsPath)
				return
			}
		}
		// Static index: request for a route's own base path.
		for _, rt := range r.routes {
			if rt.pattern != path {
				continue
			}
			if fsPath, ok := rt.staticLookup(rt.indexURL()); ok {
				c.route = rt
				applyHeaders(c.Response, rt.opts.defaultHeaders)
				serveFile(c, fsPath)
				return
			}
		}
	}

	for _, rt := range r.routes {
		params, ok, err := matchPattern(rt.pattern, path)
		if err != nil {
			// A defective pattern is a server-side bug, not a missing
			// page.
			r.baseLogger().Error("route pattern defect", "pattern", rt.pattern, "error", err)
			writeInternalError(c)
			return
		}
		if !ok {
			continue
		}
		c.route = rt
		c.params = params
		c.routePattern = rt.pattern
		rt.handleRequest(c)
		return
	}

	r.serveNotFound(c, nil)
}

// serveNotFound writes the 404 responder: the custom page of the
// matched route (when one matched but lacked a method handler), the
// router's custom page, or the built-in minimal body.
func (r *Router) serveNotFound(c *Context, rt *Route) {
	opts := r.opts
	if rt != nil {
		opts = rt.opts
	}
	if opts.custom404Path != "" {
		data, err := os.ReadFile(opts.custom404Path)
		if err == nil {
			c.Response.Header().Set("Content-Type", contentTypeFor(opts.custom404Path))
			c.Response.WriteHeader(http.StatusNotFound)
			c.Response.Write(data)
			return
		}
		r.baseLogger().Warn("custom 404 page unreadable", "path", opts.custom404Path, "error", err)
	}
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(http.StatusNotFound)
	io.WriteString(c.Response, "404 page not found\n")
}

// writeNotFoundBody lets collaborators outside the dispatch loop (file
// serving) reuse the 404 responder with the matched route's options.
func (r *Router) writeNotFoundBody(c *Context) {
	r.serveNotFound(c, c.route)
}

// writeInternalError sends a generic 500. The specific error is only
// surfaced to server-side logs, never to the client body.
func writeInternalError(c *Context) {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(http.StatusInternalServerError)
	io.WriteString(c.Response, "500 internal server error\n")
}

// writeTimeout sends the timeout response when the chain was aborted by
// a deadline before writing anything.
func writeTimeout(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	io.WriteString(w, "503 service unavailable\n")
}

// applyHeaders sets the scope's default headers on the response.
func applyHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

// armTimeout puts a deadline on the request context and arms a watchdog
// that guarantees a response even if the chain never writes one. The
// chain observes the deadline between links (Context.Next checks the
// request context) and stops at the next boundary; the watchdog's write
// races handlers that ignore cancellation, which the response writer's
// written-guard resolves in favor of whoever writes first.
func (c *Context) armTimeout(d time.Duration) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), d)
	c.Request = c.Request.WithContext(ctx)

	rw, _ := c.Response.(*responseWriter)
	timer := time.AfterFunc(d, func() {
		if rw != nil {
			rw.mu.Lock()
			defer rw.mu.Unlock()
			if !rw.written {
				rw.statusCode = http.StatusServiceUnavailable
				rw.written = true
				rw.ResponseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
				rw.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
				io.WriteString(rw.ResponseWriter, "503 service unavailable\n")
			}
		}
	})
	c.finishers = append(c.finishers, func() {
		timer.Stop()
		cancel()
	})
}

// finish runs deferred per-request cleanup (timeout timers, context
// cancelation) after the chain completes.
func (c *Context) finish() {
	for i := len(c.finishers) - 1; i >= 0; i-- {
		c.finishers[i]()
	}
	c.finishers = nil
}
