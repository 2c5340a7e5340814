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
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
)

// Route associates one path pattern with its method handler chains, its
// route-local middleware, and an optional static-asset subtree. Routes
// are created through Router.Route and configured during the setup
// phase; mutating a route while the router is serving is out of
// contract.
//
// Registration methods are chainable:
//
//	r.Route("/posts/:id").
//	    Use(authMiddleware).
//	    GET(showPost).
//	    DELETE(requireAdmin, deletePost)
type Route struct {
	router  *Router
	pattern string
	opts    routeOptions

	middleware     []HandlerFunc
	methodHandlers map[string][]HandlerFunc

	// static maps URL path -> filesystem path. Published once by the
	// SendStatic scan goroutine and read-only afterward; requests that
	// arrive before the scan publishes simply miss and fall through to
	// 404.
	static atomic.Pointer[map[string]string]
}

// Pattern returns the route's path pattern.
func (rt *Route) Pattern() string {
	return rt.pattern
}

// GET registers the handler chain for GET requests. The first N-1
// functions act as pre-handler middleware and the last is the terminal
// handler. Registering GET twice on the same route panics with
// ErrMethodAlreadyDefined.
func (rt *Route) GET(handlers ...HandlerFunc) *Route {
	return rt.handle(http.MethodGet, handlers...)
}

// POST registers the handler chain for POST requests.
func (rt *Route) POST(handlers ...HandlerFunc) *Route {
	return rt.handle(http.MethodPost, handlers...)
}

// PUT registers the handler chain for PUT requests.
func (rt *Route) PUT(handlers ...HandlerFunc) *Route {
	return rt.handle(http.MethodPut, handlers...)
}

// DELETE registers the handler chain for DELETE requests.
func (rt *Route) DELETE(handlers ...HandlerFunc) *Route {
	return rt.handle(http.MethodDelete, handlers...)
}

// Use appends middleware to the route-local chain. Route middleware
// runs after global middleware and before the method's handler chain,
// in registration order.
func (rt *Route) Use(middleware ...HandlerFunc) *Route {
	for _, m := range middleware {
		if m == nil {
			panic(fmt.Errorf("%w: route %q middleware", ErrNilHandler, rt.pattern))
		}
	}
	rt.middleware = append(rt.middleware, middleware...)
	return rt
}

// SendStatic registers every file under rootDir as a static asset of
// this route. A file at rootDir/sub/page.html on a route with pattern
// "/docs" becomes reachable at GET /docs/sub/page.html; the mapping
// uses POSIX-style separators and is case-sensitive.
//
// The scan runs asynchronously and publishes the complete mapping in
// one atomic swap; it is not rescanned afterward. A request racing the
// scan falls through to 404 until the map is published (use
// Router.Warmup to block until all scans finish). Unreadable entries
// are logged and skipped rather than aborting the scan.
func (rt *Route) SendStatic(rootDir string, opts ...RouteOption) *Route {
	if rootDir == "" {
		panic(fmt.Errorf("%w: route %q", ErrEmptyStaticRoot, rt.pattern))
	}
	for _, opt := range opts {
		opt(&rt.opts)
	}

	base := rt.basePath()
	logger := rt.router.baseLogger()
	rt.router.staticWG.Add(1)
	go func() {
		defer rt.router.staticWG.Done()
		files := scanStatic(base, rootDir, logger)
		rt.static.Store(&files)
	}()
	return rt
}

// handle registers a handler chain for one HTTP method.
func (rt *Route) handle(method string, handlers ...HandlerFunc) *Route {
	if len(handlers) == 0 {
		panic(fmt.Errorf("%w: %s %q", ErrNoHandlers, method, rt.pattern))
	}
	for _, h := range handlers {
		if h == nil {
			panic(fmt.Errorf("%w: %s %q", ErrNilHandler, method, rt.pattern))
		}
	}
	if _, exists := rt.methodHandlers[method]; exists {
		panic(fmt.Errorf("%w: %s %q", ErrMethodAlreadyDefined, method, rt.pattern))
	}
	rt.methodHandlers[method] = handlers
	return rt
}

// basePath is the URL prefix under which static assets register: the
// pattern without its trailing slash, so "/" maps files directly under
// "/name" and "/docs" maps them under "/docs/name".
func (rt *Route) basePath() string {
	return strings.TrimSuffix(rt.pattern, "/")
}

// staticLookup returns the filesystem path registered for a URL path,
// if the scan has published and the path is present.
func (rt *Route) staticLookup(urlPath string) (string, bool) {
	files := rt.static.Load()
	if files == nil {
		return "", false
	}
	fsPath, ok := (*files)[urlPath]
	return fsPath, ok
}

// indexURL is the static map key probed for a static index match.
func (rt *Route) indexURL() string {
	return rt.basePath() + "/" + rt.opts.indexFile
}

// handleRequest executes the route's part of the chain once the router
// has established a pattern match: body accumulation and
// classification, default headers, then route middleware and the
// method's handler chain.
//
// The route's entries are appended to the context's chain rather than
// run recursively, so a middleware calling Next keeps a single index
// cursor across the global and route-local sections.
func (rt *Route) handleRequest(c *Context) {
	handlers, ok := rt.methodHandlers[c.Request.Method]
	if !ok {
		// Matched pattern, no handler for this method: the 404
		// responder, not a 405.
		rt.router.serveNotFound(c, rt)
		return
	}

	applyHeaders(c.Response, rt.opts.defaultHeaders)

	switch readBody(c, rt.opts.bodyLimit) {
	case bodyTooLarge:
		c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
		c.Response.WriteHeader(http.StatusRequestEntityTooLarge)
		fmt.Fprintln(c.Response, "413 payload too large")
		return
	case bodyBadRequest:
		c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
		c.Response.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(c.Response, "400 bad request")
		return
	case bodyReadError:
		c.Logger().Error("failed to read request body",
			"method", c.Request.Method, "path", c.Request.URL.Path)
		writeInternalError(c)
		return
	}

	if rt.opts.timeout > 0 && rt.opts.timeout != rt.router.opts.timeout {
		c.armTimeout(rt.opts.timeout)
	}

	c.handlers = append(c.handlers, rt.middleware...)
	c.handlers = append(c.handlers, handlers...)
	c.Next()
}
