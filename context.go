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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"
)

// HandlerFunc is the unit of the middleware chain: middleware and
// terminal handlers share this signature. A handler either terminates
// the request by writing a response, or calls c.Next() to continue to
// the next entry in the chain.
type HandlerFunc func(c *Context)

// Context carries one HTTP request through the middleware chain. It
// provides access to the request and response, extracted path
// parameters, query values, the classified request body, and chain
// continuation control.
//
// Context is not safe for concurrent use. It is bound to a single
// request and must only be accessed by the goroutine handling that
// request; copy any needed values before starting goroutines.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	router   *Router
	route    *Route
	handlers []HandlerFunc
	index    int
	aborted  bool

	params       map[string]string
	queryValues  map[string]string
	queryParsed  bool
	routePattern string

	body      []byte
	bodyJSON  any
	boundary  string
	logger    *slog.Logger
	finishers []func()
}

// Next executes the next entry in the middleware chain. A middleware
// either writes a response and returns without calling Next, which
// terminates the chain, or calls Next exactly once to continue to the
// next entry (the terminal handler if it is last). Calling Next more
// than once is a caller bug with undefined but non-crashing behavior.
//
// The chain is bounds-checked against its current length on every call
// because the dispatch stage appends route middleware and method
// handlers after the global middleware has started running. A canceled
// or timed-out request context stops the chain at the next boundary.
func (c *Context) Next() {
	if c.aborted {
		return
	}
	if err := c.Request.Context().Err(); err != nil {
		return
	}
	c.index++
	if c.index < len(c.handlers) {
		c.handlers[c.index](c)
	}
}

// Abort stops the chain from executing any further handlers. Handlers
// that already ran are unaffected.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether the chain has been aborted.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Param returns the value bound to a named path parameter, or the empty
// string if the pattern has no such parameter. Values are the raw path
// segments, without unescaping.
//
//	// pattern "/users/:id/posts/:post_id"
//	userID := c.Param("id")
//	postID := c.Param("post_id")
func (c *Context) Param(key string) string {
	return c.params[key]
}

// Query returns the value of a query-string key. When a key repeats,
// the last occurrence wins, per standard query-string semantics.
func (c *Context) Query(key string) string {
	c.parseQuery()
	return c.queryValues[key]
}

// QueryDefault returns the value of a query-string key, or defaultValue
// when the key is absent.
func (c *Context) QueryDefault(key, defaultValue string) string {
	c.parseQuery()
	if v, ok := c.queryValues[key]; ok {
		return v
	}
	return defaultValue
}

func (c *Context) parseQuery() {
	if c.queryParsed {
		return
	}
	c.queryParsed = true
	values, err := url.ParseQuery(c.Request.URL.RawQuery)
	if err != nil {
		return
	}
	c.queryValues = make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			c.queryValues[k] = vs[len(vs)-1]
		}
	}
}

// Body returns the parsed request body. For application/json requests
// it is the decoded JSON value (an empty body decodes to an empty
// object); for everything else it is nil and the raw bytes are
// available via BodyBytes or FileStream.
func (c *Context) Body() any {
	return c.bodyJSON
}

// BodyBytes returns the raw accumulated request body.
func (c *Context) BodyBytes() []byte {
	return c.body
}

// FileStream returns the accumulated body as a readable stream. This is
// the single-binary-upload path: for any content type other than JSON
// the engine defers interpretation entirely to the handler, which is
// responsible for persisting or otherwise consuming the stream.
func (c *Context) FileStream() io.Reader {
	return bytes.NewReader(c.body)
}

// MultipartReader returns a part stream over a multipart/form-data
// body. It returns ErrNotMultipart for other content types and
// ErrMissingBoundary when the request declared no boundary. There is no
// full form parser behind this; consuming the parts is up to the
// handler.
func (c *Context) MultipartReader() (*multipart.Reader, error) {
	if !c.isMultipart() {
		return nil, ErrNotMultipart
	}
	if c.boundary == "" {
		return nil, ErrMissingBoundary
	}
	return multipart.NewReader(bytes.NewReader(c.body), c.boundary), nil
}

// RoutePattern returns the pattern of the matched route, or the empty
// string when the request resolved to a static asset or a 404.
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// Logger returns the request-scoped structured logger. When logging is
// disabled it returns a no-op logger, so handlers can log
// unconditionally.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// Status writes the status code and returns the context for chaining.
// Later writes with a different code are suppressed by the response
// writer wrapper; the first code wins.
func (c *Context) Status(code int) *Context {
	c.Response.WriteHeader(code)
	return c
}

// Header sets a response header. It must be called before the first
// body write.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// JSON serializes obj as JSON, sets the content type and writes the
// response.
func (c *Context) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON response: %w", err)
	}
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err = c.Response.Write(data)
	return err
}

// String writes a plain-text response.
func (c *Context) String(code int, value string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := io.WriteString(c.Response, value)
	return err
}

// Stringf writes a formatted plain-text response.
func (c *Context) Stringf(code int, format string, values ...any) error {
	return c.String(code, fmt.Sprintf(format, values...))
}

// HTML writes an HTML response.
func (c *Context) HTML(code int, html string) error {
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := io.WriteString(c.Response, html)
	return err
}

// YAML serializes obj as YAML, sets the content type and writes the
// response.
func (c *Context) YAML(code int, obj any) error {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML response: %w", err)
	}
	c.Response.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err = c.Response.Write(data)
	return err
}

// Data writes raw bytes with an explicit content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	c.Response.Header().Set("Content-Type", contentType)
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(data)
	return err
}

// File serves a file from the filesystem. The content type is inferred
// from the file extension against a fixed table; unknown extensions
// default to application/octet-stream. A missing file yields 404, any
// other read error yields 500 with a generic message.
func (c *Context) File(path string) {
	serveFile(c, path)
}

// Redirect sends an HTTP redirect to location.
func (c *Context) Redirect(code int, location string) {
	http.Redirect(c.Response, c.Request, location, code)
}

// NoContent writes a 204 No Content response.
func (c *Context) NoContent() {
	c.Response.WriteHeader(http.StatusNoContent)
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(name, value string, maxAge int, path, domain string, secure, httpOnly bool) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		MaxAge:   maxAge,
		Path:     path,
		Domain:   domain,
		Secure:   secure,
		HttpOnly: httpOnly,
	})
}

// GetCookie returns the value of the named request cookie.
func (c *Context) GetCookie(name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(cookie.Value)
}

func (c *Context) isMultipart() bool {
	return c.boundary != "" || mediaType(c.Request) == contentTypeMultipart
}
