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
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseInfo exposes the status code and size of a response as
// captured by the router's response writer wrapper. Middleware such as
// access logging can type-assert a ResponseWriter to this interface
// without depending on the concrete wrapper type.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
	Written() bool
}

// responseWriter wraps http.ResponseWriter to capture status code and
// size. It suppresses superfluous WriteHeader calls, which makes a
// misbehaving middleware that writes after the chain already responded
// harmless instead of noisy. The mutex exists because the timeout
// watchdog may write from a timer goroutine; the first writer wins.
type responseWriter struct {
	http.ResponseWriter
	mu         sync.Mutex
	statusCode int
	size       int64
	written    bool
}

// WriteHeader captures the status code and prevents duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size and marks the response as written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// StatusCode returns the HTTP status code sent to the client.
func (rw *responseWriter) StatusCode() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// Size returns the number of body bytes written so far.
func (rw *responseWriter) Size() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Written reports whether headers have been written.
func (rw *responseWriter) Written() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}

var _ ResponseInfo = (*responseWriter)(nil)

// Hijack implements http.Hijacker when the underlying writer does.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, ErrResponseWriterNotHijacker
}

// Flush implements http.Flusher when the underlying writer does.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
