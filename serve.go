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
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// defaultServerTimeouts returns production-safe defaults. These matter
// for preventing slowloris attacks and resource exhaustion.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// server builds the http.Server used by Serve, ServeTLS and Listen,
// wrapping the handler for h2c when enabled.
func (r *Router) server(addr string) *http.Server {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}

// Serve starts the HTTP server on addr and blocks.
//
//	r := viaduct.MustNew()
//	r.Route("/").GET(func(c *viaduct.Context) {
//	    c.String(http.StatusOK, "Hello, World!")
//	})
//	log.Fatal(r.Serve(":8080"))
func (r *Router) Serve(addr string) error {
	return r.server(addr).ListenAndServe()
}

// ServeTLS starts the HTTPS server on addr and blocks. HTTP/2 is
// enabled automatically via ALPN.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	return r.server(addr).ListenAndServeTLS(certFile, keyFile)
}

// Listen binds addr, invokes callback (if non-nil) once the listener is
// accepting connections, then serves until the server stops.
//
//	r.Listen(":8080", func() {
//	    log.Println("listening on :8080")
//	})
func (r *Router) Listen(addr string, callback func()) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if callback != nil {
		callback()
	}
	return r.server(addr).Serve(ln)
}
