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

// Package recovery provides middleware that recovers from panics in
// request handlers and converts them into 500 responses.
package recovery

import (
	"net/http"
	"runtime"

	"github.com/viaduct-dev/viaduct"
)

// Option defines functional options for recovery middleware
// configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables capturing a stack trace on panic
	stackTrace bool

	// stackSize bounds the captured stack trace
	stackSize int

	// logger receives the panic value and stack
	logger func(c *viaduct.Context, err any, stack []byte)

	// handler writes the error response
	handler func(c *viaduct.Context, err any)
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10,
		logger:     defaultLogger,
		handler:    defaultHandler,
	}
}

func defaultLogger(c *viaduct.Context, err any, stack []byte) {
	c.Logger().Error("panic recovered",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"stack", string(stack),
	)
}

func defaultHandler(c *viaduct.Context, _ any) {
	c.JSON(http.StatusInternalServerError, map[string]any{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

// WithStackTrace enables or disables stack trace capture.
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) { cfg.stackTrace = enabled }
}

// WithStackSize sets the maximum captured stack size in bytes.
func WithStackSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithLogger sets a custom panic logger.
func WithLogger(logger func(c *viaduct.Context, err any, stack []byte)) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithHandler sets a custom recovery response handler.
func WithHandler(handler func(c *viaduct.Context, err any)) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.handler = handler
		}
	}
}

// New returns middleware that recovers from panics in later chain
// entries, logs them, and sends a 500 response. Register it first so it
// covers the whole chain.
//
//	r := viaduct.MustNew()
//	r.Use(recovery.New())
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		defer func() {
			if err := recover(); err != nil {
				var stack []byte
				if cfg.stackTrace {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}
				cfg.logger(c, err, stack)
				cfg.handler(c, err)
				c.Abort()
			}
		}()
		c.Next()
	}
}
