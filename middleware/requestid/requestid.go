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

// Package requestid provides middleware that attaches a unique request
// ID to each request for log correlation.
package requestid

import (
	"context"

	"github.com/google/uuid"

	"github.com/viaduct-dev/viaduct"
	"github.com/viaduct-dev/viaduct/middleware"
)

// Option defines functional options for requestid middleware
// configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the header carrying the request ID
	headerName string

	// generator produces new request IDs
	generator func() string

	// allowClientID accepts IDs supplied by the client
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     uuid.NewString,
		allowClientID: true,
	}
}

// WithHeader sets the header name used for the request ID.
func WithHeader(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.headerName = name
		}
	}
}

// WithGenerator sets a custom request ID generator.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		if generator != nil {
			cfg.generator = generator
		}
	}
}

// WithAllowClientID controls whether IDs supplied by the client in the
// configured header are reused. Default: true.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// New returns middleware that ensures every request carries a request
// ID: an existing client ID is reused when allowed, otherwise a new one
// is generated. The ID is set on the response header and stored in the
// request context under middleware.RequestIDKey.
//
//	r := viaduct.MustNew()
//	r.Use(requestid.New())
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		id := ""
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Response.Header().Set(cfg.headerName, id)
		ctx := context.WithValue(c.Request.Context(), middleware.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// FromContext returns the request ID stored by New, or the empty string
// when the middleware did not run.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
