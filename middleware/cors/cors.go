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

// Package cors provides Cross-Origin Resource Sharing middleware with
// preflight handling.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/viaduct-dev/viaduct"
)

// Option defines functional options for cors middleware configuration.
type Option func(*config)

// config holds the configuration for the cors middleware. The default
// configuration is restrictive: no origins are allowed until configured.
type config struct {
	allowedOrigins   []string
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
}

func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins sets the exact origins allowed to make CORS
// requests.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) { cfg.allowedOrigins = origins }
}

// WithAllowAllOrigins allows any origin. Avoid together with
// credentials.
func WithAllowAllOrigins(allow bool) Option {
	return func(cfg *config) { cfg.allowAllOrigins = allow }
}

// WithAllowedMethods sets the methods advertised to preflight requests.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) { cfg.allowedMethods = methods }
}

// WithAllowedHeaders sets the request headers advertised to preflight
// requests.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.allowedHeaders = headers }
}

// WithExposedHeaders sets the response headers exposed to the client.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.exposedHeaders = headers }
}

// WithAllowCredentials allows cookies and authorization headers on CORS
// requests. Cannot be combined with a wildcard origin.
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) { cfg.allowCredentials = allow }
}

// WithMaxAge sets the preflight cache lifetime in seconds.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) { cfg.maxAge = seconds }
}

// WithAllowOriginFunc sets a dynamic origin validator, used when the
// origin is not in the static allow-list.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) { cfg.allowOriginFunc = fn }
}

// New returns middleware that sets CORS headers for allowed origins and
// answers preflight OPTIONS requests with 204.
//
//	r := viaduct.MustNew()
//	r.Use(cors.New(cors.WithAllowedOrigins("https://example.com")))
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowedMethods := strings.Join(cfg.allowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.allowedHeaders, ", ")
	exposedHeaders := strings.Join(cfg.exposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.maxAge)

	return func(c *viaduct.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if !originAllowed(cfg, origin) {
			// Not an allowed origin: no CORS headers, continue as a
			// plain request.
			c.Next()
			return
		}

		header := c.Response.Header()
		if cfg.allowAllOrigins && !cfg.allowCredentials {
			header.Set("Access-Control-Allow-Origin", "*")
		} else {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Add("Vary", "Origin")
		}
		if cfg.allowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposedHeaders != "" {
			header.Set("Access-Control-Expose-Headers", exposedHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			header.Set("Access-Control-Allow-Methods", allowedMethods)
			header.Set("Access-Control-Allow-Headers", allowedHeaders)
			header.Set("Access-Control-Max-Age", maxAge)
			c.Response.WriteHeader(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}

func originAllowed(cfg *config, origin string) bool {
	if cfg.allowAllOrigins {
		return true
	}
	if slices.Contains(cfg.allowedOrigins, origin) {
		return true
	}
	return cfg.allowOriginFunc != nil && cfg.allowOriginFunc(origin)
}
