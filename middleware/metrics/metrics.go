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

// Package metrics provides Prometheus request metrics middleware: a
// request counter and a latency histogram labeled by method, route
// pattern and status class.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viaduct-dev/viaduct"
)

// Option defines functional options for metrics middleware
// configuration.
type Option func(*config)

// config holds the configuration for the metrics middleware.
type config struct {
	// registerer receives the collectors
	registerer prometheus.Registerer

	// gatherer backs the Handler endpoint
	gatherer prometheus.Gatherer

	// namespace prefixes the metric names
	namespace string

	// buckets are the latency histogram buckets in seconds
	buckets []float64
}

func defaultConfig() *config {
	return &config{
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
		namespace:  "viaduct",
		buckets:    prometheus.DefBuckets,
	}
}

// WithRegistry sets a custom registry for both registration and the
// Handler endpoint. Useful in tests to avoid the global registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *config) {
		cfg.registerer = reg
		cfg.gatherer = reg
	}
}

// WithNamespace sets the metric name prefix. Default: "viaduct".
func WithNamespace(ns string) Option {
	return func(cfg *config) {
		if ns != "" {
			cfg.namespace = ns
		}
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(buckets []float64) Option {
	return func(cfg *config) {
		if len(buckets) > 0 {
			cfg.buckets = buckets
		}
	}
}

// Middleware bundles the collectors with the handler chain entry so the
// scrape endpoint and the instrumentation share one configuration.
type Middleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// New registers the collectors and returns the middleware bundle. It
// panics when the collectors are already registered on the target
// registry, matching prometheus.MustRegister semantics.
//
//	m := metrics.New()
//	r := viaduct.MustNew()
//	r.Use(m.Record())
//	http.Handle("/metrics", m.Handler())
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Middleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   cfg.buckets,
		}, []string{"method", "route"}),
		gatherer: cfg.gatherer,
	}
	cfg.registerer.MustRegister(m.requests, m.duration)
	return m
}

// Record returns the chain entry that instruments each request.
func (m *Middleware) Record() viaduct.HandlerFunc {
	return func(c *viaduct.Context) {
		start := time.Now()
		c.Next()

		route := c.RoutePattern()
		if route == "" {
			// Sentinel instead of the raw path to keep label
			// cardinality bounded.
			route = "_unmatched"
		}
		status := http.StatusOK
		if info, ok := c.Response.(viaduct.ResponseInfo); ok {
			status = info.StatusCode()
		}

		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the scrape endpoint for the configured registry.
func (m *Middleware) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
