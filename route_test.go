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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteMethodRegistration(t *testing.T) {
	t.Parallel()

	r := MustNew()
	rt := r.Route("/things/:id")
	handler := func(c *Context) { c.String(http.StatusOK, "ok") }

	rt.GET(handler).POST(handler).PUT(handler).DELETE(handler)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := perform(r, method, "/things/1")
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestRouteDuplicateMethodPanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	rt := r.Route("/x").GET(func(c *Context) {})

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok, "expected an error panic value")
		assert.True(t, errors.Is(err, ErrMethodAlreadyDefined))
	}()
	rt.GET(func(c *Context) {})
}

func TestRouteNilHandlerPanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.Panics(t, func() { r.Route("/a").GET(nil) })
	assert.Panics(t, func() { r.Route("/b").POST(func(c *Context) {}, nil) })
	assert.Panics(t, func() { r.Route("/c").Use(nil) })
}

func TestRouteNoHandlersPanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.Panics(t, func() { r.Route("/a").GET() })
}

func TestRouteSendStaticEmptyRootPanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.Panics(t, func() { r.Route("/assets").SendStatic("") })
}

func TestRoutePattern(t *testing.T) {
	t.Parallel()

	r := MustNew()
	rt := r.Route("/users/:id")
	assert.Equal(t, "/users/:id", rt.Pattern())
}

func TestRouteMiddlewareRunsBeforeHandlersOnly(t *testing.T) {
	t.Parallel()

	// Route middleware must not run for requests the route does not
	// serve.
	ran := false
	r := MustNew()
	r.Route("/a").Use(func(c *Context) {
		ran = true
		c.Next()
	}).GET(func(c *Context) { c.String(http.StatusOK, "a") })
	r.Route("/b").GET(func(c *Context) { c.String(http.StatusOK, "b") })

	perform(r, http.MethodGet, "/b")
	assert.False(t, ran)

	perform(r, http.MethodGet, "/a")
	assert.True(t, ran)
}

func TestRouteOptionOverridesDoNotLeak(t *testing.T) {
	t.Parallel()

	r := MustNew(WithBodyLimit(100))
	a := r.Route("/a", WithRouteBodyLimit(5))
	b := r.Route("/b")

	assert.Equal(t, int64(5), a.opts.bodyLimit)
	assert.Equal(t, int64(100), b.opts.bodyLimit, "route override must not mutate router defaults")
	assert.Equal(t, int64(100), r.opts.bodyLimit)
}
