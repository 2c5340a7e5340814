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

import "errors"

var (
	// ErrEmptyPattern indicates that a route pattern is empty or does not
	// start with a slash.
	ErrEmptyPattern = errors.New("route pattern must start with /")

	// ErrDuplicateRoute indicates that a route pattern is already
	// registered on the router.
	ErrDuplicateRoute = errors.New("route pattern already registered")

	// ErrMethodAlreadyDefined indicates that handlers for an HTTP method
	// are already registered on the route.
	ErrMethodAlreadyDefined = errors.New("method already defined on route")

	// ErrNilHandler indicates that a nil handler or middleware function
	// was passed to a registration call.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrNoHandlers indicates that a method registration received no
	// handler functions.
	ErrNoHandlers = errors.New("at least one handler is required")

	// ErrDuplicateParamName indicates that the same parameter name
	// appears more than once in a single route pattern. This is a
	// configuration defect detected on the first request that exercises
	// the pattern, and maps to a 500 response rather than a 404.
	ErrDuplicateParamName = errors.New("duplicate parameter name in route pattern")

	// ErrEmptyStaticRoot indicates that SendStatic was called with an
	// empty root directory.
	ErrEmptyStaticRoot = errors.New("static root directory must not be empty")

	// ErrBodyLimitInvalid indicates that the configured body size limit
	// is negative.
	ErrBodyLimitInvalid = errors.New("body size limit must not be negative")

	// ErrTimeoutInvalid indicates that the configured request timeout is
	// negative.
	ErrTimeoutInvalid = errors.New("request timeout must not be negative")

	// ErrServerTimeoutInvalid indicates that a server timeout value is
	// not positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")

	// ErrNotMultipart indicates that the request body is not
	// multipart/form-data.
	ErrNotMultipart = errors.New("request is not multipart/form-data")

	// ErrMissingBoundary indicates that a multipart/form-data request
	// did not declare a boundary parameter.
	ErrMissingBoundary = errors.New("multipart request has no boundary")

	// ErrResponseWriterNotHijacker indicates that the underlying
	// ResponseWriter does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")
)
