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

// Package viaduct is an HTTP request-routing and middleware-dispatch
// engine with an Express-style registration surface.
//
// A Router owns an ordered set of Routes and a global middleware chain.
// Each Route owns one path pattern (literal segments plus ":name"
// parameter segments), one handler chain per HTTP method, its own
// middleware chain, and an optional static-asset subtree built by a
// one-time directory scan.
//
// For every inbound request the Router runs the global middleware
// chain, then resolves the request in this order, each step exclusive
// of the next:
//
//  1. Static exact match: a registered static asset whose URL path
//     equals the request path (GET only).
//  2. Static index match: the request path equals a Route's base path
//     and that Route's static map contains its index file (GET only).
//  3. Dynamic pattern match: the first registered Route whose pattern
//     matches the request path, in registration order. Earlier routes
//     shadow later ones with overlapping patterns.
//  4. No match: the configured 404 responder.
//
// On a dynamic match the engine extracts path parameters and query
// values, accumulates the request body under the configured size limit,
// classifies it by Content-Type (JSON is parsed, multipart is exposed
// as a part stream, anything else is exposed as a raw byte stream), and
// then executes route-local middleware followed by the method's handler
// chain.
//
// Example:
//
//	r := viaduct.MustNew(viaduct.WithBodyLimit(1 << 20))
//	r.Use(recovery.New())
//
//	r.Route("/users/:id").
//	    GET(func(c *viaduct.Context) {
//	        c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	    })
//
//	r.Route("/").SendStatic("./public")
//
//	log.Fatal(r.Serve(":8080"))
package viaduct
