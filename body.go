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
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"

	// bodyChunkSize is the read granularity for body accumulation.
	// Reading in chunks keeps the size limit enforceable mid-stream
	// instead of after a full buffered read.
	bodyChunkSize = 32 * 1024
)

// bodyOutcome classifies the result of reading and parsing a request
// body. Anything other than bodyOK means the handler chain must not
// run.
type bodyOutcome int

const (
	bodyOK bodyOutcome = iota
	bodyTooLarge
	bodyBadRequest
	bodyReadError
)

// mediaType returns the request's declared media type, lowercased and
// stripped of parameters, or the empty string when absent or malformed.
func mediaType(req *http.Request) string {
	header := req.Header.Get("Content-Type")
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		// Fall back to the bare type so an unparsable parameter list
		// still routes the body down the raw-stream path.
		mt = header
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// readBody accumulates the request body into c.body, enforcing limit
// (0 means unbounded), then classifies it by the declared content type.
//
// The limit check runs against the running total as each chunk arrives:
// the instant the total exceeds the limit the read is aborted and the
// rest of the stream is discarded, bounding memory use for oversized
// uploads. GET and HEAD requests are skipped entirely.
func readBody(c *Context, limit int64) bodyOutcome {
	if c.Request.Body == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return classifyBody(c)
	}

	var buf bytes.Buffer
	chunk := make([]byte, bodyChunkSize)
	var total int64
	for {
		n, err := c.Request.Body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if limit > 0 && total > limit {
				return bodyTooLarge
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return bodyReadError
		}
	}
	c.body = buf.Bytes()
	return classifyBody(c)
}

// classifyBody dispatches the accumulated body on the declared content
// type.
//
//   - application/json: parsed into c.bodyJSON; an empty body parses to
//     an empty object; a parse failure is a bad request and the body is
//     never delivered to handlers.
//   - multipart/form-data: the boundary is recorded so
//     Context.MultipartReader can expose the part stream.
//   - anything else, or no declared type: the raw bytes stay available
//     through Context.FileStream and Context.BodyBytes.
func classifyBody(c *Context) bodyOutcome {
	header := c.Request.Header.Get("Content-Type")
	mt, params, _ := mime.ParseMediaType(header)

	switch strings.ToLower(mt) {
	case contentTypeJSON:
		if len(c.body) == 0 {
			c.bodyJSON = map[string]any{}
			return bodyOK
		}
		var parsed any
		if err := json.Unmarshal(c.body, &parsed); err != nil {
			c.body = nil
			return bodyBadRequest
		}
		c.bodyJSON = parsed
		return bodyOK
	case contentTypeMultipart:
		c.boundary = params["boundary"]
		return bodyOK
	default:
		return bodyOK
	}
}
