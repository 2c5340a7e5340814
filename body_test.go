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
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader yields its payload a few bytes at a time so size
// enforcement is exercised across multiple reads, not just one.
type chunkReader struct {
	data      []byte
	chunkSize int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunkSize
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// failingReader errors mid-stream to simulate a network-level read
// failure.
type failingReader struct {
	reads int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.reads == 0 {
		r.reads++
		p[0] = 'x'
		return 1, nil
	}
	return 0, errors.New("connection reset")
}

func postBody(r *Router, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBodyJSONDelivered(t *testing.T) {
	t.Parallel()

	var got any
	r := MustNew()
	r.Route("/echo").POST(func(c *Context) {
		got = c.Body()
		c.JSON(http.StatusOK, c.Body())
	})

	w := postBody(r, "/echo", "application/json", strings.NewReader(`{"a":1}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
	assert.JSONEq(t, `{"a":1}`, w.Body.String())
}

func TestBodyEmptyJSONParsesToEmptyObject(t *testing.T) {
	t.Parallel()

	var got any
	r := MustNew()
	r.Route("/echo").POST(func(c *Context) {
		got = c.Body()
		c.NoContent()
	})

	w := postBody(r, "/echo", "application/json", strings.NewReader(""))
	assert.Equal(t, http.StatusNoContent, w.Code, "empty JSON body must not be a bad request")
	assert.Equal(t, map[string]any{}, got)
}

func TestBodyMalformedJSONYields400(t *testing.T) {
	t.Parallel()

	handlerRan := false
	r := MustNew()
	r.Route("/echo").POST(func(c *Context) {
		handlerRan = true
		c.NoContent()
	})

	w := postBody(r, "/echo", "application/json", strings.NewReader(`{a:`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, handlerRan, "handler chain must not run for unparsable bodies")
}

func TestBodyJSONContentTypeCaseInsensitive(t *testing.T) {
	t.Parallel()

	var got any
	r := MustNew()
	r.Route("/echo").POST(func(c *Context) {
		got = c.Body()
		c.NoContent()
	})

	postBody(r, "/echo", "Application/JSON; charset=utf-8", strings.NewReader(`{"b":2}`))
	assert.Equal(t, map[string]any{"b": float64(2)}, got)
}

func TestBodyLimitSingleChunk(t *testing.T) {
	t.Parallel()

	handlerRan := false
	r := MustNew(WithBodyLimit(8))
	r.Route("/up").POST(func(c *Context) {
		handlerRan = true
		c.NoContent()
	})

	w := postBody(r, "/up", "application/octet-stream", strings.NewReader("way more than eight bytes"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, handlerRan)
}

func TestBodyLimitAcrossManyChunks(t *testing.T) {
	t.Parallel()

	handlerRan := false
	r := MustNew(WithBodyLimit(10))
	r.Route("/up").POST(func(c *Context) {
		handlerRan = true
		c.NoContent()
	})

	body := &chunkReader{data: []byte(strings.Repeat("z", 64)), chunkSize: 3}
	w := postBody(r, "/up", "application/octet-stream", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, handlerRan)
	// The reader was abandoned mid-stream: well under the full payload
	// was consumed.
	assert.Greater(t, len(body.data), 48, "accumulation must stop the instant the limit is crossed")
}

func TestBodyAtLimitIsAccepted(t *testing.T) {
	t.Parallel()

	r := MustNew(WithBodyLimit(5))
	r.Route("/up").POST(func(c *Context) {
		c.String(http.StatusOK, string(c.BodyBytes()))
	})

	w := postBody(r, "/up", "text/plain", strings.NewReader("12345"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestBodyRouteLimitOverridesRouter(t *testing.T) {
	t.Parallel()

	r := MustNew(WithBodyLimit(4))
	r.Route("/big", WithRouteBodyLimit(1024)).POST(func(c *Context) {
		c.NoContent()
	})

	w := postBody(r, "/big", "text/plain", strings.NewReader("well beyond four bytes"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBodyRawStreamForOtherContentTypes(t *testing.T) {
	t.Parallel()

	var streamed []byte
	var parsed any
	r := MustNew()
	r.Route("/upload").POST(func(c *Context) {
		var err error
		streamed, err = io.ReadAll(c.FileStream())
		require.NoError(t, err)
		parsed = c.Body()
		c.NoContent()
	})

	postBody(r, "/upload", "application/pdf", strings.NewReader("%PDF-raw-bytes"))
	assert.Equal(t, []byte("%PDF-raw-bytes"), streamed)
	assert.Nil(t, parsed, "non-JSON bodies are not parsed")
}

func TestBodyRawStreamWhenContentTypeAbsent(t *testing.T) {
	t.Parallel()

	var streamed []byte
	r := MustNew()
	r.Route("/upload").POST(func(c *Context) {
		streamed, _ = io.ReadAll(c.FileStream())
		c.NoContent()
	})

	postBody(r, "/upload", "", strings.NewReader("opaque"))
	assert.Equal(t, []byte("opaque"), streamed)
}

func TestBodyReadErrorYields500(t *testing.T) {
	t.Parallel()

	handlerRan := false
	r := MustNew(WithLogger(NoopLogger()))
	r.Route("/up").POST(func(c *Context) {
		handlerRan = true
		c.NoContent()
	})

	w := postBody(r, "/up", "application/octet-stream", &failingReader{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, handlerRan)
}

func TestBodyMultipartPartStream(t *testing.T) {
	t.Parallel()

	var names []string
	var contents []string
	r := MustNew()
	r.Route("/form").POST(func(c *Context) {
		mr, err := c.MultipartReader()
		require.NoError(t, err)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			names = append(names, part.FormName())
			contents = append(contents, string(data))
		}
		c.NoContent()
	})

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	field, err := mw.CreateFormField("note")
	require.NoError(t, err)
	_, err = field.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := postBody(r, "/form", mw.FormDataContentType(), strings.NewReader(buf.String()))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"note"}, names)
	assert.Equal(t, []string{"hello"}, contents)
}

func TestBodyMultipartReaderOnNonMultipart(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Route("/form").POST(func(c *Context) {
		_, err := c.MultipartReader()
		assert.ErrorIs(t, err, ErrNotMultipart)
		c.NoContent()
	})

	postBody(r, "/form", "text/plain", strings.NewReader("plain"))
}
