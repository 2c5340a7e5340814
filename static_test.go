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
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates a small static site under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestStaticExactMatch(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"index.html":   "<html>home</html>",
		"css/site.css": "body{}",
		"app.bin":      "\x00\x01",
	})

	r := MustNew()
	r.Route("/").SendStatic(dir)
	r.Warmup()

	w := perform(r, http.MethodGet, "/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>home</html>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = perform(r, http.MethodGet, "/css/site.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	// Unknown extensions fall back to the generic binary type.
	w = perform(r, http.MethodGet, "/app.bin")
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
}

func TestStaticIndexMatch(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"index.html": "root index"})

	r := MustNew()
	r.Route("/").SendStatic(dir)
	r.Warmup()

	w := perform(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root index", w.Body.String())
}

func TestStaticIndexCustomFilename(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"home.html": "custom index"})

	r := MustNew()
	r.Route("/docs", WithRouteIndexFile("home.html")).SendStatic(dir)
	r.Warmup()

	w := perform(r, http.MethodGet, "/docs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "custom index", w.Body.String())

	w = perform(r, http.MethodGet, "/docs/home.html")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaticPrecedenceOverDynamic(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"index.html": "static wins"})

	dynamicRan := false
	r := MustNew()
	r.Route("/public/:x").GET(func(c *Context) {
		dynamicRan = true
		c.String(http.StatusOK, "dynamic")
	})
	r.Route("/public").SendStatic(dir)
	r.Warmup()

	w := perform(r, http.MethodGet, "/public/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "static wins", w.Body.String())
	assert.False(t, dynamicRan, "a static exact hit must never reach the dynamic handler")

	// Paths absent from the static map still dispatch dynamically.
	w = perform(r, http.MethodGet, "/public/other")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dynamic", w.Body.String())
	assert.True(t, dynamicRan)
}

func TestStaticOnlyServesGET(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"index.html": "home"})

	r := MustNew()
	r.Route("/").SendStatic(dir)
	r.Warmup()

	w := perform(r, http.MethodPost, "/index.html")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticCaseSensitivePaths(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"Page.html": "cased"})

	r := MustNew()
	r.Route("/").SendStatic(dir)
	r.Warmup()

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/Page.html").Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/page.html").Code)
}

func TestStaticMissBeforeScanPublishes(t *testing.T) {
	t.Parallel()

	// Before the scan goroutine publishes the map, requests just miss;
	// the engine never blocks startup on the scan.
	r := MustNew()
	rt := r.Route("/")
	w := perform(r, http.MethodGet, "/index.html")
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, ok := rt.staticLookup("/index.html")
	assert.False(t, ok)
}

func TestScanStaticSkipsUnreadableEntries(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"ok.txt":     "fine",
		"sub/in.txt": "nested",
	})

	files := scanStatic("", dir, NoopLogger())
	assert.Equal(t, filepath.Join(dir, "ok.txt"), files["/ok.txt"])
	assert.Equal(t, filepath.Join(dir, "sub", "in.txt"), files["/sub/in.txt"])
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text/html; charset=utf-8", contentTypeFor("a/b/index.html"))
	assert.Equal(t, "image/png", contentTypeFor("logo.PNG"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("data.unknown"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("no-extension"))
}
