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
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultIndexFile is the static index filename served when a request
// path equals a route's base path. Overridable per router or per route
// via WithIndexFile / WithRouteIndexFile.
const DefaultIndexFile = "index.html"

// contentTypeByExtension is the fixed extension table used for static
// assets and Context.File. Unknown extensions fall back to
// application/octet-stream; there is deliberately no content sniffing.
var contentTypeByExtension = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".txt":   "text/plain; charset=utf-8",
	".xml":   "application/xml; charset=utf-8",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".pdf":   "application/pdf",
	".wasm":  "application/wasm",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".mp4":   "video/mp4",
	".mp3":   "audio/mpeg",
}

const fallbackContentType = "application/octet-stream"

// contentTypeFor returns the content type for a filesystem path based
// on its extension.
func contentTypeFor(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ct, ok := contentTypeByExtension[ext]; ok {
		return ct
	}
	return fallbackContentType
}

// serveFile streams a file to the client with the content type inferred
// from its extension. A missing file produces the 404 responder; any
// other error produces a generic 500, with the detail kept to the
// server-side log.
func serveFile(c *Context, filePath string) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.router.writeNotFoundBody(c)
			return
		}
		c.Logger().Error("failed to open file", "path", filePath, "error", err)
		writeInternalError(c)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.router.writeNotFoundBody(c)
		return
	}

	c.Response.Header().Set("Content-Type", contentTypeFor(filePath))
	c.Response.WriteHeader(http.StatusOK)
	if _, err := io.Copy(c.Response, f); err != nil {
		// Headers are already out; all that is left is logging.
		c.Logger().Error("failed to stream file", "path", filePath, "error", err)
	}
}

// scanStatic walks rootDir recursively and returns a mapping from URL
// path to filesystem path. Every file found is registered under
// basePath + "/" + its POSIX-style relative path, case-sensitively. A
// scan error for an individual entry is logged and that entry skipped;
// one unreadable file does not abort the whole scan.
func scanStatic(basePath, rootDir string, logger *slog.Logger) map[string]string {
	files := make(map[string]string)
	base := strings.TrimSuffix(basePath, "/")

	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping static entry", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			logger.Warn("skipping static entry", "path", p, "error", err)
			return nil
		}
		urlPath := base + "/" + path.Clean(filepath.ToSlash(rel))
		files[urlPath] = p
		return nil
	})
	if err != nil {
		logger.Warn("static scan incomplete", "root", rootDir, "error", err)
	}
	return files
}
