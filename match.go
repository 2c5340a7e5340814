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
	"fmt"
	"strings"
)

// matchPattern compares a route pattern against a request path and
// extracts named parameters.
//
// Both pattern and path are split on "/". A differing segment count is
// never a match: there is no prefix matching and no wildcard segment.
// A pattern segment starting with ":" binds the remainder of the
// segment as a parameter name to the corresponding path segment,
// unconditionally and without unescaping. Any other pattern segment
// must equal the path segment exactly, case-sensitively.
//
// A parameter name that appears twice in one pattern is a caller
// configuration bug. It is reported as an error (wrapping
// ErrDuplicateParamName) rather than a failed match, so the dispatcher
// can surface it as a server-side defect instead of a 404.
func matchPattern(pattern, path string) (map[string]string, bool, error) {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patternSegs) != len(pathSegs) {
		return nil, false, nil
	}

	var params map[string]string
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if params == nil {
				params = make(map[string]string)
			}
			if _, dup := params[name]; dup {
				return nil, false, fmt.Errorf("%w: %q in %q", ErrDuplicateParamName, name, pattern)
			}
			params[name] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false, nil
		}
	}
	return params, true, nil
}
