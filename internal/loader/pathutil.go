// Copyright 2024 The TagWire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"errors"
	"path"
	"strings"
)

// errOutsideBase is returned by resolveImport for an import path that,
// once normalized, escapes the schema root; the loader reports it as a
// Diagnostic, like every other error a schema author can trigger (a
// typo'd path, a missing file). The package's one panic is in
// computeNamespace.
var errOutsideBase = errors.New("import path escapes the schema root")

// normalize cleans p the way normalpath.Normalize does: slash-separated,
// ".."-collapsed where possible, with no trailing slash.
func normalize(p string) string {
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if p == "." {
		return "."
	}
	return p
}

// withinBase reports whether a normalized, base-relative path stays inside
// the schema root: it must not be absolute and must not start with "../".
func withinBase(p string) bool {
	if strings.HasPrefix(p, "/") {
		return false
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return false
	}
	return true
}

// stripExtension removes a single trailing ".tw" (or whatever extension is
// present) from the final path component, the step Namespace derivation
// applies after the path has already been validated to sit inside the
// base directory.
func stripExtension(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return p
	}
	return strings.TrimSuffix(p, ext)
}

// resolveImport normalizes an import path written inside a schema file
// (import paths are always root-relative, the same convention buf uses
// for .proto import paths) and reports errOutsideBase if the result
// escapes the schema root. Callers report this as a Diagnostic; see
// computeNamespace in loader.go for the one case this package treats as
// an unrecoverable invariant violation instead.
func resolveImport(importPath string) (string, error) {
	normalized := normalize(importPath)
	if !withinBase(normalized) {
		return "", errOutsideBase
	}
	return normalized, nil
}
