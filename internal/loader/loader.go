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

// Package loader discovers and parses every schema file reachable from an
// entry point by following import statements, assigning each one a
// Namespace derived from its path, and reporting namespace collisions and
// unreadable imports with diagnostics that cite both the failing import
// statement and the underlying cause.
package loader

import (
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"

	"github.com/tagwire/tagwire/internal/diag"
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/lexer"
	"github.com/tagwire/tagwire/internal/parser"
	"github.com/tagwire/tagwire/internal/schema"
)

// Set is the result of a successful-enough Load: every schema file
// reachable from the entry point, keyed by its Namespace.
type Set struct {
	schemas map[string]*schema.Schema // keyed by Namespace.Key()
	order   []schema.Namespace
}

// Get looks up a loaded schema by namespace.
func (s *Set) Get(ns schema.Namespace) (*schema.Schema, bool) {
	v, ok := s.schemas[ns.Key()]
	return v, ok
}

// Namespaces returns every loaded namespace in the order first discovered.
func (s *Set) Namespaces() []schema.Namespace {
	return s.order
}

// ReadFile abstracts schema source retrieval; production code uses
// os.ReadFile rooted at a base directory, tests substitute an in-memory
// map.
type ReadFile func(path string) ([]byte, error)

// Loader walks import statements starting from an entry schema file.
type Loader struct {
	baseDir  string
	readFile ReadFile
	logger   *zap.Logger
}

// New returns a Loader that resolves import paths relative to baseDir and
// reads files from the real filesystem.
func New(baseDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		baseDir: baseDir,
		logger:  logger,
		readFile: func(p string) ([]byte, error) {
			return os.ReadFile(path.Join(baseDir, p))
		},
	}
}

// NewWithReader returns a Loader using a custom ReadFile, for tests that
// load schemas from memory instead of disk.
func NewWithReader(baseDir string, logger *zap.Logger, readFile ReadFile) *Loader {
	l := New(baseDir, logger)
	l.readFile = readFile
	return l
}

type worklistItem struct {
	relPath    string
	importedBy *schema.Import // nil for the entry file
}

// Load reads entryPath (relative to the loader's base directory) and every
// schema it transitively imports, in a depth-first worklist order. It
// never stops at the first unreadable or malformed file: every reachable
// file is attempted, and all diagnostics are accumulated into the
// returned sink.
func (l *Loader) Load(entryPath string) (*Set, *diag.Sink) {
	sink := &diag.Sink{}
	set := &Set{schemas: map[string]*schema.Schema{}}

	visited := map[string]bool{}
	worklist := []worklistItem{{relPath: normalize(entryPath)}}

	for len(worklist) > 0 {
		item := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited[item.relPath] {
			continue
		}
		visited[item.relPath] = true

		l.logger.Debug("loading schema", zap.String("path", item.relPath))

		s, ok := l.loadOne(item, sink)
		if !ok {
			continue
		}

		ns := computeNamespace(item.relPath)
		s.Namespace = ns
		if existing, collides := set.schemas[ns.Key()]; collides && existing.Path != s.Path {
			sink.Add(diag.New(
				"schema %q and %q both resolve to namespace %q; rename one of the files or adjust the base directory",
				existing.Path, s.Path, ns,
			))
			continue
		}
		set.schemas[ns.Key()] = s
		set.order = append(set.order, ns)

		for _, name := range s.ImportOrder {
			imp, _ := s.Imports.Get(name)
			target, err := resolveImport(imp.Path)
			if err != nil {
				sink.Add(diag.At(s.Path, "", imp.Span, "cannot import %q: %s", imp.Path, err))
				continue
			}
			imp.Namespace = computeNamespace(target)
			worklist = append(worklist, worklistItem{relPath: target, importedBy: imp})
		}
	}

	return set, sink
}

// loadOne reads, tokenizes, and parses a single file, reporting a read
// failure or any lexical/syntactic diagnostics, optionally wrapped to cite
// the import statement that pulled this file in.
func (l *Loader) loadOne(item worklistItem, sink *diag.Sink) (*schema.Schema, bool) {
	contents, err := l.readFile(item.relPath)
	if err != nil {
		cause := diag.New("%s", err)
		if item.importedBy != nil {
			sink.Add(diag.New("cannot read imported schema %q", item.relPath).WithCause(cause))
		} else {
			sink.Add(cause)
		}
		return nil, false
	}
	src := string(contents)

	toks, lexDiags := lexer.Tokenize(item.relPath, src)
	for _, d := range lexDiags {
		sink.Add(d)
	}

	s, parseDiags := parser.Parse(item.relPath, src, toks)
	for _, d := range parseDiags {
		sink.Add(d)
	}

	if len(lexDiags) > 0 || len(parseDiags) > 0 {
		return nil, false
	}
	return s, true
}

// computeNamespace derives a Namespace from a base-relative, already
// validated path: split on "/", strip the final component's extension,
// and turn each remaining component into an Identifier. A path with any
// non-normal component ("." or "..") reaching here after resolveImport
// has already validated it is an invariant violation, not a user error,
// and is the one case this package treats as unrecoverable.
func computeNamespace(relPath string) schema.Namespace {
	clean := normalize(relPath)
	if !withinBase(clean) {
		panic(fmt.Sprintf("loader: path %q escaped the schema root after validation", relPath))
	}
	withoutExt := stripExtension(clean)
	var parts []string
	for _, seg := range splitPath(withoutExt) {
		if seg == "" || seg == "." {
			continue
		}
		parts = append(parts, seg)
	}
	ns := make(schema.Namespace, len(parts))
	for i, p := range parts {
		ns[i] = ident.New(p)
	}
	return ns
}

func splitPath(p string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			parts = append(parts, p[start:i])
			start = i + 1
		}
	}
	parts = append(parts, p[start:])
	return parts
}
