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

// Package cli orchestrates the frontend pipeline (load, validate, emit)
// behind the two operations cmd/tagwire exposes: generate and format. It
// is the one layer in this repository that logs (via zap) and writes
// files; every package it calls into returns diagnostics instead.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tagwire/tagwire/internal/diag"
	"github.com/tagwire/tagwire/internal/emit/golang"
	"github.com/tagwire/tagwire/internal/loader"
	"github.com/tagwire/tagwire/internal/validate"
)

// ErrDiagnostics is returned when a pipeline stage reports at least one
// error; cmd/tagwire maps this to exit code 1 per spec.md §6. The
// diagnostics themselves have already been rendered to Stderr by the time
// this is returned, so callers need only decide the process exit code.
var ErrDiagnostics = errors.New("tagwire: schema has errors")

// GenerateRequest configures one invocation of Generate.
type GenerateRequest struct {
	// SchemaPath is the entry schema file. When SchemaRoot is empty (the
	// common case of a self-contained schema with no imports reaching
	// outside its own directory), SchemaPath's parent directory is the
	// schema root per spec.md §4.3 step 1. Set SchemaRoot explicitly for
	// an entry whose imports reach a sibling of its own parent directory
	// (e.g. one schema directory importing a shared "common" directory);
	// SchemaPath is then interpreted relative to SchemaRoot instead.
	SchemaPath string
	SchemaRoot string
	// GoOuts is the (possibly repeated, possibly empty) list of
	// destination directories for Go output, mirroring the original
	// implementation's support for multiple targets per invocation. An
	// empty list means the generated source is written to Stdout
	// instead, useful for piping into another tool. Each namespace in the
	// schema set gets its own subdirectory under a GoOuts entry (mirroring
	// the namespace's path), since each namespace is its own Go package.
	GoOuts []string
	// GoImportBase is the Go import path prefix under which every
	// namespace's generated package is addressed by the others, passed
	// through to golang.Options.ImportBase. Required whenever the schema
	// set has any cross-file type reference.
	GoImportBase string
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *zap.Logger
}

// Generate loads and validates the schema at req.SchemaPath and, if it is
// clean, emits Go source for every file in the transitive schema set to
// every configured --go-out destination (or Stdout, if none).
func Generate(req GenerateRequest) error {
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set, err := loadAndValidate(req.SchemaPath, req.SchemaRoot, logger, req.Stderr)
	if err != nil {
		return err
	}

	type generated struct {
		path   string // schema file path, for naming the output file
		nsPath string // namespace path, for the output subdirectory
		source string
	}
	var files []generated
	for _, ns := range set.Namespaces() {
		fileSchema, _ := set.Get(ns)
		out, err := golang.Generate(fileSchema, golang.Options{
			Package:    golang.PackageName(ns),
			ImportBase: req.GoImportBase,
		})
		if err != nil {
			return fmt.Errorf("tagwire: generating Go source for %q: %w", fileSchema.Path, err)
		}
		files = append(files, generated{path: fileSchema.Path, nsPath: filepath.FromSlash(ns.Key()), source: out})
	}

	if len(req.GoOuts) == 0 {
		for _, f := range files {
			fmt.Fprint(req.Stdout, f.source)
		}
		return nil
	}

	var writeErr error
	for _, dir := range req.GoOuts {
		for _, f := range files {
			dest := filepath.Join(dir, f.nsPath, goOutputFilename(f.path))
			logger.Info("writing generated Go source", zap.String("path", dest))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				writeErr = multierr.Append(writeErr, err)
				continue
			}
			if err := os.WriteFile(dest, []byte(f.source), 0o644); err != nil {
				writeErr = multierr.Append(writeErr, err)
			}
		}
	}
	return writeErr
}

// FormatRequest configures one invocation of Format.
type FormatRequest struct {
	// SchemaPath and SchemaRoot follow the same convention as
	// GenerateRequest's fields of the same name.
	SchemaPath string
	SchemaRoot string
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *zap.Logger
}

// Format loads the schema at req.SchemaPath, together with its imports
// (the loader reads every imported file, and an error in any of them is
// reported), and writes the entry schema's canonical re-printing to
// Stdout. Qualified type names are printed as written ("alias.Name").
func Format(req FormatRequest) error {
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dir, base := schemaRootAndEntry(req.SchemaPath, req.SchemaRoot)
	l := loader.New(dir, logger)
	set, sink := l.Load(base)
	if sink.HasErrors() {
		renderDiagnostics(req.Stderr, sink)
		return ErrDiagnostics
	}
	rootNS := set.Namespaces()[0]
	s, _ := set.Get(rootNS)
	return s.Format(req.Stdout)
}

// schemaRootAndEntry splits a (schemaPath, schemaRoot) pair into the
// loader's (baseDir, entryRelPath): when root is empty, schemaPath's own
// parent directory is the root, per spec.md §4.3 step 1; otherwise
// schemaPath is already relative to the given root.
func schemaRootAndEntry(schemaPath, schemaRoot string) (dir, entry string) {
	if schemaRoot != "" {
		return schemaRoot, schemaPath
	}
	return filepath.Dir(schemaPath), filepath.Base(schemaPath)
}

// loadAndValidate runs the loader and validator stages, rendering and
// returning ErrDiagnostics if either reports an error.
func loadAndValidate(schemaPath, schemaRoot string, logger *zap.Logger, stderr io.Writer) (*loader.Set, error) {
	dir, base := schemaRootAndEntry(schemaPath, schemaRoot)
	l := loader.New(dir, logger)
	set, sink := l.Load(base)
	if sink.HasErrors() {
		renderDiagnostics(stderr, sink)
		return nil, ErrDiagnostics
	}

	vsink := validate.Validate(set)
	if vsink.HasErrors() {
		renderDiagnostics(stderr, vsink)
		return nil, ErrDiagnostics
	}
	return set, nil
}

func renderDiagnostics(w io.Writer, sink *diag.Sink) {
	if w == nil {
		w = os.Stderr
	}
	for _, d := range sink.Diagnostics() {
		fmt.Fprint(w, d.String())
	}
}

// goOutputFilename derives the generated file's name from the schema
// file's own path: "foo/bar.tw" becomes "bar.tw.go".
func goOutputFilename(schemaPath string) string {
	return filepath.Base(schemaPath) + ".go"
}
