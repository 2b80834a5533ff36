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

// Package diag is TagWire's diagnostics model: every compiler stage
// (tokenizer, parser, loader, validator) accumulates diagnostics instead of
// stopping at the first error, and reports them all at the end of the
// stage. Rendering diagnostics to a terminal (colorization, carets, a
// "did you mean" suggester) is left to an external collaborator; this
// package only carries the structured information such a renderer needs.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tagwire/tagwire/internal/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	// SeverityError means compilation cannot proceed; the annotated file
	// produced no usable result.
	SeverityError Severity = iota
	// SeverityWarning surfaces a condition that does not block
	// compilation (for example, an asymmetric field that could be
	// required instead).
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported finding: a message, optionally anchored to a
// source file and span, optionally chained to the diagnostic (or error)
// that caused it. Modeled on the teacher's FileAnnotation (file info plus
// line/column span, type, and message), generalized with an optional
// causal chain so loader errors can cite both the failing import statement
// and the underlying error from the imported file.
type Diagnostic struct {
	Severity Severity
	Message  string

	// Path is the source file this diagnostic is about, or "" if it is
	// not tied to a particular file (for example, a CLI usage error).
	Path string

	// Span is the highlighted byte range within Path, or the zero Span if
	// this diagnostic does not point at a specific location.
	Span    token.Span
	HasSpan bool

	// Source, if non-empty, is the full text of Path, used to render the
	// line(s) covered by Span.
	Source string

	// Cause chains to the diagnostic that explains why this one occurred,
	// for example an import statement's diagnostic wrapping the imported
	// file's own parse diagnostic.
	Cause *Diagnostic
}

// New creates a plain, file-less error diagnostic.
func New(format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// At creates an error diagnostic anchored to a span within path.
func At(path string, source string, span token.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Span:     span,
		HasSpan:  true,
		Source:   source,
	}
}

// Warningf creates a warning diagnostic anchored to a span within path.
func Warningf(path string, source string, span token.Span, format string, args ...any) *Diagnostic {
	d := At(path, source, span, format, args...)
	d.Severity = SeverityWarning
	return d
}

// WithCause returns a copy of d with cause attached as the underlying
// reason, matching the loader's "import failed because <cause>" reporting.
func (d *Diagnostic) WithCause(cause *Diagnostic) *Diagnostic {
	cp := *d
	cp.Cause = cause
	return &cp
}

// Error implements the error interface, so a *Diagnostic can be returned
// anywhere a Go error is expected (for example from internal/loader's
// top-level entry point when it chooses to surface a single fatal
// diagnostic rather than a Sink).
func (d *Diagnostic) Error() string {
	return d.String()
}

// String renders the diagnostic as "severity: path:line:col: message",
// including a source listing when a span is present, and recursively
// rendering the cause chain indented beneath it.
func (d *Diagnostic) String() string {
	var b strings.Builder
	d.render(&b, 0)
	return b.String()
}

func (d *Diagnostic) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if d.HasSpan {
		line, col := lineCol(d.Source, d.Span.Start)
		fmt.Fprintf(b, "%s%s: %s:%d:%d: %s\n", indent, d.Severity, d.Path, line, col, d.Message)
		if listing := sourceListing(d.Source, d.Span); listing != "" {
			for _, l := range strings.Split(listing, "\n") {
				fmt.Fprintf(b, "%s  %s\n", indent, l)
			}
		}
	} else if d.Path != "" {
		fmt.Fprintf(b, "%s%s: %s: %s\n", indent, d.Severity, d.Path, d.Message)
	} else {
		fmt.Fprintf(b, "%s%s: %s\n", indent, d.Severity, d.Message)
	}
	if d.Cause != nil {
		d.Cause.render(b, depth+1)
	}
}

// jsonDiagnostic is the wire shape for MarshalJSON, matching
// bufanalysis.FileAnnotation's json.Marshaler pattern of a flat,
// renderer-friendly record.
type jsonDiagnostic struct {
	Severity string          `json:"severity"`
	Message  string          `json:"message"`
	Path     string          `json:"path,omitempty"`
	Line     int             `json:"line,omitempty"`
	Column   int             `json:"column,omitempty"`
	Cause    *jsonDiagnostic `json:"cause,omitempty"`
}

// MarshalJSON renders the diagnostic for machine consumption by an
// external diagnostic-rendering collaborator.
func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toJSON())
}

func (d *Diagnostic) toJSON() *jsonDiagnostic {
	j := &jsonDiagnostic{
		Severity: d.Severity.String(),
		Message:  d.Message,
		Path:     d.Path,
	}
	if d.HasSpan {
		j.Line, j.Column = lineCol(d.Source, d.Span.Start)
	}
	if d.Cause != nil {
		j.Cause = d.Cause.toJSON()
	}
	return j
}

// lineCol converts a byte offset in source to a 1-based line and column.
func lineCol(source string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(source) {
		offset = len(source)
	}
	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// sourceListing renders the line(s) covered by span, for a human-readable
// diagnostic body. It does not attempt caret/underline decoration; that is
// left to the external renderer.
func sourceListing(source string, span token.Span) string {
	if source == "" {
		return ""
	}
	start := span.Start
	end := span.End
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	if start > end {
		return ""
	}
	lineStart := strings.LastIndexByte(source[:start], '\n') + 1
	lineEndRel := strings.IndexByte(source[end:], '\n')
	lineEnd := len(source)
	if lineEndRel >= 0 {
		lineEnd = end + lineEndRel
	}
	return source[lineStart:lineEnd]
}

// Sink accumulates diagnostics across a compiler stage instead of stopping
// at the first failure, matching the "accumulate, don't short-circuit"
// rule every stage of this pipeline follows.
type Sink struct {
	diagnostics []*Diagnostic
}

// Add appends d to the sink. A nil d is ignored, so callers can write
// sink.Add(maybeNilDiagnostic) without a guard.
func (s *Sink) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	s.diagnostics = append(s.diagnostics, d)
}

// Diagnostics returns every diagnostic added so far, in the order added.
func (s *Sink) Diagnostics() []*Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any accumulated diagnostic is SeverityError.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Merge appends another sink's diagnostics onto s, matching error_merger.rs's
// role of combining per-stage error batches into one report.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}
	s.diagnostics = append(s.diagnostics, other.diagnostics...)
}
