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

// Package diagtest collects small testify-based assertion helpers shared
// by this repository's own test suite, in the spirit of the original
// Rust implementation's assert_same!/assert_fails! macros: reduce the
// boilerplate of the two patterns that recur in almost every stage's
// tests, "parse/load/validate this source and compare the result" and
// "parse/load/validate this source and expect exactly one diagnostic
// whose message contains a given substring".
package diagtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/diag"
)

// RequireNoDiagnostics fails t with every accumulated diagnostic rendered
// if sink has any, the common "this stage should succeed cleanly" check.
func RequireNoDiagnostics(t *testing.T, sink *diag.Sink) {
	t.Helper()
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %s", renderAll(sink))
}

// RequireDiagnosticContains fails t unless at least one diagnostic in sink
// has a message containing substr, the analog of assert_fails! checking a
// specific error text rather than merely "some error occurred".
func RequireDiagnosticContains(t *testing.T, sink *diag.Sink, substr string) {
	t.Helper()
	require.True(t, sink.HasErrors(), "expected at least one diagnostic, got none")
	for _, d := range sink.Diagnostics() {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	require.Fail(t, "no diagnostic matched", "wanted a message containing %q, got: %s", substr, renderAll(sink))
}

// RequireExactlyOneDiagnostic fails t unless sink holds exactly one
// diagnostic, returning it for further assertions (on Path, Span, Cause).
func RequireExactlyOneDiagnostic(t *testing.T, sink *diag.Sink) *diag.Diagnostic {
	t.Helper()
	require.Len(t, sink.Diagnostics(), 1, "expected exactly one diagnostic, got: %s", renderAll(sink))
	return sink.Diagnostics()[0]
}

func renderAll(sink *diag.Sink) string {
	var out string
	for i, d := range sink.Diagnostics() {
		if i > 0 {
			out += "; "
		}
		out += d.String()
	}
	return out
}

