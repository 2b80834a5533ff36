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

// Package ident implements the case-insensitive identifier type used
// throughout schema source: the original spelling is preserved for
// diagnostics and code emission, while comparison, ordering, and map keys
// all go through a normalized snake_case form.
package ident

import (
	"strings"
	"unicode"
)

// Identifier is a name as written by the schema author, together with its
// normalized snake_case form. Two identifiers that normalize to the same
// snake_case spelling are the same identifier for every purpose except
// rendering the original source back to the user.
type Identifier struct {
	original string
	snake    string
}

// New builds an Identifier from raw source text. The caller is responsible
// for having already validated that raw is a legal identifier shape (see
// the tokenizer); New itself does not reject malformed input, it only
// normalizes it.
func New(raw string) Identifier {
	return Identifier{original: raw, snake: toSnakeCase(raw)}
}

// Original returns the identifier exactly as it was written in source.
func (id Identifier) Original() string {
	return id.original
}

// SnakeCase returns the normalized snake_case spelling used for comparison,
// ordering, map keys, and generated field/variant names in languages that
// use snake_case.
func (id Identifier) SnakeCase() string {
	return id.snake
}

// PascalCase returns the identifier rendered in PascalCase, for languages
// (including the Go emitter) that name exported types and fields that way.
func (id Identifier) PascalCase() string {
	words := splitWords(id.original)
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// CamelCase returns the identifier in lowerCamelCase.
func (id Identifier) CamelCase() string {
	pascal := id.PascalCase()
	if pascal == "" {
		return pascal
	}
	r := []rune(pascal)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// IsZero reports whether this is the zero-value Identifier (no name).
func (id Identifier) IsZero() bool {
	return id.original == "" && id.snake == ""
}

// Equal reports whether two identifiers normalize to the same name.
func (id Identifier) Equal(other Identifier) bool {
	return id.snake == other.snake
}

// Less orders identifiers by their normalized snake_case spelling, giving a
// total order suitable for deterministic ordered maps and sorted output.
func (id Identifier) Less(other Identifier) bool {
	return id.snake < other.snake
}

// Compare returns -1, 0, or 1 comparing id to other by normalized spelling.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.snake < other.snake:
		return -1
	case id.snake > other.snake:
		return 1
	default:
		return 0
	}
}

// String implements fmt.Stringer, returning the original spelling.
func (id Identifier) String() string {
	return id.original
}

// toSnakeCase normalizes raw source spelling (camelCase, PascalCase, or
// already-snake_case, with any run of underscores) into canonical
// snake_case: words are split on underscore runs and on upper/lower or
// letter/digit boundaries, lowercased, and rejoined with single
// underscores.
func toSnakeCase(raw string) string {
	words := splitWords(raw)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// splitWords splits an identifier into its constituent words, the same
// boundaries naming_conventions.rs uses: underscore runs always split;
// within a run of letters, a transition from lowercase to uppercase starts
// a new word, and inside a run of uppercase letters the last uppercase
// letter before a following lowercase letter starts a new word (so
// "HTTPSServer" splits as "HTTPS" / "Server", not "H" "T" "T" "P" "S"
// "Server"); a transition between letters and digits also splits.
func splitWords(raw string) []string {
	var words []string
	var cur []rune
	runes := []rune(raw)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for i, r := range runes {
		switch {
		case r == '_':
			flush()
			continue
		case i == 0:
			// first rune of the whole identifier, or first after flush
		case isDigit(r) != isDigit(runes[i-1]) && (isLetter(r) || isLetter(runes[i-1])):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
		case unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}
