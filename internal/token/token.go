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

// Package token defines the lexical tokens produced by internal/lexer.
package token

import "fmt"

// Span is a half-open byte-offset range [Start, End) into a source file.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both a and b.
func (a Span) Join(b Span) Span {
	s := Span{Start: a.Start, End: a.End}
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Kind enumerates the lexical categories of a Token.
type Kind int

const (
	// Keywords.
	KindAs Kind = iota
	KindAsymmetric
	KindBool
	KindBytes
	KindChoice
	KindF64
	KindImport
	KindOptional
	KindS64
	KindString
	KindStruct
	KindU64
	KindUnit

	// Symbols.
	KindLeftBrace    // {
	KindRightBrace   // }
	KindLeftBracket  // [
	KindRightBracket // ]
	KindColon        // :
	KindDot          // .
	KindEquals       // =
	KindSemicolon    // ;

	// Literals and names.
	KindIdentifier
	KindInteger
	KindPath

	KindEOF
)

// Keywords maps reserved words to their token kind. The tokenizer consults
// this table after lexing a plain identifier to decide whether it is in
// fact a keyword; an identifier written with a leading '$' sigil never
// consults this table and is always KindIdentifier.
var Keywords = map[string]Kind{
	"as":         KindAs,
	"asymmetric": KindAsymmetric,
	"bool":       KindBool,
	"bytes":      KindBytes,
	"choice":     KindChoice,
	"f64":        KindF64,
	"import":     KindImport,
	"optional":   KindOptional,
	"s64":        KindS64,
	"string":     KindString,
	"struct":     KindStruct,
	"u64":        KindU64,
	"unit":       KindUnit,
}

func (k Kind) String() string {
	switch k {
	case KindAs:
		return "as"
	case KindAsymmetric:
		return "asymmetric"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindChoice:
		return "choice"
	case KindF64:
		return "f64"
	case KindImport:
		return "import"
	case KindOptional:
		return "optional"
	case KindS64:
		return "s64"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindU64:
		return "u64"
	case KindUnit:
		return "unit"
	case KindLeftBrace:
		return "{"
	case KindRightBrace:
		return "}"
	case KindLeftBracket:
		return "["
	case KindRightBracket:
		return "]"
	case KindColon:
		return ":"
	case KindDot:
		return "."
	case KindEquals:
		return "="
	case KindSemicolon:
		return ";"
	case KindIdentifier:
		return "identifier"
	case KindInteger:
		return "integer"
	case KindPath:
		return "path"
	case KindEOF:
		return "end of file"
	default:
		return "unknown"
	}
}

// Token is one lexical token together with its source span and, for
// variant kinds that carry a payload, that payload.
type Token struct {
	Kind Kind
	Span Span

	// Text is the token's raw source text, used for identifiers (original
	// spelling, before normalization) and for diagnostics that quote the
	// surface form.
	Text string

	// Int holds the parsed value for KindInteger tokens.
	Int uint64

	// Path holds the unescaped contents for KindPath tokens.
	Path string
}

func (t Token) String() string {
	switch t.Kind {
	case KindIdentifier:
		return fmt.Sprintf("identifier %q", t.Text)
	case KindInteger:
		return fmt.Sprintf("integer %d", t.Int)
	case KindPath:
		return fmt.Sprintf("path %q", t.Path)
	default:
		return t.Kind.String()
	}
}
