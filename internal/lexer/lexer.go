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

// Package lexer tokenizes TagWire schema source text.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/tagwire/tagwire/internal/diag"
	"github.com/tagwire/tagwire/internal/token"
)

// Tokenize scans src (the contents of the file at path, used only for
// diagnostics) into a token stream. It never stops at the first lexical
// error: it accumulates diagnostics and resynchronizes by skipping the
// offending grapheme cluster, so later, unrelated errors in the same file
// are still reported.
func Tokenize(path, src string) ([]token.Token, []*diag.Diagnostic) {
	l := &lexer{path: path, src: src}
	var toks []token.Token
	for {
		t, ok := l.next()
		if ok {
			toks = append(toks, t)
			if t.Kind == token.KindEOF {
				break
			}
		}
	}
	return toks, l.diags
}

type lexer struct {
	path  string
	src   string
	pos   int
	diags []*diag.Diagnostic
}

func (l *lexer) errorf(span token.Span, format string, args ...any) {
	l.diags = append(l.diags, diag.At(l.path, l.src, span, format, args...))
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

// peekRune returns the rune at the current position without consuming it.
func (l *lexer) peekRune() (rune, int) {
	if l.eof() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		r, size := l.peekRune()
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case r == '#':
			for !l.eof() {
				r2, size2 := l.peekRune()
				if r2 == '\n' {
					break
				}
				l.pos += size2
			}
		default:
			return
		}
	}
}

// next scans and returns the next token. ok is false only when the lexer
// resynchronized past an error and produced no token for the caller to
// append (the caller should call next again).
func (l *lexer) next() (token.Token, bool) {
	l.skipWhitespaceAndComments()
	start := l.pos
	if l.eof() {
		return token.Token{Kind: token.KindEOF, Span: token.Span{Start: start, End: start}}, true
	}

	r, size := l.peekRune()
	switch {
	case r == '{':
		l.pos += size
		return l.simple(token.KindLeftBrace, start), true
	case r == '}':
		l.pos += size
		return l.simple(token.KindRightBrace, start), true
	case r == '[':
		l.pos += size
		return l.simple(token.KindLeftBracket, start), true
	case r == ']':
		l.pos += size
		return l.simple(token.KindRightBracket, start), true
	case r == ':':
		l.pos += size
		return l.simple(token.KindColon, start), true
	case r == '.':
		l.pos += size
		return l.simple(token.KindDot, start), true
	case r == '=':
		l.pos += size
		return l.simple(token.KindEquals, start), true
	case r == ';':
		l.pos += size
		return l.simple(token.KindSemicolon, start), true
	case r == '$':
		return l.lexSigilIdentifier(start)
	case r == '\'':
		return l.lexPath(start)
	case isIdentStart(r):
		return l.lexIdentifierOrKeyword(start)
	case unicode.IsDigit(r):
		return l.lexInteger(start)
	default:
		return l.lexUnexpectedSymbol(start)
	}
}

func (l *lexer) simple(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: l.pos}}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lexIdentifierOrKeyword scans a plain (non-raw) identifier and looks it
// up in the keyword table; a match produces the corresponding keyword
// token kind, otherwise KindIdentifier.
func (l *lexer) lexIdentifierOrKeyword(start int) (token.Token, bool) {
	for !l.eof() {
		r, size := l.peekRune()
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	span := token.Span{Start: start, End: l.pos}
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Span: span, Text: text}, true
	}
	return token.Token{Kind: token.KindIdentifier, Span: span, Text: text}, true
}

// lexSigilIdentifier scans a $-sigil identifier, which names an
// identifier using its exact following text without consulting the
// keyword table — the mechanism by which a schema author can, for
// example, declare a field literally named "struct". The token's Text
// excludes the sigil (it names a $-less identifier), while its Span covers
// the sigil too; no separate sigil-less span is recorded.
func (l *lexer) lexSigilIdentifier(start int) (token.Token, bool) {
	_, size := l.peekRune() // consume the '$'
	l.pos += size
	nameStart := l.pos
	for !l.eof() {
		r, rsize := l.peekRune()
		if !isIdentCont(r) {
			break
		}
		l.pos += rsize
	}
	text := l.src[nameStart:l.pos]
	fullSpan := token.Span{Start: start, End: l.pos}
	if text == "" {
		l.errorf(fullSpan, "empty identifier after '$' sigil")
		return token.Token{}, false
	}
	return token.Token{Kind: token.KindIdentifier, Span: fullSpan, Text: text}, true
}

// lexPath scans a single-quoted path literal. Any character other than
// the closing quote or a newline is permitted verbatim inside, with no
// escape mechanism; an unterminated literal (end of file, or a bare
// newline, reached before the closing quote) is reported and the lexer
// resynchronizes at that newline or end of file.
func (l *lexer) lexPath(start int) (token.Token, bool) {
	_, size := l.peekRune() // consume the opening quote
	l.pos += size
	var b strings.Builder
	for {
		if l.eof() {
			l.errorf(token.Span{Start: start, End: l.pos}, "unterminated path literal")
			return token.Token{}, false
		}
		r, rsize := l.peekRune()
		if r == '\'' {
			l.pos += rsize
			return token.Token{
				Kind: token.KindPath,
				Span: token.Span{Start: start, End: l.pos},
				Path: b.String(),
			}, true
		}
		if r == '\n' {
			l.errorf(token.Span{Start: start, End: l.pos}, "unterminated path literal")
			return token.Token{}, false
		}
		b.WriteRune(r)
		l.pos += rsize
	}
}

// lexInteger scans a decimal integer literal and parses it as a u64,
// reporting overflow rather than silently wrapping.
func (l *lexer) lexInteger(start int) (token.Token, bool) {
	for !l.eof() {
		r, size := l.peekRune()
		if !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	span := token.Span{Start: start, End: l.pos}

	var value uint64
	for _, c := range text {
		digit := uint64(c - '0')
		if value > (^uint64(0)-digit)/10 {
			l.errorf(span, "integer literal %q overflows a 64-bit unsigned integer", text)
			return token.Token{}, false
		}
		value = value*10 + digit
	}
	return token.Token{Kind: token.KindInteger, Span: span, Text: text, Int: value}, true
}

// lexUnexpectedSymbol reports an illegal character and resynchronizes past
// the entire extended grapheme cluster it belongs to (not just one Go
// rune), so a multi-rune emoji or combining-mark sequence is quoted and
// skipped as the single user-perceived character it is.
func (l *lexer) lexUnexpectedSymbol(start int) (token.Token, bool) {
	rest := l.src[start:]
	gr := uniseg.NewGraphemes(rest)
	gr.Next()
	cluster := gr.Str()
	l.pos = start + len(cluster)
	l.errorf(token.Span{Start: start, End: l.pos}, "unexpected symbol %q", cluster)
	return token.Token{}, false
}
