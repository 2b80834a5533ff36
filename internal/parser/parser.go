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

// Package parser builds a schema.Schema from a token stream, recovering
// from per-field and per-declaration errors by scanning ahead to a
// resynchronization point rather than abandoning the whole file at the
// first mistake.
package parser

import (
	"github.com/tagwire/tagwire/internal/diag"
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/schema"
	"github.com/tagwire/tagwire/internal/token"
)

// Parse builds a Schema from toks, the token stream lexer.Tokenize produced
// for path/src. It returns the best-effort schema it could build alongside
// any diagnostics; callers must check for errors before trusting the
// returned schema for anything beyond further diagnosis.
func Parse(path, src string, toks []token.Token) (*schema.Schema, []*diag.Diagnostic) {
	p := &parser{path: path, src: src, toks: toks}
	s := schema.NewSchema(path)
	p.parseImports(s)
	p.parseDeclarations(s)
	return s, p.diags
}

type parser struct {
	path  string
	src   string
	toks  []token.Token
	pos   int
	diags []*diag.Diagnostic
}

func (p *parser) errorf(span token.Span, format string, args ...any) {
	p.diags = append(p.diags, diag.At(p.path, p.src, span, format, args...))
}

func (p *parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.KindEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *parser) expect(kind token.Kind) (token.Token, bool) {
	t := p.peek()
	if t.Kind != kind {
		p.errorf(t.Span, "expected %s, found %s", kind, t)
		return t, false
	}
	return p.advance(), true
}

// parseImports consumes a leading run of `import` statements.
func (p *parser) parseImports(s *schema.Schema) {
	for p.at(token.KindImport) {
		p.parseImport(s)
	}
}

func (p *parser) parseImport(s *schema.Schema) {
	start := p.peek().Span
	p.advance() // 'import'
	pathTok, ok := p.expect(token.KindPath)
	if !ok {
		p.recoverToSemicolonOrBrace()
		return
	}
	alias := ident.New(stemForAlias(pathTok.Path))
	if p.at(token.KindAs) {
		p.advance()
		nameTok, ok := p.expect(token.KindIdentifier)
		if ok {
			alias = ident.New(nameTok.Text)
		}
	}
	end := p.peek().Span
	if _, ok := p.expect(token.KindSemicolon); !ok {
		p.recoverToSemicolonOrBrace()
	}
	imp := &schema.Import{
		Span:  start.Join(end),
		Path:  pathTok.Path,
		Alias: alias,
	}
	if s.Imports.Set(alias, imp) {
		p.errorf(imp.Span, "duplicate import alias %q", alias.Original())
		return
	}
	s.ImportOrder = append(s.ImportOrder, alias)
}

// stemForAlias mirrors schema.stemOf: the default alias inferred from an
// import path when no explicit "as" clause is present.
func stemForAlias(p string) string {
	base := p
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// parseDeclarations consumes the remaining `struct`/`choice` declarations.
func (p *parser) parseDeclarations(s *schema.Schema) {
	for !p.at(token.KindEOF) {
		switch p.peek().Kind {
		case token.KindStruct, token.KindChoice:
			p.parseDeclaration(s)
		default:
			t := p.peek()
			p.errorf(t.Span, "expected 'struct' or 'choice', found %s", t)
			p.advance()
		}
	}
}

func (p *parser) parseDeclaration(s *schema.Schema) {
	kindTok := p.advance()
	kind := schema.DeclStruct
	if kindTok.Kind == token.KindChoice {
		kind = schema.DeclChoice
	}
	nameTok, ok := p.expect(token.KindIdentifier)
	if !ok {
		p.recoverToRightBrace()
		return
	}
	if _, ok := p.expect(token.KindLeftBrace); !ok {
		p.recoverToRightBrace()
		return
	}
	decl := &schema.Declaration{
		Kind:   kind,
		Name:   ident.New(nameTok.Text),
		Fields: &schema.OrderedMap[*schema.Field]{},
	}
	for !p.at(token.KindRightBrace) && !p.at(token.KindEOF) {
		p.parseField(decl)
	}
	end := p.peek().Span
	p.expect(token.KindRightBrace)
	decl.Span = kindTok.Span.Join(end)
	if s.Declarations.Set(decl.Name, decl) {
		p.errorf(decl.Span, "duplicate declaration %q", decl.Name.Original())
	}
}

func (p *parser) parseField(decl *schema.Declaration) {
	start := p.peek().Span
	rule := schema.RuleRequired
	switch p.peek().Kind {
	case token.KindAsymmetric:
		rule = schema.RuleAsymmetric
		p.advance()
	case token.KindOptional:
		rule = schema.RuleOptional
		p.advance()
	}
	nameTok, ok := p.expect(token.KindIdentifier)
	if !ok {
		p.recoverToSemicolonOrBrace()
		return
	}
	// A field's ": type" is optional; omitting it means unit, letting a
	// field serve purely as a choice variant tag or a presence marker.
	typ := schema.Type{Kind: schema.TypeUnit}
	if p.at(token.KindColon) {
		p.advance()
		typ, ok = p.parseType()
		if !ok {
			p.recoverToSemicolonOrBrace()
			return
		}
	}
	if _, ok := p.expect(token.KindEquals); !ok {
		p.recoverToSemicolonOrBrace()
		return
	}
	indexTok, ok := p.expect(token.KindInteger)
	if !ok {
		p.recoverToSemicolonOrBrace()
		return
	}
	end := p.peek().Span
	p.expect(token.KindSemicolon)

	field := &schema.Field{
		Span:  start.Join(end),
		Rule:  rule,
		Name:  ident.New(nameTok.Text),
		Type:  typ,
		Index: indexTok.Int,
	}
	if decl.Fields.Set(field.Name, field) {
		p.errorf(field.Span, "duplicate field %q", field.Name.Original())
		return
	}
	decl.FieldOrder = append(decl.FieldOrder, field.Name)
}

func (p *parser) parseType() (schema.Type, bool) {
	t := p.peek()
	switch t.Kind {
	case token.KindBool:
		p.advance()
		return schema.Type{Kind: schema.TypeBool}, true
	case token.KindBytes:
		p.advance()
		return schema.Type{Kind: schema.TypeBytes}, true
	case token.KindF64:
		p.advance()
		return schema.Type{Kind: schema.TypeF64}, true
	case token.KindS64:
		p.advance()
		return schema.Type{Kind: schema.TypeS64}, true
	case token.KindString:
		p.advance()
		return schema.Type{Kind: schema.TypeString}, true
	case token.KindU64:
		p.advance()
		return schema.Type{Kind: schema.TypeU64}, true
	case token.KindUnit:
		p.advance()
		return schema.Type{Kind: schema.TypeUnit}, true
	case token.KindLeftBracket:
		p.advance()
		inner, ok := p.parseType()
		if !ok {
			return schema.Type{}, false
		}
		if _, ok := p.expect(token.KindRightBracket); !ok {
			return schema.Type{}, false
		}
		return schema.Type{Kind: schema.TypeArray, Inner: &inner}, true
	case token.KindIdentifier:
		// A qualified reference to an imported declaration is written
		// "alias.Name"; a bare identifier names a declaration in the
		// same file.
		p.advance()
		first := ident.New(t.Text)
		if p.at(token.KindDot) {
			p.advance()
			nameTok, ok := p.expect(token.KindIdentifier)
			if !ok {
				return schema.Type{}, false
			}
			alias := first
			return schema.Type{Kind: schema.TypeCustom, Import: &alias, Name: ident.New(nameTok.Text)}, true
		}
		return schema.Type{Kind: schema.TypeCustom, Name: first}, true
	default:
		p.errorf(t.Span, "expected a type, found %s", t)
		return schema.Type{}, false
	}
}

// recoverToSemicolonOrBrace scans forward past tokens until it finds a
// semicolon (consumed, ending the broken field) or a right brace (left
// unconsumed, ending the declaration), so one malformed field does not
// prevent parsing the rest of the declaration.
func (p *parser) recoverToSemicolonOrBrace() {
	for {
		switch p.peek().Kind {
		case token.KindSemicolon:
			p.advance()
			return
		case token.KindRightBrace, token.KindEOF:
			return
		default:
			p.advance()
		}
	}
}

// recoverToRightBrace scans forward to and consumes the next right brace
// (or end of file), so one malformed declaration does not prevent parsing
// the rest of the file.
func (p *parser) recoverToRightBrace() {
	for {
		switch p.peek().Kind {
		case token.KindRightBrace:
			p.advance()
			return
		case token.KindEOF:
			return
		default:
			p.advance()
		}
	}
}
