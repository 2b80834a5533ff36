package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/lexer"
	"github.com/tagwire/tagwire/internal/parser"
	"github.com/tagwire/tagwire/internal/schema"
)

func parse(t *testing.T, src string) *schema.Schema {
	t.Helper()
	toks, diags := lexer.Tokenize("test.tw", src)
	require.Empty(t, diags)
	s, diags := parser.Parse("test.tw", src, toks)
	require.Empty(t, diags)
	return s
}

func TestParseStructWithFields(t *testing.T) {
	s := parse(t, `struct Point {
  x : F64 = 0;
  optional y : F64 = 1;
  asymmetric z : F64 = 2;
}
`)
	decl, ok := s.Declarations.Get(ident.New("Point"))
	require.True(t, ok)
	require.Equal(t, schema.DeclStruct, decl.Kind)
	require.Equal(t, 3, decl.Fields.Len())

	x, ok := decl.Fields.Get(ident.New("x"))
	require.True(t, ok)
	require.Equal(t, schema.RuleRequired, x.Rule)
	require.Equal(t, uint64(0), x.Index)

	y, ok := decl.Fields.Get(ident.New("y"))
	require.True(t, ok)
	require.Equal(t, schema.RuleOptional, y.Rule)
}

func TestParseImportWithAlias(t *testing.T) {
	s := parse(t, "import 'common/types.tw' as common;\nstruct Foo { a : bool = 0; }\n")
	imp, ok := s.Imports.Get(ident.New("common"))
	require.True(t, ok)
	require.Equal(t, "common/types.tw", imp.Path)
}

func TestParseArrayAndCustomType(t *testing.T) {
	s := parse(t, "struct Foo {\n  a : [u64] = 0;\n  b : common.Point = 1;\n}\n")
	decl, _ := s.Declarations.Get(ident.New("Foo"))
	a, _ := decl.Fields.Get(ident.New("a"))
	require.Equal(t, schema.TypeArray, a.Type.Kind)
	require.Equal(t, schema.TypeU64, a.Type.Inner.Kind)

	b, _ := decl.Fields.Get(ident.New("b"))
	require.Equal(t, schema.TypeCustom, b.Type.Kind)
	require.NotNil(t, b.Type.Import)
	require.Equal(t, "common", b.Type.Import.Original())
	require.Equal(t, "Point", b.Type.Name.Original())
}

func TestParseRecoversFromBadField(t *testing.T) {
	src := "struct Foo {\n  a : ??? = 0;\n  b : u64 = 1;\n}\n"
	toks, lexDiags := lexer.Tokenize("test.tw", src)
	require.NotEmpty(t, lexDiags)
	s, diags := parser.Parse("test.tw", src, toks)
	require.NotEmpty(t, diags)
	decl, ok := s.Declarations.Get(ident.New("Foo"))
	require.True(t, ok)
	_, ok = decl.Fields.Get(ident.New("b"))
	require.True(t, ok, "parser should recover and still see field b")
}

func TestParseFieldWithoutTypeDefaultsToUnit(t *testing.T) {
	s := parse(t, "choice Signal {\n  ping = 0;\n  pong : bool = 1;\n}\n")
	decl, ok := s.Declarations.Get(ident.New("Signal"))
	require.True(t, ok)

	ping, ok := decl.Fields.Get(ident.New("ping"))
	require.True(t, ok)
	require.Equal(t, schema.TypeUnit, ping.Type.Kind)

	pong, ok := decl.Fields.Get(ident.New("pong"))
	require.True(t, ok)
	require.Equal(t, schema.TypeBool, pong.Type.Kind)
}

func TestParseChoice(t *testing.T) {
	s := parse(t, "choice Shape {\n  circle : f64 = 0;\n  square : f64 = 1;\n}\n")
	decl, ok := s.Declarations.Get(ident.New("Shape"))
	require.True(t, ok)
	require.Equal(t, schema.DeclChoice, decl.Kind)
}
