package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/schema"
)

func ns(parts ...string) schema.Namespace {
	n := make(schema.Namespace, len(parts))
	for i, p := range parts {
		n[i] = ident.New(p)
	}
	return n
}

func TestRelativizeNamespaceSiblings(t *testing.T) {
	from := ns("a", "b", "foo")
	target := ns("a", "b", "bar")
	ascents, tail := schema.RelativizeNamespace(from, target)
	require.Equal(t, 0, ascents)
	require.True(t, tail.Equal(ns("bar")))
}

func TestRelativizeNamespaceAscends(t *testing.T) {
	from := ns("a", "b", "c", "foo")
	target := ns("a", "x")
	ascents, tail := schema.RelativizeNamespace(from, target)
	require.Equal(t, 2, ascents)
	require.True(t, tail.Equal(ns("x")))
}

func TestOrderedMapOrdersByNormalizedName(t *testing.T) {
	m := &schema.OrderedMap[int]{}
	m.Set(ident.New("zeta"), 1)
	m.Set(ident.New("alpha"), 2)
	m.Set(ident.New("Mu"), 3)
	var names []string
	m.Range(func(name ident.Identifier, _ int) bool {
		names = append(names, name.SnakeCase())
		return true
	})
	require.Equal(t, []string{"alpha", "mu", "zeta"}, names)
}

func TestFormatPrintsSimpleStruct(t *testing.T) {
	s := schema.NewSchema("point.tw")
	decl := &schema.Declaration{
		Kind:   schema.DeclStruct,
		Name:   ident.New("Point"),
		Fields: &schema.OrderedMap[*schema.Field]{},
	}
	decl.Fields.Set(ident.New("x"), &schema.Field{Name: ident.New("x"), Type: schema.Type{Kind: schema.TypeF64}, Index: 0})
	decl.Fields.Set(ident.New("y"), &schema.Field{Name: ident.New("y"), Type: schema.Type{Kind: schema.TypeF64}, Index: 1})
	s.Declarations.Set(ident.New("Point"), decl)

	var b strings.Builder
	require.NoError(t, s.Format(&b))
	require.Equal(t, "struct Point {\n  x : F64 = 0;\n  y : F64 = 1;\n}\n", b.String())
}
