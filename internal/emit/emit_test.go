package emit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/emit"
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/schema"
)

func structDecl(fields ...*schema.Field) *schema.Declaration {
	decl := &schema.Declaration{
		Kind:   schema.DeclStruct,
		Name:   ident.New("Point"),
		Fields: &schema.OrderedMap[*schema.Field]{},
	}
	for _, f := range fields {
		decl.Fields.Set(f.Name, f)
		decl.FieldOrder = append(decl.FieldOrder, f.Name)
	}
	return decl
}

func TestBuildFlavorSetPartitionsByRule(t *testing.T) {
	decl := structDecl(
		&schema.Field{Name: ident.New("a"), Rule: schema.RuleRequired, Type: schema.Type{Kind: schema.TypeU64}, Index: 0},
		&schema.Field{Name: ident.New("b"), Rule: schema.RuleAsymmetric, Type: schema.Type{Kind: schema.TypeU64}, Index: 1},
		&schema.Field{Name: ident.New("c"), Rule: schema.RuleOptional, Type: schema.Type{Kind: schema.TypeU64}, Index: 2},
	)
	fs := emit.BuildFlavorSet(decl)
	require.Len(t, fs.Required, 1)
	require.Len(t, fs.Asymmetric, 1)
	require.Len(t, fs.Optional, 1)
	require.True(t, fs.HasInToOut)
	require.Len(t, fs.NonRequired(), 2)
	require.Equal(t, "b", fs.NonRequired()[0].Name.Original())
	require.Equal(t, "c", fs.NonRequired()[1].Name.Original())
}

func TestBuildFlavorSetAllRequiredHasNoInToOut(t *testing.T) {
	decl := structDecl(
		&schema.Field{Name: ident.New("a"), Rule: schema.RuleRequired, Type: schema.Type{Kind: schema.TypeU64}, Index: 0},
	)
	fs := emit.BuildFlavorSet(decl)
	require.False(t, fs.HasInToOut)
	require.Empty(t, fs.NonRequired())
}

func TestBuildAllOrdersDeclarationsByNormalizedName(t *testing.T) {
	s := schema.NewSchema("x.tw")
	zetaDecl := structDecl()
	zetaDecl.Name = ident.New("Zeta")
	s.Declarations.Set(ident.New("Zeta"), zetaDecl)
	zDecl := structDecl()
	zDecl.Name = ident.New("Alpha")
	s.Declarations.Set(ident.New("Alpha"), zDecl)

	sets := emit.BuildAll(s)
	require.Len(t, sets, 2)
	require.Equal(t, "Alpha", sets[0].Decl.Name.Original())
	require.Equal(t, "Zeta", sets[1].Decl.Name.Original())
}
