package golang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/emit/golang"
	"github.com/tagwire/tagwire/internal/lexer"
	"github.com/tagwire/tagwire/internal/parser"
	"github.com/tagwire/tagwire/internal/schema"
)

func parseSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	toks, diags := lexer.Tokenize("test.tw", src)
	require.Empty(t, diags)
	s, diags := parser.Parse("test.tw", src, toks)
	require.Empty(t, diags)
	return s
}

func TestGenerateStructProducesThreeFlavors(t *testing.T) {
	s := parseSchema(t, "struct Point {\n"+
		"  x : f64 = 0;\n"+
		"  asymmetric label : string = 1;\n"+
		"  optional note : string = 2;\n"+
		"}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)

	require.Contains(t, out, "package tw")
	require.Contains(t, out, "type PointOut struct")
	require.Contains(t, out, "type PointIn struct")
	require.Contains(t, out, "type PointInToOut struct")
	require.Contains(t, out, "func (v PointOut) MarshalOut() []byte")
	require.Contains(t, out, "func UnmarshalPointIn(data []byte) (PointIn, error)")
	require.Contains(t, out, "func (adapter PointInToOut) ToOut(in PointIn) PointOut")
	require.Contains(t, out, "func (v PointOut) ToIn() PointIn")

	// Required field x is unconditional on both flavors.
	require.Contains(t, out, "X float64")
	// Asymmetric/optional fields carry an Option[T] wrapper on In.
	require.Contains(t, out, "Label wire.Option[string]")
	require.Contains(t, out, "Note wire.Option[string]")
}

func TestGenerateStructAllRequiredSkipsInToOut(t *testing.T) {
	s := parseSchema(t, "struct Flat {\n  a : u64 = 0;\n}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)
	require.NotContains(t, out, "FlatInToOut")
}

func TestGenerateChoiceProducesVariantsAndFallbackDecode(t *testing.T) {
	s := parseSchema(t, "choice Shape {\n"+
		"  circle : f64 = 0;\n"+
		"  square : f64 = 1;\n"+
		"}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)

	require.Contains(t, out, "type Shape interface")
	require.Contains(t, out, "type ShapeCircle struct")
	require.Contains(t, out, "type ShapeSquare struct")
	require.Contains(t, out, "func MarshalShape(v Shape, fallbacks ...Shape) []byte")
	require.Contains(t, out, "func UnmarshalShape(data []byte) (Shape, error)")
	require.Contains(t, out, "wire.ErrChoiceChainExhausted")
}

func TestGenerateChoiceMarshalAcceptsFallbackChain(t *testing.T) {
	s := parseSchema(t, "choice Shape {\n"+
		"  circle : f64 = 0;\n"+
		"  square : f64 = 1;\n"+
		"  asymmetric triangle : f64 = 2;\n"+
		"}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)

	// A writer encoding the newly added "triangle" variant for a reader on
	// an older schema appends a fallback entry the reader does recognize;
	// the generated Marshal must accept one (or more) to build that chain.
	require.Contains(t, out, "entries := make([]wire.ChoiceEntry, 0, 1+len(fallbacks))")
	require.Contains(t, out, "entries = append(entries, wire.ChoiceEntry{Index: v.variantIndexShape(), Payload: v.marshalPayloadShape()})")
	require.Contains(t, out, "for _, fb := range fallbacks {")
	require.Contains(t, out, "return wire.EncodeChoiceChain(entries)")
}

func TestGenerateArrayFieldUsesFixedOrVariableHelper(t *testing.T) {
	s := parseSchema(t, "struct Nums {\n"+
		"  fixed : [f64] = 0;\n"+
		"  variable : [string] = 1;\n"+
		"}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)
	require.Contains(t, out, "wire.EncodeFixedArray(")
	require.Contains(t, out, "wire.EncodeVariableArray(")
}

func TestGenerateCustomTypeReferencesPascalCaseName(t *testing.T) {
	s := parseSchema(t, "struct Wrapper {\n"+
		"  inner : Inner = 0;\n"+
		"}\nstruct Inner {\n  v : u64 = 0;\n}\n")
	out, err := golang.Generate(s, golang.Options{Package: "tw"})
	require.NoError(t, err)
	require.Contains(t, out, "Inner Inner")
	require.Contains(t, out, "Inner.MarshalOut()")
	require.Contains(t, out, "UnmarshalInnerIn(")
}
