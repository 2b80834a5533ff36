package loader_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/loader"
	"github.com/tagwire/tagwire/internal/schema"
)

type schemaNamespace = schema.Namespace

func memReader(files map[string]string) loader.ReadFile {
	return func(p string) ([]byte, error) {
		src, ok := files[p]
		if !ok {
			return nil, errors.New("no such file")
		}
		return []byte(src), nil
	}
}

func TestLoadFollowsImports(t *testing.T) {
	files := map[string]string{
		"main.tw":         "import 'common/point.tw';\nstruct Path {\n  a : common.Point = 0;\n}\n",
		"common/point.tw": "struct Point {\n  x : f64 = 0;\n  y : f64 = 1;\n}\n",
	}
	l := loader.NewWithReader("", nil, memReader(files))
	set, sink := l.Load("main.tw")
	require.False(t, sink.HasErrors())
	require.Len(t, set.Namespaces(), 2)

	var mainNS, pointNS schemaNamespace
	for _, ns := range set.Namespaces() {
		if ns.String() == "main" {
			mainNS = ns
		}
		if ns.String() == "common.point" {
			pointNS = ns
		}
	}
	main, ok := set.Get(mainNS)
	require.True(t, ok)
	require.Equal(t, "main.tw", main.Path)

	point, ok := set.Get(pointNS)
	require.True(t, ok)
	require.Equal(t, "common/point.tw", point.Path)
}

func TestLoadMissingImportReportsDiagnosticWithCause(t *testing.T) {
	files := map[string]string{
		"main.tw": "import 'missing.tw';\nstruct Foo { a : bool = 0; }\n",
	}
	l := loader.NewWithReader("", nil, memReader(files))
	_, sink := l.Load("main.tw")
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Cause != nil {
			found = true
		}
	}
	require.True(t, found, "expected a diagnostic with a cause chain for the unreadable import")
}

func TestLoadDetectsNamespaceCollision(t *testing.T) {
	files := map[string]string{
		"main.tw": "import 'Foo.tw';\nimport 'foo.tw';\nstruct X { a : bool = 0; }\n",
		"Foo.tw":  "struct A { a : bool = 0; }\n",
		"foo.tw":  "struct B { a : bool = 0; }\n",
	}
	l := loader.NewWithReader("", nil, memReader(files))
	_, sink := l.Load("main.tw")
	require.True(t, sink.HasErrors())
}

func TestComputeNamespaceIgnored(t *testing.T) {
	// sanity: identifiers built from path segments normalize like any other.
	require.True(t, ident.New("Common").Equal(ident.New("common")))
}

func TestLoadReadsRealTestdataFixturesAndAliasedImports(t *testing.T) {
	l := loader.New("../../testdata", nil)
	set, sink := l.Load("geometry/shapes.tw")
	require.False(t, sink.HasErrors())
	require.Len(t, set.Namespaces(), 2)

	var shapesNS schemaNamespace
	for _, ns := range set.Namespaces() {
		if ns.String() == "geometry.shapes" {
			shapesNS = ns
		}
	}
	shapes, ok := set.Get(shapesNS)
	require.True(t, ok)
	_, ok = shapes.Declarations.Get(ident.New("Shape"))
	require.True(t, ok)
	_, ok = shapes.Declarations.Get(ident.New("Polygon"))
	require.True(t, ok)

	// The file imports common/point.tw twice under two distinct aliases
	// ("common" and "origin"); both must resolve to the same namespace.
	common, ok := shapes.Imports.Get(ident.New("common"))
	require.True(t, ok)
	origin, ok := shapes.Imports.Get(ident.New("origin"))
	require.True(t, ok)
	require.Equal(t, common.Namespace.Key(), origin.Namespace.Key())
}
