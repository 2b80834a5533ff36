package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/cli"
)

func TestGenerateWritesGoSourceForEveryFileInTheSet(t *testing.T) {
	out := t.TempDir()
	var stderr bytes.Buffer
	err := cli.Generate(cli.GenerateRequest{
		SchemaRoot:   "../../testdata",
		SchemaPath:   "geometry/shapes.tw",
		GoOuts:       []string{out},
		GoImportBase: "github.com/tagwire/tagwire/gen",
		Stdout:       &bytes.Buffer{},
		Stderr:       &stderr,
	})
	require.NoError(t, err, "stderr: %s", stderr.String())

	// shapes.tw has namespace ["geometry", "shapes"], so its generated
	// package lives under out/geometry/shapes, named after the final
	// namespace component.
	shapesOut, err := os.ReadFile(filepath.Join(out, "geometry", "shapes", "shapes.tw.go"))
	require.NoError(t, err)
	require.Contains(t, string(shapesOut), "package shapes")
	require.Contains(t, string(shapesOut), "type Shape interface")
	require.Contains(t, string(shapesOut), "type PolygonOut struct")
	// Polygon.Vertices is [common.Point]; the generated field and
	// MarshalOut/UnmarshalPointIn calls must be qualified with the "common"
	// import alias, not the bare (undefined, in this package) "Point".
	require.Contains(t, string(shapesOut), "common.Point")
	require.Contains(t, string(shapesOut), "common.UnmarshalPointIn(")
	require.Contains(t, string(shapesOut), `common "github.com/tagwire/tagwire/gen/common/point"`)

	// point.tw has namespace ["common", "point"], landing in its own
	// directory with its own package distinct from geometry/shapes.
	pointOut, err := os.ReadFile(filepath.Join(out, "common", "point", "point.tw.go"))
	require.NoError(t, err)
	require.Contains(t, string(pointOut), "package point")
	require.Contains(t, string(pointOut), "type PointOut struct")
}

func TestGenerateWithoutImportBaseErrorsOnCrossNamespaceReference(t *testing.T) {
	var stderr bytes.Buffer
	err := cli.Generate(cli.GenerateRequest{
		SchemaRoot: "../../testdata",
		SchemaPath: "geometry/shapes.tw",
		GoOuts:     []string{t.TempDir()},
		Stdout:     &bytes.Buffer{},
		Stderr:     &stderr,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "go-import-base")
}

func TestGenerateWithNoGoOutWritesToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := cli.Generate(cli.GenerateRequest{
		SchemaPath: "../../testdata/common/point.tw",
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	require.NoError(t, err, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "type PointOut struct")
}

func TestGenerateReportsDiagnosticsForInvalidSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.tw"), []byte("struct Foo {\n  a : Missing = 0;\n}\n"), 0o644))

	var stderr bytes.Buffer
	err := cli.Generate(cli.GenerateRequest{
		SchemaPath: filepath.Join(dir, "bad.tw"),
		Stdout:     &bytes.Buffer{},
		Stderr:     &stderr,
	})
	require.ErrorIs(t, err, cli.ErrDiagnostics)
	require.Contains(t, stderr.String(), "undefined type")
}

func TestFormatReprintsCanonically(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := cli.Format(cli.FormatRequest{
		SchemaPath: "../../testdata/common/point.tw",
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	require.NoError(t, err, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "struct Point {")
	require.Contains(t, stdout.String(), "x : F64 = 0;")
}
