package ident_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/ident"
)

func TestSnakeCaseNormalization(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"fooBar", "foo_bar"},
		{"FooBar", "foo_bar"},
		{"foo_bar", "foo_bar"},
		{"foo__bar", "foo_bar"},
		{"HTTPServer", "http_server"},
		{"parseHTTP2Request", "parse_http_2_request"},
		{"ID", "id"},
		{"alreadySnake", "already_snake"},
	}
	for _, c := range cases {
		got := ident.New(c.raw).SnakeCase()
		require.Equalf(t, c.want, got, "snake_case(%q)", c.raw)
	}
}

func TestPascalCase(t *testing.T) {
	require.Equal(t, "FooBar", ident.New("foo_bar").PascalCase())
	require.Equal(t, "FooBar", ident.New("fooBar").PascalCase())
	require.Equal(t, "HttpServer", ident.New("HTTPServer").PascalCase())
}

func TestEqualityIgnoresSpelling(t *testing.T) {
	a := ident.New("fooBar")
	b := ident.New("foo_bar")
	require.True(t, a.Equal(b))
	require.Equal(t, "fooBar", a.Original())
	require.Equal(t, "foo_bar", b.Original())
}

func TestOrdering(t *testing.T) {
	a := ident.New("alpha")
	b := ident.New("beta")
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 0, a.Compare(ident.New("Alpha")))
}
