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

// Package schema defines the schema AST produced by internal/parser and
// consumed by internal/loader, internal/validate, and internal/emit.
package schema

import (
	"strings"

	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/token"
)

// Namespace is an ordered sequence of identifiers derived from a schema
// file's path relative to some base directory, with the extension
// stripped: "a/b/c.tw" relative to base "a" becomes the namespace (b, c).
type Namespace []ident.Identifier

// Equal reports whether two namespaces name the same sequence of
// components.
func (n Namespace) Equal(other Namespace) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Less gives namespaces a total order (component-wise, then by length),
// used as the key ordering for the schema set's ordered map.
func (n Namespace) Less(other Namespace) bool {
	for i := 0; i < len(n) && i < len(other); i++ {
		if c := n[i].Compare(other[i]); c != 0 {
			return c < 0
		}
	}
	return len(n) < len(other)
}

// Key returns a string uniquely identifying this namespace for use as an
// ordered-map key, built from each component's normalized spelling.
func (n Namespace) Key() string {
	parts := make([]string, len(n))
	for i, c := range n {
		parts[i] = c.SnakeCase()
	}
	return strings.Join(parts, "/")
}

// String renders the namespace in dotted form, e.g. "a.b.c".
func (n Namespace) String() string {
	parts := make([]string, len(n))
	for i, c := range n {
		parts[i] = c.Original()
	}
	return strings.Join(parts, ".")
}

// RelativizeNamespace computes how an import of target, written from
// within a schema whose own namespace is from, should be expressed: the
// number of parent-directory ascents needed past the common prefix the two
// namespaces share, plus the remaining tail of target beyond that prefix.
// This expresses a reference relative to the importing file instead of
// from the schema root. The Go emitter does not use it: Go import paths
// are absolute.
func RelativizeNamespace(from, target Namespace) (ascents int, tail Namespace) {
	common := 0
	for common < len(from)-1 && common < len(target) && from[common].Equal(target[common]) {
		common++
	}
	ascents = len(from) - 1 - common
	tail = append(Namespace{}, target[common:]...)
	return ascents, tail
}

// Type is the discriminated union of field/array element types: bool,
// bytes, f64, s64, string, u64, unit, array(inner), or a reference to a
// struct/choice declared in this schema or an imported one.
type Type struct {
	Kind  TypeKind
	Inner *Type // set when Kind == TypeArray

	// Import, if non-nil, names the import alias a custom type reference
	// is qualified with ("import.Name"); nil means the type is declared
	// in the same file.
	Import *ident.Identifier
	// Name is set when Kind == TypeCustom.
	Name ident.Identifier
}

// TypeKind enumerates the variants of Type.
type TypeKind int

const (
	TypeBool TypeKind = iota
	TypeBytes
	TypeF64
	TypeS64
	TypeString
	TypeU64
	TypeUnit
	TypeArray
	TypeCustom
)

// Format renders a Type the way schema.rs's Display impl does: primitive
// keywords in PascalCase ("Bool", "U64"), arrays as "[Inner]", and custom
// types as "Name" or "import.Name".
func (t Type) Format() string {
	switch t.Kind {
	case TypeBool:
		return "Bool"
	case TypeBytes:
		return "Bytes"
	case TypeF64:
		return "F64"
	case TypeS64:
		return "S64"
	case TypeString:
		return "String"
	case TypeU64:
		return "U64"
	case TypeUnit:
		return "Unit"
	case TypeArray:
		return "[" + t.Inner.Format() + "]"
	case TypeCustom:
		if t.Import != nil {
			return t.Import.Original() + "." + t.Name.Original()
		}
		return t.Name.Original()
	default:
		return "?"
	}
}

// Rule is a field's presence rule.
type Rule int

const (
	// RuleRequired fields must always be present, in every flavor, and
	// removing or renaming one is a breaking schema change.
	RuleRequired Rule = iota
	// RuleAsymmetric fields are required on the write side (Out) but
	// optional on the read side (In), letting a field be added without
	// breaking older readers and, eventually, promoted to required once
	// every writer has upgraded.
	RuleAsymmetric
	// RuleOptional fields are optional on both sides.
	RuleOptional
)

func (r Rule) String() string {
	switch r {
	case RuleAsymmetric:
		return "asymmetric"
	case RuleOptional:
		return "optional"
	default:
		return ""
	}
}

// Field is one field of a struct or one variant of a choice.
type Field struct {
	Span  token.Span
	Rule  Rule
	Name  ident.Identifier
	Type  Type
	Index uint64
}

// DeclKind distinguishes a struct declaration from a choice declaration.
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclChoice
)

// Declaration is a struct or choice declared in a schema file.
type Declaration struct {
	Span   token.Span
	Kind   DeclKind
	Name   ident.Identifier
	Fields *OrderedMap[*Field]

	// FieldOrder preserves the order fields were written in source, for
	// diagnostics and for Format (which prints fields in normalized-name
	// order via Fields, matching the original schema.rs Display impl,
	// which iterates its own BTreeMap<Identifier, Field>).
	FieldOrder []ident.Identifier
}

// Import is one `import 'path';` or `import 'path' as alias;` statement.
type Import struct {
	Span  token.Span
	Path  string
	Alias ident.Identifier

	// Namespace is filled in by internal/loader once the imported file's
	// path has been resolved to a namespace.
	Namespace Namespace
}

// Schema is one parsed schema file: its imports and its declarations, both
// keyed by normalized name in an OrderedMap for deterministic iteration.
type Schema struct {
	Path        string
	Namespace   Namespace
	Imports     *OrderedMap[*Import]
	Declarations *OrderedMap[*Declaration]

	// ImportOrder preserves source order for Format, which prints imports
	// in the order they were written, matching typical IDL conventions
	// (and the original schema.rs Display impl's import-section
	// handling).
	ImportOrder []ident.Identifier
}

// NewSchema returns an empty Schema for path.
func NewSchema(path string) *Schema {
	return &Schema{
		Path:         path,
		Imports:      &OrderedMap[*Import]{},
		Declarations: &OrderedMap[*Declaration]{},
	}
}
