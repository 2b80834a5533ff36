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

// Package golang renders internal/emit's three-flavor model as Go source,
// the one concrete target-language backend this repository implements;
// every other target named by an external collaborator is out of scope
// (see spec.md §1).
package golang

import (
	"fmt"
	"path"
	"strings"

	"github.com/tagwire/tagwire/internal/emit"
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/schema"
)

// Options configures Generate.
type Options struct {
	// Package is the generated file's package name.
	Package string

	// ImportBase is the Go import path under which every namespace's
	// generated package lives, mirroring the namespace's own path
	// ("common/point" under ImportBase "example.com/gen" imports as
	// "example.com/gen/common/point"). Required only when the schema
	// being generated references a type from an imported namespace;
	// schemas with no cross-file type references can leave it empty.
	ImportBase string
}

// PackageName derives the Go package name a namespace's generated code
// lives in: its final component, or "tagwire" for an empty namespace.
// Shared by internal/cli so the
// directory a namespace's file is written to and the package name it
// declares always agree with the import path a sibling namespace's
// generated code uses to reference it.
func PackageName(ns schema.Namespace) string {
	if len(ns) == 0 {
		return "tagwire"
	}
	return ns[len(ns)-1].SnakeCase()
}

// emitter carries the per-file context goType/encodeExpr/decodeExpr need
// to qualify a cross-namespace custom type reference: the schema being
// rendered (to resolve an import alias to its target namespace) and the
// set of aliases actually referenced, so Generate only imports packages
// the output actually uses.
type emitter struct {
	schema *schema.Schema
	opts   Options
	used   map[string]*schema.Import // alias snake_case -> import
}

// Generate renders every declaration in s as Go source implementing the
// Out/In/InToOut flavors and their wire Marshal/Unmarshal methods.
func Generate(s *schema.Schema, opts Options) (string, error) {
	e := &emitter{schema: s, opts: opts, used: map[string]*schema.Import{}}

	var body strings.Builder
	sets := emit.BuildAll(s)
	for _, fs := range sets {
		switch fs.Decl.Kind {
		case schema.DeclStruct:
			if err := e.renderStruct(&body, fs); err != nil {
				return "", err
			}
		case schema.DeclChoice:
			if err := e.renderChoice(&body, fs); err != nil {
				return "", err
			}
		}
	}

	if len(e.used) > 0 && opts.ImportBase == "" {
		return "", fmt.Errorf(
			"tagwire: %q references types from an imported namespace; golang.Options.ImportBase (CLI: --go-import-base) is required to emit a valid cross-package reference",
			s.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by tagwire. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", opts.Package)
	fmt.Fprintf(&b, "import (\n")
	if strings.Contains(body.String(), "errors.New(") {
		fmt.Fprintf(&b, "\t\"errors\"\n\n")
	}
	fmt.Fprintf(&b, "\t\"github.com/tagwire/tagwire/internal/wire\"\n")
	for _, alias := range e.schema.ImportOrder {
		imp, ok := e.used[alias.SnakeCase()]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\t%s %q\n", alias.SnakeCase(), path.Join(opts.ImportBase, imp.Namespace.Key()))
	}
	fmt.Fprintf(&b, ")\n\n")
	b.WriteString(body.String())
	return b.String(), nil
}

// resolveImport records importAlias as used and returns the Go package
// alias a custom type reference from it should be qualified with.
func (e *emitter) resolveImport(importAlias ident.Identifier) string {
	key := importAlias.SnakeCase()
	if imp, ok := e.schema.Imports.Get(importAlias); ok {
		e.used[key] = imp
	}
	return key
}

// goType returns the Go type used to hold one instance of t, for a field
// (not an Option/presence wrapper, which callers add where the flavor
// requires it). A reference to a type declared in an imported namespace
// is qualified with that import's Go package alias.
func (e *emitter) goType(t schema.Type) string {
	switch t.Kind {
	case schema.TypeBool:
		return "bool"
	case schema.TypeBytes:
		return "[]byte"
	case schema.TypeF64:
		return "float64"
	case schema.TypeS64:
		return "int64"
	case schema.TypeString:
		return "string"
	case schema.TypeU64:
		return "uint64"
	case schema.TypeUnit:
		return "struct{}"
	case schema.TypeArray:
		return "[]" + e.goType(*t.Inner)
	case schema.TypeCustom:
		if t.Import != nil {
			return e.resolveImport(*t.Import) + "." + t.Name.PascalCase()
		}
		return t.Name.PascalCase()
	default:
		return "any"
	}
}

// isFixedSize reports whether t's wire encoding has a statically known
// byte length (so an array of it can use the tightly packed fixed-array
// form instead of a per-element size prefix).
func isFixedSize(t schema.Type) (size int, fixed bool) {
	switch t.Kind {
	case schema.TypeUnit:
		return 0, true
	case schema.TypeF64:
		return 8, true
	case schema.TypeBool:
		return 1, true
	default:
		return 0, false
	}
}

// encodeExpr returns a Go expression that encodes the value expr (of
// type t) to a []byte payload.
func (e *emitter) encodeExpr(t schema.Type, expr string) string {
	switch t.Kind {
	case schema.TypeBool:
		return fmt.Sprintf("wire.EncodeBool(%s)", expr)
	case schema.TypeBytes:
		return fmt.Sprintf("wire.EncodeBytes(%s)", expr)
	case schema.TypeF64:
		return fmt.Sprintf("wire.EncodeF64(%s)", expr)
	case schema.TypeS64:
		return fmt.Sprintf("wire.EncodeS64(%s)", expr)
	case schema.TypeString:
		return fmt.Sprintf("wire.EncodeString(%s)", expr)
	case schema.TypeU64:
		return fmt.Sprintf("wire.EncodeU64(%s)", expr)
	case schema.TypeUnit:
		return "nil"
	case schema.TypeArray:
		inner := *t.Inner
		if size, fixed := isFixedSize(inner); fixed {
			return fmt.Sprintf("wire.EncodeFixedArray(%s, %d, func(v %s) []byte { return %s })",
				expr, size, e.goType(inner), e.encodeExpr(inner, "v"))
		}
		return fmt.Sprintf("wire.EncodeVariableArray(%s, func(v %s) []byte { return %s })",
			expr, e.goType(inner), e.encodeExpr(inner, "v"))
	case schema.TypeCustom:
		// No import qualification needed: expr's static type (from
		// goType) already names the imported package, and MarshalOut is
		// a method call on that value.
		return fmt.Sprintf("%s.MarshalOut()", expr)
	default:
		return "nil"
	}
}

// decodeExpr returns a Go expression decoding payload (of type t) into a
// (value, error) pair. A reference to a type declared in an imported
// namespace calls that package's Unmarshal...In function.
func (e *emitter) decodeExpr(t schema.Type, payload string) string {
	switch t.Kind {
	case schema.TypeBool:
		return fmt.Sprintf("wire.DecodeBool(%s)", payload)
	case schema.TypeBytes:
		return fmt.Sprintf("wire.DecodeBytes(%s)", payload)
	case schema.TypeF64:
		return fmt.Sprintf("wire.DecodeF64(%s)", payload)
	case schema.TypeS64:
		return fmt.Sprintf("wire.DecodeS64(%s)", payload)
	case schema.TypeString:
		return fmt.Sprintf("wire.DecodeString(%s)", payload)
	case schema.TypeU64:
		return fmt.Sprintf("wire.DecodeU64(%s)", payload)
	case schema.TypeArray:
		inner := *t.Inner
		if size, fixed := isFixedSize(inner); fixed {
			return fmt.Sprintf("wire.DecodeFixedArray(%s, %d, func(b []byte) (%s, error) { return %s })",
				payload, size, e.goType(inner), e.decodeExpr(inner, "b"))
		}
		return fmt.Sprintf("wire.DecodeVariableArray(%s, func(b []byte) (%s, error) { return %s })",
			payload, e.goType(inner), e.decodeExpr(inner, "b"))
	case schema.TypeCustom:
		if t.Import != nil {
			return fmt.Sprintf("%s.Unmarshal%sIn(%s)", e.resolveImport(*t.Import), t.Name.PascalCase(), payload)
		}
		return fmt.Sprintf("Unmarshal%sIn(%s)", t.Name.PascalCase(), payload)
	default:
		return "nil, nil"
	}
}

// sizeClassFor returns the SizeClass a field of type t is written with.
func sizeClassFor(t schema.Type) string {
	switch t.Kind {
	case schema.TypeUnit:
		return "wire.SizeClassZero"
	case schema.TypeF64:
		return "wire.SizeClassEight"
	default:
		return "wire.SizeClassSized"
	}
}

func (e *emitter) renderStruct(b *strings.Builder, fs *emit.FlavorSet) error {
	name := fs.Decl.Name.PascalCase()

	e.renderOutType(b, fs, name)
	e.renderOutMarshal(b, fs, name)
	e.renderInType(b, fs, name)
	e.renderInUnmarshal(b, fs, name)
	if fs.HasInToOut {
		e.renderInToOutType(b, fs, name)
		e.renderInToOutConversion(b, fs, name)
	}
	e.renderOutToInConversion(b, fs, name)
	return nil
}

func (e *emitter) renderOutType(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// %sOut is the write-side flavor of %s: every field is present.\n", name, name)
	fmt.Fprintf(b, "type %sOut struct {\n", name)
	for _, f := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(f)
		typ := e.goType(field.Type)
		if field.Rule == schema.RuleOptional {
			typ = fmt.Sprintf("wire.Option[%s]", typ)
		}
		fmt.Fprintf(b, "\t%s %s\n", field.Name.PascalCase(), typ)
	}
	fmt.Fprintf(b, "}\n\n")
}

func (e *emitter) renderOutMarshal(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// MarshalOut encodes v in ascending field-index order.\n")
	fmt.Fprintf(b, "func (v %sOut) MarshalOut() []byte {\n", name)
	fmt.Fprintf(b, "\tw := &wire.StructWriter{}\n")
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		accessor := "v." + field.Name.PascalCase()
		if field.Rule == schema.RuleOptional {
			fmt.Fprintf(b, "\tif %s.Present {\n\t\tw.WriteField(%d, %s, %s)\n\t}\n",
				accessor, field.Index, sizeClassFor(field.Type), e.encodeExpr(field.Type, accessor+".Value"))
		} else {
			fmt.Fprintf(b, "\tw.WriteField(%d, %s, %s)\n", field.Index, sizeClassFor(field.Type), e.encodeExpr(field.Type, accessor))
		}
	}
	fmt.Fprintf(b, "\treturn w.Finish()\n}\n\n")
}

func (e *emitter) renderInType(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// %sIn is the read-side flavor of %s: only required fields are\n", name, name)
	fmt.Fprintf(b, "// unconditional; asymmetric and optional fields carry presence and tolerate\n")
	fmt.Fprintf(b, "// being entirely absent from the bytes a newer writer produced.\n")
	fmt.Fprintf(b, "type %sIn struct {\n", name)
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		typ := e.goType(field.Type)
		if field.Rule != schema.RuleRequired {
			typ = fmt.Sprintf("wire.Option[%s]", typ)
		}
		fmt.Fprintf(b, "\t%s %s\n", field.Name.PascalCase(), typ)
	}
	fmt.Fprintf(b, "}\n\n")
}

func (e *emitter) renderInUnmarshal(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// Unmarshal%sIn decodes the In flavor of %s, ignoring any field index\n", name, name)
	fmt.Fprintf(b, "// it does not recognize and reporting an error if the data is malformed or\n")
	fmt.Fprintf(b, "// a required field is missing.\n")
	fmt.Fprintf(b, "func Unmarshal%sIn(data []byte) (%sIn, error) {\n", name, name)
	fmt.Fprintf(b, "\tvar out %sIn\n", name)
	fmt.Fprintf(b, "\tfields, err := wire.ReadStructFields(data)\n")
	fmt.Fprintf(b, "\tif err != nil {\n\t\treturn out, err\n\t}\n")
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		goName := field.Name.PascalCase()
		fmt.Fprintf(b, "\tif payload, ok := fields[%d]; ok {\n", field.Index)
		fmt.Fprintf(b, "\t\tdecoded, err := %s\n", e.decodeExpr(field.Type, "payload"))
		fmt.Fprintf(b, "\t\tif err != nil {\n\t\t\treturn out, err\n\t\t}\n")
		if field.Rule == schema.RuleRequired {
			fmt.Fprintf(b, "\t\tout.%s = decoded\n", goName)
		} else {
			fmt.Fprintf(b, "\t\tout.%s = wire.Some(decoded)\n", goName)
		}
		fmt.Fprintf(b, "\t}")
		if field.Rule == schema.RuleRequired {
			msg := fmt.Sprintf("missing required field %q of %sIn", field.Name.Original(), name)
			fmt.Fprintf(b, " else {\n\t\treturn out, errors.New(%q)\n\t}\n", msg)
		} else {
			fmt.Fprintf(b, "\n")
		}
	}
	fmt.Fprintf(b, "\treturn out, nil\n}\n\n")
}

func (e *emitter) renderInToOutType(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// %sInToOut carries the values or deferred computations needed to turn an\n", name)
	fmt.Fprintf(b, "// %sIn lacking some non-required fields back into a complete %sOut.\n", name, name)
	fmt.Fprintf(b, "type %sInToOut struct {\n", name)
	for _, field := range fs.NonRequired() {
		goName := field.Name.PascalCase()
		typ := e.goType(field.Type)
		fmt.Fprintf(b, "\t%sValue %s\n", goName, typ)
		fmt.Fprintf(b, "\t%sFunc  func(%sIn) %s\n", goName, name, typ)
		fmt.Fprintf(b, "\tHas%sFunc bool\n", goName)
	}
	fmt.Fprintf(b, "}\n\n")
}

func (e *emitter) renderInToOutConversion(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// ToOut performs the total (In, InToOut) -> Out conversion: every\n")
	fmt.Fprintf(b, "// required field comes from in directly, and every non-required field\n")
	fmt.Fprintf(b, "// comes from in when present, or otherwise from adapter's precomputed\n")
	fmt.Fprintf(b, "// value or deferred closure.\n")
	fmt.Fprintf(b, "func (adapter %sInToOut) ToOut(in %sIn) %sOut {\n", name, name, name)
	fmt.Fprintf(b, "\tvar out %sOut\n", name)
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		goName := field.Name.PascalCase()
		switch field.Rule {
		case schema.RuleRequired:
			fmt.Fprintf(b, "\tout.%s = in.%s\n", goName, goName)
		case schema.RuleAsymmetric:
			fmt.Fprintf(b, "\tif in.%s.Present {\n\t\tout.%s = in.%s.Value\n\t} else if adapter.Has%sFunc {\n\t\tout.%s = adapter.%sFunc(in)\n\t} else {\n\t\tout.%s = adapter.%sValue\n\t}\n",
				goName, goName, goName, goName, goName, goName, goName, goName)
		case schema.RuleOptional:
			fmt.Fprintf(b, "\tif in.%s.Present {\n\t\tout.%s = in.%s\n\t} else if adapter.Has%sFunc {\n\t\tout.%s = wire.Some(adapter.%sFunc(in))\n\t} else {\n\t\tout.%s = wire.Some(adapter.%sValue)\n\t}\n",
				goName, goName, goName, goName, goName, goName, goName, goName)
		}
	}
	fmt.Fprintf(b, "\treturn out\n}\n\n")
}

func (e *emitter) renderOutToInConversion(b *strings.Builder, fs *emit.FlavorSet, name string) {
	fmt.Fprintf(b, "// ToIn performs the required, lossless Out -> In conversion.\n")
	fmt.Fprintf(b, "func (v %sOut) ToIn() %sIn {\n", name, name)
	fmt.Fprintf(b, "\tvar in %sIn\n", name)
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		goName := field.Name.PascalCase()
		switch field.Rule {
		case schema.RuleRequired:
			fmt.Fprintf(b, "\tin.%s = v.%s\n", goName, goName)
		case schema.RuleAsymmetric:
			fmt.Fprintf(b, "\tin.%s = wire.Some(v.%s)\n", goName, goName)
		case schema.RuleOptional:
			fmt.Fprintf(b, "\tin.%s = v.%s\n", goName, goName)
		}
	}
	fmt.Fprintf(b, "\treturn in\n}\n\n")
}

// renderChoice renders a choice declaration as a Go interface (the Out
// flavor) implemented by one wrapper type per variant, plus marshal and
// unmarshal functions built on the fallback-chain helpers in
// internal/wire. Each variant wrapper also doubles as that variant's In
// representation. No InToOut type or function is generated for a choice;
// an unrecognized variant is handled only by the decode-side fallback
// chain.
func (e *emitter) renderChoice(b *strings.Builder, fs *emit.FlavorSet) error {
	name := fs.Decl.Name.PascalCase()
	fmt.Fprintf(b, "// %s is the Out flavor of the %s choice: exactly one variant.\n", name, name)
	fmt.Fprintf(b, "type %s interface {\n\tis%s()\n\tvariantIndex%s() uint64\n\tmarshalPayload%s() []byte\n}\n\n", name, name, name, name)

	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		variantName := name + field.Name.PascalCase()
		goName := field.Name.PascalCase()
		typ := e.goType(field.Type)
		fmt.Fprintf(b, "type %s struct {\n\t%s %s\n}\n\n", variantName, goName, typ)
		fmt.Fprintf(b, "func (%s) is%s() {}\n", variantName, name)
		fmt.Fprintf(b, "func (%s) variantIndex%s() uint64 { return %d }\n", variantName, name, field.Index)
		fmt.Fprintf(b, "func (v %s) marshalPayload%s() []byte { return %s }\n\n", variantName, name, e.encodeExpr(field.Type, "v."+goName))
	}

	fmt.Fprintf(b, "// Marshal%s encodes v as its variant's (index, payload) entry, followed by\n", name)
	fmt.Fprintf(b, "// fallbacks in order: a writer serializing a variant that a given reader's\n")
	fmt.Fprintf(b, "// schema predates must append a fallback value of a variant that reader is\n")
	fmt.Fprintf(b, "// known to understand, so decode can fall through to it (spec's choice\n")
	fmt.Fprintf(b, "// fallback chain). A writer with nothing but variants every reader already\n")
	fmt.Fprintf(b, "// knows can call this with no fallbacks.\n")
	fmt.Fprintf(b, "func Marshal%s(v %s, fallbacks ...%s) []byte {\n", name, name, name)
	fmt.Fprintf(b, "\tentries := make([]wire.ChoiceEntry, 0, 1+len(fallbacks))\n")
	fmt.Fprintf(b, "\tentries = append(entries, wire.ChoiceEntry{Index: v.variantIndex%s(), Payload: v.marshalPayload%s()})\n", name, name)
	fmt.Fprintf(b, "\tfor _, fb := range fallbacks {\n")
	fmt.Fprintf(b, "\t\tentries = append(entries, wire.ChoiceEntry{Index: fb.variantIndex%s(), Payload: fb.marshalPayload%s()})\n", name, name)
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\treturn wire.EncodeChoiceChain(entries)\n}\n\n")

	fmt.Fprintf(b, "// Unmarshal%s decodes a %s value, following the fallback chain past any\n", name, name)
	fmt.Fprintf(b, "// variant indices this definition does not recognize.\n")
	fmt.Fprintf(b, "func Unmarshal%s(data []byte) (%s, error) {\n", name, name)
	fmt.Fprintf(b, "\tentries, err := wire.DecodeChoiceChain(data)\n\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(b, "\tentry, err := wire.FindKnownVariant(entries, func(idx uint64) bool {\n\t\tswitch idx {\n")
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		fmt.Fprintf(b, "\t\tcase %d:\n\t\t\treturn true\n", field.Index)
	}
	fmt.Fprintf(b, "\t\tdefault:\n\t\t\treturn false\n\t\t}\n\t})\n")
	fmt.Fprintf(b, "\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(b, "\tswitch entry.Index {\n")
	for _, fname := range fs.Decl.FieldOrder {
		field, _ := fs.Decl.Fields.Get(fname)
		variantName := name + field.Name.PascalCase()
		goName := field.Name.PascalCase()
		fmt.Fprintf(b, "\tcase %d:\n\t\tdecoded, err := %s\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\treturn %s{%s: decoded}, nil\n",
			field.Index, e.decodeExpr(field.Type, "entry.Payload"), variantName, goName)
	}
	fmt.Fprintf(b, "\tdefault:\n\t\treturn nil, wire.ErrChoiceChainExhausted\n\t}\n}\n\n")
	return nil
}
