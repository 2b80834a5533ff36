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

// Package validate runs the semantic checks a loaded schema set must pass
// before it can be handed to internal/emit: field uniqueness and index
// bounds, cross-file type resolution, and declaration-graph cycle
// detection. Each stage accumulates every diagnostic it finds rather than
// stopping at the first; the final stage only runs if the first two found
// nothing wrong, since cycle detection over an unresolved graph would
// itself produce meaningless results.
package validate

import (
	"strings"

	"github.com/tagwire/tagwire/internal/diag"
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/loader"
	"github.com/tagwire/tagwire/internal/schema"
	"github.com/tagwire/tagwire/internal/token"
)

// MaxFieldIndex is the largest field index this format permits: 2^62 - 1,
// leaving the top two bits of a field-header varint's index portion free
// for the framing scheme internal/wire builds on top of it.
const MaxFieldIndex = (uint64(1) << 62) - 1

// Validate runs every stage against set and returns the accumulated
// diagnostics. The caller should treat set as unsafe to hand to
// internal/emit if the returned sink has any errors.
func Validate(set *loader.Set) *diag.Sink {
	sink := &diag.Sink{}

	checkUniquenessAndBounds(set, sink)
	checkTypeResolution(set, sink)
	if !sink.HasErrors() {
		checkCycles(set, sink)
	}
	return sink
}

// checkUniquenessAndBounds verifies, for every declaration, that no two
// fields share an index and that every index fits within MaxFieldIndex.
// Field name uniqueness is already enforced while parsing (the parser
// reports a second field with the same normalized name, which
// OrderedMap.Set flags as a replacement), so this stage
// only needs to re-check index collisions, which the parser cannot catch
// since two different field names share nothing else.
func checkUniquenessAndBounds(set *loader.Set, sink *diag.Sink) {
	for _, ns := range set.Namespaces() {
		s, _ := set.Get(ns)
		s.Declarations.Range(func(_ ident.Identifier, decl *schema.Declaration) bool {
			seen := map[uint64]*schema.Field{}
			decl.Fields.Range(func(_ ident.Identifier, f *schema.Field) bool {
				if f.Index > MaxFieldIndex {
					sink.Add(diag.At(s.Path, "", f.Span,
						"field %q has index %d, which exceeds the maximum of %d",
						f.Name.Original(), f.Index, MaxFieldIndex))
				}
				if other, ok := seen[f.Index]; ok {
					sink.Add(diag.At(s.Path, "", f.Span,
						"field %q reuses index %d already used by field %q",
						f.Name.Original(), f.Index, other.Name.Original()))
				} else {
					seen[f.Index] = f
				}
				return true
			})
			return true
		})
	}
}

// checkTypeResolution verifies that every custom type reference resolves:
// an import alias must name an actually-imported namespace, and the named
// declaration must exist in that namespace (or, for an unqualified
// reference, in the same file).
func checkTypeResolution(set *loader.Set, sink *diag.Sink) {
	for _, ns := range set.Namespaces() {
		s, _ := set.Get(ns)
		s.Declarations.Range(func(_ ident.Identifier, decl *schema.Declaration) bool {
			decl.Fields.Range(func(_ ident.Identifier, f *schema.Field) bool {
				resolveType(set, s, f.Type, f.Span, sink)
				return true
			})
			return true
		})
	}
}

// resolveType walks t (recursing into array element types) and reports a
// diagnostic for any custom reference that does not resolve.
func resolveType(set *loader.Set, s *schema.Schema, t schema.Type, span token.Span, sink *diag.Sink) {
	switch t.Kind {
	case schema.TypeArray:
		resolveType(set, s, *t.Inner, span, sink)
	case schema.TypeCustom:
		targetSchema := s
		if t.Import != nil {
			imp, ok := s.Imports.Get(*t.Import)
			if !ok {
				sink.Add(diag.At(s.Path, "", span, "unknown import alias %q", t.Import.Original()))
				return
			}
			resolved, ok := set.Get(imp.Namespace)
			if !ok {
				sink.Add(diag.At(s.Path, "", span, "import %q did not load", imp.Path))
				return
			}
			targetSchema = resolved
		}
		if _, ok := targetSchema.Declarations.Get(t.Name); !ok {
			sink.Add(diag.At(s.Path, "", span, "undefined type %q", t.Format()))
		}
	}
}

// declRef names one declaration for the purposes of cycle detection: its
// namespace and its name.
type declRef struct {
	ns   schema.Namespace
	name ident.Identifier
}

func (r declRef) key() string {
	return r.ns.Key() + "#" + r.name.SnakeCase()
}

// qualifiedName renders r the way a cycle diagnostic cites it:
// "namespace.Declaration", or just "Declaration" for an empty namespace.
func (r declRef) qualifiedName() string {
	if len(r.ns) == 0 {
		return r.name.Original()
	}
	return r.ns.String() + "." + r.name.Original()
}

// checkCycles performs a DFS over the declaration graph (an edge from A to
// B means A has a field whose type, ignoring array wrapping, is a
// reference to B) and reports one diagnostic per cycle found, each
// message the chain of qualified declaration names joined by "→". A
// "fully checked" set prevents reporting the same cycle more than once
// when it is reachable from multiple starting declarations.
func checkCycles(set *loader.Set, sink *diag.Sink) {
	type state int
	const (
		unvisited state = iota
		inProgress
		checked
	)
	status := map[string]state{}
	var stack []declRef

	var visit func(ref declRef)
	visit = func(ref declRef) {
		key := ref.key()
		switch status[key] {
		case checked:
			return
		case inProgress:
			reportCycle(stack, ref, set, sink)
			status[key] = checked
			return
		}
		status[key] = inProgress
		stack = append(stack, ref)

		if s, ok := set.Get(ref.ns); ok {
			if decl, ok := s.Declarations.Get(ref.name); ok {
				decl.Fields.Range(func(_ ident.Identifier, f *schema.Field) bool {
					for _, dep := range declDeps(set, s, f.Type) {
						visit(dep)
					}
					return true
				})
			}
		}

		stack = stack[:len(stack)-1]
		status[key] = checked
	}

	for _, ns := range set.Namespaces() {
		s, _ := set.Get(ns)
		s.Declarations.Range(func(name ident.Identifier, _ *schema.Declaration) bool {
			visit(declRef{ns: ns, name: name})
			return true
		})
	}
}

// declDeps returns the declaration(s) a field's type directly depends on,
// unwrapping array layers (an array of T depends on T, the same as a
// plain field of type T).
func declDeps(set *loader.Set, s *schema.Schema, t schema.Type) []declRef {
	switch t.Kind {
	case schema.TypeArray:
		return declDeps(set, s, *t.Inner)
	case schema.TypeCustom:
		targetNS := s.Namespace
		if t.Import != nil {
			if imp, ok := s.Imports.Get(*t.Import); ok {
				targetNS = imp.Namespace
			}
		}
		return []declRef{{ns: targetNS, name: t.Name}}
	default:
		return nil
	}
}

// reportCycle emits one diagnostic for the cycle found when visiting
// closing, which is already present on stack at the point it first
// appeared.
func reportCycle(stack []declRef, closing declRef, set *loader.Set, sink *diag.Sink) {
	start := 0
	for i, r := range stack {
		if r.key() == closing.key() {
			start = i
			break
		}
	}
	cycle := append(append([]declRef{}, stack[start:]...), closing)
	names := make([]string, len(cycle))
	for i, r := range cycle {
		names[i] = r.qualifiedName()
	}
	d := diag.New("declaration cycle: %s", strings.Join(names, " → "))
	if s, ok := set.Get(closing.ns); ok {
		d.Path = s.Path
	}
	sink.Add(d)
}
