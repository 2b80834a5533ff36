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

// Package emit builds the three-flavor (Out, In, InToOut) data model a
// target-language backend renders into source. The model itself is
// language-agnostic; internal/emit/golang is the one concrete backend in
// this repository.
package emit

import (
	"github.com/tagwire/tagwire/internal/ident"
	"github.com/tagwire/tagwire/internal/schema"
)

// FlavorSet is the emission plan for one declaration: its fields
// partitioned by rule, and whether it needs an InToOut type at all.
// Mirrors the original generator's decision to only synthesize an
// InToOut type for declarations that have at least one non-required
// field; a declaration whose every field is required needs no adapter
// since In already equals Out.
type FlavorSet struct {
	Decl *schema.Declaration

	Required   []*schema.Field
	Asymmetric []*schema.Field
	Optional   []*schema.Field

	// HasInToOut is true when Asymmetric or Optional is non-empty.
	HasInToOut bool
}

// NonRequired returns Asymmetric followed by Optional: every field that
// needs presence handling on the read side and fallback handling in
// InToOut.
func (fs *FlavorSet) NonRequired() []*schema.Field {
	out := make([]*schema.Field, 0, len(fs.Asymmetric)+len(fs.Optional))
	out = append(out, fs.Asymmetric...)
	out = append(out, fs.Optional...)
	return out
}

// BuildFlavorSet partitions decl's fields (in declaration order, from
// FieldOrder) by rule and computes HasInToOut.
func BuildFlavorSet(decl *schema.Declaration) *FlavorSet {
	fs := &FlavorSet{Decl: decl}
	for _, name := range decl.FieldOrder {
		f, ok := decl.Fields.Get(name)
		if !ok {
			continue
		}
		switch f.Rule {
		case schema.RuleRequired:
			fs.Required = append(fs.Required, f)
		case schema.RuleAsymmetric:
			fs.Asymmetric = append(fs.Asymmetric, f)
		case schema.RuleOptional:
			fs.Optional = append(fs.Optional, f)
		}
	}
	fs.HasInToOut = len(fs.Asymmetric) > 0 || len(fs.Optional) > 0
	return fs
}

// BuildAll returns a FlavorSet for every declaration in s, in the same
// normalized-name order internal/schema.OrderedMap already provides.
func BuildAll(s *schema.Schema) []*FlavorSet {
	var sets []*FlavorSet
	s.Declarations.Range(func(_ ident.Identifier, decl *schema.Declaration) bool {
		sets = append(sets, BuildFlavorSet(decl))
		return true
	})
	return sets
}
