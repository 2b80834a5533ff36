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

package schema

import (
	"github.com/tidwall/btree"

	"github.com/tagwire/tagwire/internal/ident"
)

// OrderedMap keys values by an Identifier's normalized snake_case spelling
// and iterates in that normalized order, the Go analog of the BTreeMap
// keyed by Identifier used throughout the original schema representation.
// It is the backing store for a Schema's imports and declarations, and for
// a Declaration's fields, giving every consumer (the validator, the
// formatter, the code emitter) the same deterministic order without each
// having to sort independently.
type OrderedMap[V any] struct {
	tree btree.Map[string, entry[V]]
}

type entry[V any] struct {
	name  ident.Identifier
	value V
}

// Set inserts or replaces the value for name. It reports whether name was
// already present, so callers can detect duplicate declarations.
func (m *OrderedMap[V]) Set(name ident.Identifier, value V) (replaced bool) {
	_, replaced = m.tree.Set(name.SnakeCase(), entry[V]{name: name, value: value})
	return replaced
}

// Get looks up the value for name.
func (m *OrderedMap[V]) Get(name ident.Identifier) (V, bool) {
	e, ok := m.tree.Get(name.SnakeCase())
	return e.value, ok
}

// GetByKey looks up a value by its already-normalized snake_case key,
// useful when the caller only has a string (for example a dotted
// qualified-name lookup) rather than an Identifier.
func (m *OrderedMap[V]) GetByKey(key string) (V, bool) {
	e, ok := m.tree.Get(key)
	return e.value, ok
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return m.tree.Len()
}

// Range calls fn for every entry in ascending normalized-name order,
// stopping early if fn returns false.
func (m *OrderedMap[V]) Range(fn func(name ident.Identifier, value V) bool) {
	m.tree.Scan(func(_ string, e entry[V]) bool {
		return fn(e.name, e.value)
	})
}

// Names returns every key's Identifier in ascending normalized order.
func (m *OrderedMap[V]) Names() []ident.Identifier {
	names := make([]ident.Identifier, 0, m.tree.Len())
	m.Range(func(name ident.Identifier, _ V) bool {
		names = append(names, name)
		return true
	})
	return names
}
