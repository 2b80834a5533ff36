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

package wire

import "fmt"

// MaxChoiceChainEntries bounds how many fallback entries a single choice
// value may carry. A writer only ever appends one entry per schema
// revision it wants to remain compatible with, so a well-formed chain is
// always short; this bound exists purely to keep a corrupt or adversarial
// input from forcing unbounded work while scanning for a known variant
// (spec §9's recursion-depth open question).
const MaxChoiceChainEntries = 64

// ChoiceEntry is one (index, payload) pair within a choice's fallback
// chain. The first entry is the variant the writer actually produced; any
// further entries are fallbacks for readers on an older schema that do
// not recognize it, each itself a value of a variant understood by
// progressively older readers.
type ChoiceEntry struct {
	Index   uint64
	Payload []byte
}

// EncodeChoiceChain concatenates entries' field-framed encodings (each
// using SizeClassSized) in order, producing the bytes a choice-typed
// field or top-level message carries.
func EncodeChoiceChain(entries []ChoiceEntry) []byte {
	w := NewWriter()
	for _, e := range entries {
		WriteField(w, e.Index, SizeClassSized, e.Payload)
	}
	return w.Bytes()
}

// DecodeChoiceChain splits data into the consecutive field entries that
// make up a choice's encoding, each independently skippable by its own
// header regardless of whether the index is recognized. It returns an
// error if data contains anything other than a whole number of complete
// entries, or more entries than MaxChoiceChainEntries.
func DecodeChoiceChain(data []byte) ([]ChoiceEntry, error) {
	var entries []ChoiceEntry
	pos := 0
	for pos < len(data) {
		if len(entries) >= MaxChoiceChainEntries {
			return nil, fmt.Errorf("wire: choice fallback chain exceeds %d entries", MaxChoiceChainEntries)
		}
		index, class, embeddedSize, n, err := DecodeFieldHeader(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("wire: choice entry header: %w", err)
		}
		pos += n
		r := NewReader(data[pos:])
		payload, err := ReadFieldPayload(r, class, embeddedSize)
		if err != nil {
			return nil, fmt.Errorf("wire: choice entry %d payload: %w", index, err)
		}
		pos += len(payload)
		entries = append(entries, ChoiceEntry{Index: index, Payload: payload})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("wire: choice value has no entries")
	}
	return entries, nil
}

// ErrChoiceChainExhausted is returned by FindKnownVariant when no entry in
// a decoded chain is recognized by the consuming schema.
var ErrChoiceChainExhausted = fmt.Errorf("wire: choice fallback chain exhausted: no entry is a known variant")

// FindKnownVariant scans entries in order and returns the first one whose
// index isKnown reports true for, the decode-side half of the fallback
// chain mechanism.
func FindKnownVariant(entries []ChoiceEntry, isKnown func(index uint64) bool) (ChoiceEntry, error) {
	for _, e := range entries {
		if isKnown(e.Index) {
			return e, nil
		}
	}
	return ChoiceEntry{}, ErrChoiceChainExhausted
}
