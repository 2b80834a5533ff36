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

// ReadStructFields decodes the concatenation of field entries that make up
// a struct value, returning each field's raw payload keyed by index.
// The map holds every field present, recognized or not; the caller (the
// generated In type's decoder) looks up only the indices it knows about,
// so an unrecognized index is skipped rather than treated as an error,
// and reports its own "missing required field" errors for anything absent.
// A duplicate index within the same struct value is an error: a
// well-formed encoder never emits the same field twice.
func ReadStructFields(data []byte) (map[uint64][]byte, error) {
	fields := map[uint64][]byte{}
	pos := 0
	for pos < len(data) {
		index, class, embeddedSize, n, err := DecodeFieldHeader(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("wire: struct field header: %w", err)
		}
		pos += n
		r := NewReader(data[pos:])
		payload, err := ReadFieldPayload(r, class, embeddedSize)
		if err != nil {
			return nil, fmt.Errorf("wire: struct field %d payload: %w", index, err)
		}
		pos += len(payload)
		if _, dup := fields[index]; dup {
			return nil, fmt.Errorf("wire: struct value has duplicate field index %d", index)
		}
		fields[index] = payload
	}
	return fields, nil
}

// StructWriter accumulates a struct's fields and emits them in ascending
// index order, as the wire format requires, regardless of the order the
// generated Marshal method happens to call WriteField in.
type StructWriter struct {
	entries []structEntry
}

type structEntry struct {
	index   uint64
	class   SizeClass
	payload []byte
}

// WriteField stages a field for later emission; fields are sorted by
// index only once Finish is called, so generated code can write fields in
// any convenient order (typically declaration order).
func (s *StructWriter) WriteField(index uint64, class SizeClass, payload []byte) {
	s.entries = append(s.entries, structEntry{index: index, class: class, payload: payload})
}

// Finish emits every staged field in ascending index order and returns the
// encoded bytes.
func (s *StructWriter) Finish() []byte {
	sorted := append([]structEntry{}, s.entries...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].index > sorted[j].index; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	w := NewWriter()
	for _, e := range sorted {
		WriteField(w, e.index, e.class, e.payload)
	}
	return w.Bytes()
}
