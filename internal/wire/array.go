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

// EncodeFixedArray encodes an array whose element type has a fixed wire
// size (the Go emitter uses it for bool, f64, and unit): a count varint
// followed by the tightly packed element bytes,
// with no per-element length.
func EncodeFixedArray[T any](items []T, elemSize int, encode func(T) []byte) []byte {
	buf := AppendVarint(nil, uint64(len(items)))
	for _, item := range items {
		b := encode(item)
		if len(b) != elemSize {
			panic(fmt.Sprintf("wire: fixed array element encoded to %d bytes, want %d", len(b), elemSize))
		}
		buf = append(buf, b...)
	}
	return buf
}

// DecodeFixedArray is the inverse of EncodeFixedArray.
func DecodeFixedArray[T any](payload []byte, elemSize int, decode func([]byte) (T, error)) ([]T, error) {
	count, n, err := DecodeVarint(payload)
	if err != nil {
		return nil, err
	}
	rest := payload[n:]
	want := int(count) * elemSize
	if len(rest) != want {
		return nil, fmt.Errorf("wire: fixed array declares %d elements of %d bytes but has %d bytes available", count, elemSize, len(rest))
	}
	items := make([]T, count)
	for i := range items {
		v, err := decode(rest[i*elemSize : (i+1)*elemSize])
		if err != nil {
			return nil, fmt.Errorf("wire: decoding array element %d: %w", i, err)
		}
		items[i] = v
	}
	return items, nil
}

// EncodeVariableArray encodes an array whose element type does not have a
// fixed wire size (the Go emitter uses it for bytes, string, u64, s64,
// array, and every struct/choice): a count varint, then for each element a size
// varint followed by that element's own encoded bytes.
func EncodeVariableArray[T any](items []T, encode func(T) []byte) []byte {
	buf := AppendVarint(nil, uint64(len(items)))
	for _, item := range items {
		b := encode(item)
		buf = AppendVarint(buf, uint64(len(b)))
		buf = append(buf, b...)
	}
	return buf
}

// DecodeVariableArray is the inverse of EncodeVariableArray.
func DecodeVariableArray[T any](payload []byte, decode func([]byte) (T, error)) ([]T, error) {
	count, n, err := DecodeVarint(payload)
	if err != nil {
		return nil, err
	}
	pos := n
	items := make([]T, 0, count)
	for i := uint64(0); i < count; i++ {
		size, sn, err := DecodeVarint(payload[pos:])
		if err != nil {
			return nil, fmt.Errorf("wire: array element %d size: %w", i, err)
		}
		pos += sn
		end := pos + int(size)
		if end > len(payload) {
			return nil, fmt.Errorf("%w: array element %d", ErrTruncated, i)
		}
		v, err := decode(payload[pos:end])
		if err != nil {
			return nil, fmt.Errorf("wire: decoding array element %d: %w", i, err)
		}
		items = append(items, v)
		pos = end
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("wire: array payload has %d trailing bytes", len(payload)-pos)
	}
	return items, nil
}
