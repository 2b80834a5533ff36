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

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// EncodeBool returns the one-byte payload for a bool value. A decoder
// must accept any nonzero byte as true (spec §9's open question), since a
// future revision of this format may repurpose the unused bit patterns;
// producers always emit exactly 0x01 for true.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// DecodeBool reads the one-byte payload for a bool value.
func DecodeBool(payload []byte) (bool, error) {
	if len(payload) != 1 {
		return false, fmt.Errorf("wire: bool payload must be 1 byte, got %d", len(payload))
	}
	return payload[0] != 0, nil
}

// EncodeF64 returns the eight-byte little-endian IEEE-754 payload for v,
// preserving the exact bit pattern (including any NaN payload) rather
// than normalizing it.
func EncodeF64(v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return b[:]
}

// DecodeF64 reads an eight-byte little-endian IEEE-754 payload.
func DecodeF64(payload []byte) (float64, error) {
	if len(payload) != 8 {
		return 0, fmt.Errorf("wire: f64 payload must be 8 bytes, got %d", len(payload))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(payload)), nil
}

// EncodeU64 returns the variable-length payload for an unsigned integer.
func EncodeU64(v uint64) []byte {
	return EncodeVarint(v)
}

// DecodeU64 reads a variable-length unsigned integer payload; the payload
// must be consumed in full by exactly one varint (no trailing bytes).
func DecodeU64(payload []byte) (uint64, error) {
	v, n, err := DecodeVarint(payload)
	if err != nil {
		return 0, err
	}
	if n != len(payload) {
		return 0, fmt.Errorf("wire: u64 payload has %d trailing bytes", len(payload)-n)
	}
	return v, nil
}

// EncodeS64 returns the variable-length, zig-zag-mapped payload for a
// signed integer.
func EncodeS64(v int64) []byte {
	return EncodeVarint(ZigZagEncode(v))
}

// DecodeS64 reads a variable-length, zig-zag-mapped signed integer payload.
func DecodeS64(payload []byte) (int64, error) {
	u, err := DecodeU64(payload)
	if err != nil {
		return 0, err
	}
	return ZigZagDecode(u), nil
}

// EncodeBytes returns the length-prefixed, self-delimiting payload for a
// byte string: a varint length followed by the raw bytes.
func EncodeBytes(v []byte) []byte {
	buf := AppendVarint(nil, uint64(len(v)))
	return append(buf, v...)
}

// DecodeBytes reads a length-prefixed byte string payload, requiring the
// declared length to account for every byte present (no trailing data).
func DecodeBytes(payload []byte) ([]byte, error) {
	size, n, err := DecodeVarint(payload)
	if err != nil {
		return nil, err
	}
	rest := payload[n:]
	if uint64(len(rest)) != size {
		return nil, fmt.Errorf("wire: bytes payload declares length %d but has %d bytes available", size, len(rest))
	}
	return append([]byte{}, rest...), nil
}

// EncodeString returns the length-prefixed payload for a string, encoded
// as its UTF-8 bytes.
func EncodeString(v string) []byte {
	return EncodeBytes([]byte(v))
}

// DecodeString reads a length-prefixed string payload, rejecting bytes
// that are not well-formed UTF-8 rather than silently substituting the
// replacement character.
func DecodeString(payload []byte) (string, error) {
	b, err := DecodeBytes(payload)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("wire: string payload is not valid UTF-8")
	}
	return string(b), nil
}

