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

// Package wire implements the binary encoding TagWire's generated code is
// built on: canonical variable-length integers, zig-zag mapping for signed
// values, the fixed-width and length-prefixed primitive encodings, field
// framing, and the struct/choice message-level helpers.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned (wrapped with more context) when a read runs
// off the end of the input before a value is fully decoded.
var ErrTruncated = errors.New("wire: truncated input")

// maxVarintLenClass is the largest byte-length class (1-8) that uses the
// biased, prefix-free encoding; byte length 9 is the raw-value sentinel
// that covers the remainder of the u64 range.
const maxVarintLenClass = 8

// varintClassBias returns the cumulative bias (the smallest value encoded
// using exactly n bytes, for 1 <= n <= 8) and the number of values that
// byte length n can represent.
func varintClassBias(n int) (bias uint64, rangeSize uint64) {
	for i := 1; i < n; i++ {
		rangeSize = uint64(1) << uint(7*i)
		bias += rangeSize
	}
	rangeSize = uint64(1) << uint(7*n)
	return bias, rangeSize
}

// AppendVarint encodes v in TagWire's canonical variable-length form and
// appends it to buf, returning the extended slice.
//
// Byte length is signaled by the count of leading one-bits in the first
// byte before the first zero-bit: 0 leading ones (top bit clear) means a
// 1-byte encoding holding v directly (v in 0..127); each additional
// leading one-bit adds one more trailing byte and shifts the representable
// range up by a power of two (128..16511 in two bytes, 16512..2113663 in
// three bytes, and so on). A first byte of 0xFF (eight leading one-bits,
// no terminator) signals a 9-byte encoding: the remaining 8 bytes hold the
// value directly, little-endian, uncompressed, covering whatever the
// biased classes below it cannot.
func AppendVarint(buf []byte, v uint64) []byte {
	for n := 1; n <= maxVarintLenClass; n++ {
		bias, rangeSize := varintClassBias(n)
		if v-bias < rangeSize {
			return appendVarintClass(buf, n, v-bias)
		}
	}
	// Falls outside every biased class: encode raw in 9 bytes.
	buf = append(buf, 0xFF)
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	return append(buf, raw[:]...)
}

func appendVarintClass(buf []byte, n int, stored uint64) []byte {
	firstByteValueBits := 8 - n
	tag := byte(0)
	for i := 0; i < n-1; i++ {
		tag |= 1 << uint(7-i)
	}
	first := tag | byte(stored&((1<<uint(firstByteValueBits))-1))
	buf = append(buf, first)
	rest := stored >> uint(firstByteValueBits)
	for i := 0; i < n-1; i++ {
		buf = append(buf, byte(rest))
		rest >>= 8
	}
	return buf
}

// EncodeVarint is a convenience wrapper around AppendVarint for callers
// that want a fresh slice.
func EncodeVarint(v uint64) []byte {
	return AppendVarint(nil, v)
}

// DecodeVarint reads one canonical varint from the front of data, returning
// the value and the number of bytes consumed.
func DecodeVarint(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty varint", ErrTruncated)
	}
	first := data[0]
	if first == 0xFF {
		if len(data) < 9 {
			return 0, 0, fmt.Errorf("%w: 9-byte varint", ErrTruncated)
		}
		return binary.LittleEndian.Uint64(data[1:9]), 9, nil
	}

	n := 1
	for n <= maxVarintLenClass {
		bitPos := 8 - n
		if first&(1<<uint(bitPos)) == 0 {
			break
		}
		n++
	}
	if n > maxVarintLenClass {
		return 0, 0, fmt.Errorf("wire: malformed varint first byte 0x%02x", first)
	}
	if len(data) < n {
		return 0, 0, fmt.Errorf("%w: %d-byte varint", ErrTruncated, n)
	}

	firstByteValueBits := 8 - n
	stored := uint64(first) & ((1 << uint(firstByteValueBits)) - 1)
	for i := 0; i < n-1; i++ {
		stored |= uint64(data[1+i]) << uint(firstByteValueBits+8*i)
	}
	bias, _ := varintClassBias(n)
	return stored + bias, n, nil
}

// ZigZagEncode maps a signed integer to an unsigned one so that small
// magnitude values (positive or negative) encode as small varints.
func ZigZagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
