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
	"fmt"
)

// SizeClass is the 2-bit tag, carried in the low bits of a field header
// varint, that tells a decoder how to find the end of a field's payload
// without knowing the field's declared type.
type SizeClass uint64

const (
	// SizeClassZero fields have no payload bytes at all (the unit type).
	SizeClassZero SizeClass = 0
	// SizeClassEight fields have exactly eight payload bytes (f64).
	SizeClassEight SizeClass = 1
	// SizeClassSized fields are followed by a varint giving the payload's
	// byte length, then that many payload bytes. Every variable-length
	// primitive (bool, u64, s64, bytes, string, array, and any custom
	// struct/choice type) uses this class by default.
	SizeClassSized SizeClass = 2
	// SizeClassEmbedded fields carry their byte length (0-255) packed
	// into the header varint itself alongside the field index, so a
	// decoder needs to read only the header to know how many payload
	// bytes follow. This is an optional compact form a producer may
	// choose for small bytes/string/array payloads instead of
	// SizeClassSized. This package decodes it and can write it
	// (WriteFieldEmbedded), but code generated by the Go emitter never
	// produces it.
	SizeClassEmbedded SizeClass = 3
)

// Writer is an append-only byte sink, the minimal interface field framing
// and primitive encoding need to produce wire bytes.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteRaw appends raw bytes verbatim.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reader is a sequential, bounds-checked cursor over a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reading.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns how many bytes are left to read.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadN reads and returns the next n bytes, or an error if fewer remain.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: wanted %d bytes, %d remain", ErrTruncated, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the cursor past n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadN(n)
	return err
}

// ReadVarint decodes one varint at the cursor and advances past it.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n, err := DecodeVarint(r.data[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// EncodeFieldHeader returns the varint bytes for a field header of the
// given index and size class (SizeClassZero, SizeClassEight, or
// SizeClassSized; use EncodeFieldHeaderEmbedded for SizeClassEmbedded).
func EncodeFieldHeader(index uint64, class SizeClass) []byte {
	return EncodeVarint(index<<2 | uint64(class))
}

// EncodeFieldHeaderEmbedded returns the varint bytes for a SizeClassEmbedded
// field header, packing the payload's byte length (0-255) into the header
// itself alongside the field index.
func EncodeFieldHeaderEmbedded(index uint64, size uint8) []byte {
	return EncodeVarint(index<<10 | uint64(size)<<2 | uint64(SizeClassEmbedded))
}

// DecodeFieldHeader reads a field header varint from the front of data,
// returning the field index, its size class, the embedded size (only
// meaningful when class is SizeClassEmbedded), and the number of header
// bytes consumed.
func DecodeFieldHeader(data []byte) (index uint64, class SizeClass, embeddedSize uint8, n int, err error) {
	v, n, err := DecodeVarint(data)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	class = SizeClass(v & 3)
	if class == SizeClassEmbedded {
		embeddedSize = uint8((v >> 2) & 0xFF)
		index = v >> 10
	} else {
		index = v >> 2
	}
	return index, class, embeddedSize, n, nil
}

// WriteField writes a complete field (header plus payload) to w, choosing
// the header form the class requires.
func WriteField(w *Writer, index uint64, class SizeClass, payload []byte) {
	switch class {
	case SizeClassZero:
		w.WriteRaw(EncodeFieldHeader(index, class))
	case SizeClassEight:
		w.WriteRaw(EncodeFieldHeader(index, class))
		w.WriteRaw(payload)
	case SizeClassSized:
		w.WriteRaw(EncodeFieldHeader(index, class))
		w.WriteRaw(AppendVarint(nil, uint64(len(payload))))
		w.WriteRaw(payload)
	default:
		panic("wire: WriteField does not support SizeClassEmbedded; use WriteFieldEmbedded")
	}
}

// WriteFieldEmbedded writes a field using the compact SizeClassEmbedded
// form, for a payload of at most 255 bytes.
func WriteFieldEmbedded(w *Writer, index uint64, payload []byte) {
	if len(payload) > 255 {
		panic("wire: WriteFieldEmbedded payload too large for an embedded size")
	}
	w.WriteRaw(EncodeFieldHeaderEmbedded(index, uint8(len(payload))))
	w.WriteRaw(payload)
}

// ReadFieldPayload reads the payload bytes for a field whose header has
// already been decoded with class and embeddedSize, without interpreting
// them. Skipping an unknown field and decoding a known one both start
// here.
func ReadFieldPayload(r *Reader, class SizeClass, embeddedSize uint8) ([]byte, error) {
	switch class {
	case SizeClassZero:
		return nil, nil
	case SizeClassEight:
		return r.ReadN(8)
	case SizeClassSized:
		size, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return r.ReadN(int(size))
	case SizeClassEmbedded:
		return r.ReadN(int(embeddedSize))
	default:
		return nil, fmt.Errorf("wire: unknown size class %d", class)
	}
}
