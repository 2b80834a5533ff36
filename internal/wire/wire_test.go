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

package wire_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/internal/wire"
)

func TestVarintBoundaries(t *testing.T) {
	// S1: every byte-length-class boundary round-trips and uses the
	// expected number of bytes.
	cases := []struct {
		v     uint64
		bytes int
	}{
		{0, 1}, {127, 1},
		{128, 2}, {16511, 2},
		{16512, 3}, {2113663, 3},
		{2113664, 4},
		{math.MaxUint64, 9},
	}
	for _, c := range cases {
		enc := wire.EncodeVarint(c.v)
		require.Lenf(t, enc, c.bytes, "value %d", c.v)
		got, n, err := wire.DecodeVarint(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, c.v, got)
	}
}

func TestVarintExhaustiveSmallRange(t *testing.T) {
	for v := uint64(0); v < 20000; v++ {
		enc := wire.EncodeVarint(v)
		got, n, err := wire.DecodeVarint(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, got)
	}
}

func TestZigZagExtremes(t *testing.T) {
	// S2: zig-zag extremes round-trip, including both signed 64-bit
	// boundaries.
	cases := []int64{0, -1, 1, math.MinInt64, math.MaxInt64, -2, 2}
	for _, v := range cases {
		u := wire.ZigZagEncode(v)
		got := wire.ZigZagDecode(u)
		require.Equal(t, v, got)
	}
	require.Equal(t, uint64(0), wire.ZigZagEncode(0))
	require.Equal(t, uint64(1), wire.ZigZagEncode(-1))
	require.Equal(t, uint64(2), wire.ZigZagEncode(1))
}

func TestF64FidelityIncludingNaN(t *testing.T) {
	// S3: f64 round-trips exact bit patterns, including NaN payloads that
	// would not compare equal with ==.
	values := []float64{0, -0, 1.5, -1.5, math.Inf(1), math.Inf(-1), math.NaN()}
	for _, v := range values {
		payload := wire.EncodeF64(v)
		got, err := wire.DecodeF64(payload)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(v), math.Float64bits(got))
	}
}

func TestBoolDecodeAcceptsAnyNonzeroByte(t *testing.T) {
	// Open question resolution: decoders accept any nonzero byte as true,
	// even though producers only ever emit 0x01.
	v, err := wire.DecodeBool([]byte{0x02})
	require.NoError(t, err)
	require.True(t, v)

	v, err = wire.DecodeBool([]byte{0x00})
	require.NoError(t, err)
	require.False(t, v)
}

func TestBytesAndStringRoundTrip(t *testing.T) {
	b := wire.EncodeBytes([]byte("hello"))
	got, err := wire.DecodeBytes(b)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	s := wire.EncodeString("héllo wörld")
	gotStr, err := wire.DecodeString(s)
	require.NoError(t, err)
	require.Equal(t, "héllo wörld", gotStr)
}

func TestDecodeStringRejectsInvalidUTF8(t *testing.T) {
	invalid := wire.EncodeBytes([]byte{0xff, 0xfe, 0xfd})
	_, err := wire.DecodeString(invalid)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UTF-8")
}

func TestFixedArrayRoundTrip(t *testing.T) {
	items := []float64{1, 2, 3, math.NaN()}
	enc := wire.EncodeFixedArray(items, 8, wire.EncodeF64)
	got, err := wire.DecodeFixedArray(enc, 8, wire.DecodeF64)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range items {
		require.Equal(t, math.Float64bits(items[i]), math.Float64bits(got[i]))
	}
}

func TestVariableArrayRoundTrip(t *testing.T) {
	items := []string{"a", "bb", "ccc", ""}
	enc := wire.EncodeVariableArray(items, wire.EncodeString)
	got, err := wire.DecodeVariableArray(enc, wire.DecodeString)
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestFieldHeaderRoundTrip(t *testing.T) {
	for _, idx := range []uint64{0, 1, 127, 128, 1 << 40} {
		for _, class := range []wire.SizeClass{wire.SizeClassZero, wire.SizeClassEight, wire.SizeClassSized} {
			h := wire.EncodeFieldHeader(idx, class)
			gotIdx, gotClass, _, n, err := wire.DecodeFieldHeader(h)
			require.NoError(t, err)
			require.Equal(t, len(h), n)
			require.Equal(t, idx, gotIdx)
			require.Equal(t, class, gotClass)
		}
	}
}

func TestFieldHeaderEmbeddedRoundTrip(t *testing.T) {
	h := wire.EncodeFieldHeaderEmbedded(42, 17)
	idx, class, size, n, err := wire.DecodeFieldHeader(h)
	require.NoError(t, err)
	require.Equal(t, len(h), n)
	require.Equal(t, uint64(42), idx)
	require.Equal(t, wire.SizeClassEmbedded, class)
	require.Equal(t, uint8(17), size)
}

func TestStructFieldsRoundTripAndSkipUnknown(t *testing.T) {
	// S7: an unrecognized field index is skipped, not an error.
	w := &wire.StructWriter{}
	w.WriteField(0, wire.SizeClassSized, wire.EncodeString("name"))
	w.WriteField(5, wire.SizeClassEight, wire.EncodeF64(3.25)) // field the reader does not know
	w.WriteField(1, wire.SizeClassSized, wire.EncodeU64(99))
	data := w.Finish()

	fields, err := wire.ReadStructFields(data)
	require.NoError(t, err)
	require.Len(t, fields, 3)

	name, err := wire.DecodeString(fields[0])
	require.NoError(t, err)
	require.Equal(t, "name", name)

	age, err := wire.DecodeU64(fields[1])
	require.NoError(t, err)
	require.Equal(t, uint64(99), age)
	// Field 5 exists in the map but is simply never looked at by a
	// decoder generated from a schema that does not declare it.
}

func TestStructFieldsRejectsDuplicateIndex(t *testing.T) {
	w := wire.NewWriter()
	wire.WriteField(w, 0, wire.SizeClassSized, wire.EncodeU64(1))
	wire.WriteField(w, 0, wire.SizeClassSized, wire.EncodeU64(2))
	_, err := wire.ReadStructFields(w.Bytes())
	require.Error(t, err)
}

func TestChoiceFallbackChain(t *testing.T) {
	// S7 (choice variant): a reader that only knows variant 0 still
	// recovers the value carried by an unknown variant 7 via the
	// fallback chain.
	chain := wire.EncodeChoiceChain([]wire.ChoiceEntry{
		{Index: 7, Payload: wire.EncodeString("new shape")},
		{Index: 0, Payload: wire.EncodeString("circle")}, // fallback, known to old readers
	})
	entries, err := wire.DecodeChoiceChain(chain)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	known := func(idx uint64) bool { return idx == 0 }
	entry, err := wire.FindKnownVariant(entries, known)
	require.NoError(t, err)
	require.Equal(t, uint64(0), entry.Index)
	got, err := wire.DecodeString(entry.Payload)
	require.NoError(t, err)
	require.Equal(t, "circle", got)
}

func TestChoiceFallbackChainExhausted(t *testing.T) {
	chain := wire.EncodeChoiceChain([]wire.ChoiceEntry{{Index: 9, Payload: wire.EncodeString("x")}})
	entries, err := wire.DecodeChoiceChain(chain)
	require.NoError(t, err)
	_, err = wire.FindKnownVariant(entries, func(uint64) bool { return false })
	require.ErrorIs(t, err, wire.ErrChoiceChainExhausted)
}

func TestSizeOfMatchesActualEncodedLength(t *testing.T) {
	// Testable Property 5: a length prediction matches serialize's actual
	// output length exactly.
	payload := wire.EncodeString("a reasonably long string value")
	w := wire.NewWriter()
	wire.WriteField(w, 3, wire.SizeClassSized, payload)
	data := w.Bytes()

	header := wire.EncodeFieldHeader(3, wire.SizeClassSized)
	sizeVarint := wire.EncodeVarint(uint64(len(payload)))
	predicted := len(header) + len(sizeVarint) + len(payload)
	require.Equal(t, predicted, len(data))
}
