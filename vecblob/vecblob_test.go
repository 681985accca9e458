package vecblob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/sparse"
)

func vec(pairs ...float64) sparse.Vector {
	v := sparse.NewVector(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		v.Append(int32(pairs[i]), pairs[i+1])
	}

	return v
}

func testVectors() []sparse.Vector {
	return []sparse.Vector{
		vec(0, 1, 182622, 1, 201016, 1, 32771, 2.5),
		vec(0, 1),
		vec(),
		vec(0, 1, 65174, 16, 81259, 18, 38887, 17),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, ct := range compressions {
		for _, bigEndian := range []bool{false, true} {
			name := ct.String()
			opts := []EncoderOption{WithCompression(ct)}
			if bigEndian {
				name += "/big"
				opts = append(opts, WithBigEndian())
			}

			t.Run(name, func(t *testing.T) {
				vectors := testVectors()
				data, err := Encode(18, 0xfeed, vectors, opts...)
				require.NoError(t, err)

				dec, err := NewDecoder(data)
				require.NoError(t, err)

				h := dec.Header()
				require.Equal(t, uint32(len(vectors)), h.Count)
				require.Equal(t, uint64(0xfeed), h.Fingerprint)
				require.Equal(t, uint8(18), h.Flag.BitWidth)
				require.Equal(t, ct, h.Flag.Compression())
				require.Equal(t, bigEndian, h.Flag.IsBigEndian())

				require.Equal(t, len(vectors), dec.Len())
				require.Equal(t, vectors, dec.Decode())

				v, err := dec.At(3)
				require.NoError(t, err)
				require.Equal(t, vectors[3], v)
			})
		}
	}
}

func TestEncodeDecode_FullWidthIndices(t *testing.T) {
	vectors := []sparse.Vector{vec(0, 1, -1198601890, 1, 752802123, 1)}

	data, err := Encode(32, 1, vectors)
	require.NoError(t, err)

	dec, err := NewDecoder(data)
	require.NoError(t, err)
	require.Equal(t, vectors, dec.Decode())
}

func TestEncodeDecode_Empty(t *testing.T) {
	data, err := Encode(8, 0, nil, WithCompression(format.CompressionZstd))
	require.NoError(t, err)

	dec, err := NewDecoder(data)
	require.NoError(t, err)
	require.Zero(t, dec.Len())
	require.Empty(t, dec.Decode())
}

func TestDecoder_AllStopsEarly(t *testing.T) {
	data, err := Encode(18, 0, testVectors())
	require.NoError(t, err)

	dec, err := NewDecoder(data)
	require.NoError(t, err)

	seen := 0
	for i := range dec.All() {
		seen++
		if i == 1 {
			break
		}
	}
	require.Equal(t, 2, seen)

	_, err = dec.At(4)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestEncoder_Errors(t *testing.T) {
	t.Run("bit width", func(t *testing.T) {
		_, err := NewEncoder(0, 0)
		require.ErrorIs(t, err, errs.ErrInvalidBitWidth)
	})

	t.Run("compression", func(t *testing.T) {
		_, err := NewEncoder(8, 0, WithCompression(format.CompressionType(0x40)))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("index out of range", func(t *testing.T) {
		enc, err := NewEncoder(4, 0)
		require.NoError(t, err)
		require.NoError(t, enc.Append(vec(0, 1, 15, 1)))
		require.ErrorIs(t, enc.Append(vec(16, 1)), errs.ErrIndexOutOfRange)
		require.ErrorIs(t, enc.Append(vec(-1, 1)), errs.ErrIndexOutOfRange)
		require.Equal(t, 1, enc.Len())
	})

	t.Run("length mismatch", func(t *testing.T) {
		enc, err := NewEncoder(8, 0)
		require.NoError(t, err)
		err = enc.Append(sparse.Vector{Indices: []int32{1, 2}, Values: []float64{1}})
		require.ErrorIs(t, err, errs.ErrLengthMismatch)
	})

	t.Run("finished", func(t *testing.T) {
		enc, err := NewEncoder(8, 0)
		require.NoError(t, err)
		_, err = enc.Finish()
		require.NoError(t, err)

		require.ErrorIs(t, enc.Append(vec(0, 1)), errs.ErrBlobFinished)
		_, err = enc.Finish()
		require.ErrorIs(t, err, errs.ErrBlobFinished)
	})
}

func TestDecoder_Corruption(t *testing.T) {
	encoded := func(t *testing.T, opts ...EncoderOption) []byte {
		t.Helper()
		data, err := Encode(18, 7, testVectors(), opts...)
		require.NoError(t, err)

		return data
	}

	t.Run("truncated", func(t *testing.T) {
		data := encoded(t)
		_, err := NewDecoder(data[:len(data)-1])
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := NewDecoder(make([]byte, 10))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		data := encoded(t)
		data[HeaderSize+3] ^= 0xff
		_, err := NewDecoder(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("flipped checksum byte", func(t *testing.T) {
		data := encoded(t, WithCompression(format.CompressionS2))
		data[len(data)-1] ^= 0x01
		_, err := NewDecoder(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("count disagrees", func(t *testing.T) {
		data := encoded(t)
		data[4]++
		_, err := NewDecoder(data)
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("bit width narrowed", func(t *testing.T) {
		data := encoded(t)
		data[3] = 8
		_, err := NewDecoder(data)
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	})
}

func BenchmarkEncode(b *testing.B) {
	vectors := make([]sparse.Vector, 1000)
	for i := range vectors {
		vectors[i] = testVectors()[i%4]
	}

	for b.Loop() {
		_, _ = Encode(18, 0, vectors, WithCompression(format.CompressionLZ4))
	}
}
