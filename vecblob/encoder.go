package vecblob

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/hashvec/compress"
	"github.com/arloliu/hashvec/endian"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/internal/hash"
	"github.com/arloliu/hashvec/internal/options"
	"github.com/arloliu/hashvec/internal/pool"
	"github.com/arloliu/hashvec/sparse"
)

// entrySize is the encoded size of one (index, value) pair.
const entrySize = 4 + 8

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*Encoder]

// WithCompression selects the payload codec. The default is no compression.
func WithCompression(compression format.CompressionType) EncoderOption {
	return options.New(func(e *Encoder) error {
		codec, err := compress.GetCodec(compression)
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrInvalidHeaderFlags, err)
		}
		e.codec = codec
		e.header.Flag.CompressionType = uint8(compression)

		return nil
	})
}

// WithLittleEndian stores the payload little-endian. This is the default.
func WithLittleEndian() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.header.Flag.WithLittleEndian()
	})
}

// WithBigEndian stores the payload big-endian.
func WithBigEndian() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.header.Flag.WithBigEndian()
	})
}

// Encoder accumulates sparse vectors into a blob.
type Encoder struct {
	header   Header
	engine   endian.EndianEngine
	codec    compress.Codec
	mask     uint32
	payload  *pool.ByteBuffer
	finished bool
}

// NewEncoder creates an encoder for vectors built with the given bit width
// and feature-set fingerprint.
func NewEncoder(bitWidth int, fingerprint uint64, opts ...EncoderOption) (*Encoder, error) {
	mask, err := feature.Mask(bitWidth)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		header: Header{
			Fingerprint: fingerprint,
			Flag:        NewFlag(bitWidth),
		},
		codec: compress.NewNoOpCompressor(),
		mask:  mask,
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	e.engine = e.header.Flag.GetEndianEngine()
	e.payload = pool.GetPayloadBuffer()

	return e, nil
}

// Append adds one vector. Every index must fit the bit width.
func (e *Encoder) Append(v sparse.Vector) error {
	if e.finished {
		return errs.ErrBlobFinished
	}
	if e.header.Count == math.MaxUint32 {
		return errs.ErrTooManyVectors
	}
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("%w: %d indices, %d values", errs.ErrLengthMismatch, len(v.Indices), len(v.Values))
	}

	for _, idx := range v.Indices {
		if uint32(idx)&^e.mask != 0 { //nolint:gosec
			return fmt.Errorf("%w: %d with %d bits", errs.ErrIndexOutOfRange, idx, e.header.Flag.BitWidth)
		}
	}

	e.payload.Grow(binary.MaxVarintLen64 + len(v.Indices)*entrySize)
	buf := binary.AppendUvarint(e.payload.B, uint64(len(v.Indices)))
	for i, idx := range v.Indices {
		buf = e.engine.AppendUint32(buf, uint32(idx)) //nolint:gosec
		buf = e.engine.AppendUint64(buf, math.Float64bits(v.Values[i]))
	}
	e.payload.B = buf
	e.header.Count++

	return nil
}

// Len returns the number of vectors appended so far.
func (e *Encoder) Len() int {
	return int(e.header.Count)
}

// Finish compresses the payload and returns the complete blob. The encoder
// cannot be used afterwards.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errs.ErrBlobFinished
	}
	e.finished = true
	defer func() {
		pool.PutPayloadBuffer(e.payload)
		e.payload = nil
	}()

	raw := e.payload.Bytes()
	if uint64(len(raw)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes", errs.ErrInvalidPayload, len(raw))
	}

	stored, err := e.codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if uint64(len(stored)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: stored payload of %d bytes", errs.ErrInvalidPayload, len(stored))
	}

	e.header.PayloadLength = uint32(len(raw))    //nolint:gosec
	e.header.StoredLength = uint32(len(stored)) //nolint:gosec

	blob := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(blob)

	blob.ExtendOrGrow(HeaderSize)
	e.header.put(blob.B[:HeaderSize])
	blob.MustWrite(stored)
	blob.B = e.engine.AppendUint64(blob.B, hash.Checksum(raw))

	out := make([]byte, blob.Len())
	copy(out, blob.Bytes())

	return out, nil
}

// Encode writes vectors into a single blob.
func Encode(bitWidth int, fingerprint uint64, vectors []sparse.Vector, opts ...EncoderOption) ([]byte, error) {
	enc, err := NewEncoder(bitWidth, fingerprint, opts...)
	if err != nil {
		return nil, err
	}

	for i, v := range vectors {
		if err := enc.Append(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}

	return enc.Finish()
}
