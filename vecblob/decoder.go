package vecblob

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/arloliu/hashvec/compress"
	"github.com/arloliu/hashvec/endian"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/internal/hash"
	"github.com/arloliu/hashvec/sparse"
)

// Decoder reads the vectors of a blob. The payload is decompressed and
// validated once by NewDecoder.
type Decoder struct {
	header  Header
	engine  endian.EndianEngine
	payload []byte
	offsets []int
}

// NewDecoder validates data and prepares it for iteration.
func NewDecoder(data []byte) (*Decoder, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	want := HeaderSize + int(header.StoredLength) + ChecksumSize
	if len(data) != want {
		return nil, fmt.Errorf("%w: blob is %d bytes, header implies %d", errs.ErrInvalidPayload, len(data), want)
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeaderFlags, err)
	}

	stored := data[HeaderSize : HeaderSize+int(header.StoredLength)]
	payload, err := codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}
	if len(payload) != int(header.PayloadLength) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidPayload, len(payload), header.PayloadLength)
	}

	engine := header.Flag.GetEndianEngine()
	if sum := engine.Uint64(data[want-ChecksumSize:]); sum != hash.Checksum(payload) {
		return nil, errs.ErrChecksumMismatch
	}

	d := &Decoder{
		header:  header,
		engine:  engine,
		payload: payload,
	}
	if err := d.index(); err != nil {
		return nil, err
	}

	return d, nil
}

// index records the start of every vector and checks the payload structure.
func (d *Decoder) index() error {
	mask := d.header.Mask()
	// every vector takes at least one byte, so a forged count cannot force a huge allocation
	d.offsets = make([]int, 0, min(int(d.header.Count), len(d.payload)))

	pos := 0
	for pos < len(d.payload) {
		if len(d.offsets) == int(d.header.Count) {
			return fmt.Errorf("%w: trailing bytes after %d vectors", errs.ErrInvalidPayload, d.header.Count)
		}
		d.offsets = append(d.offsets, pos)

		n, size := binary.Uvarint(d.payload[pos:])
		if size <= 0 {
			return fmt.Errorf("%w: bad entry count at offset %d", errs.ErrInvalidPayload, pos)
		}
		pos += size

		if n > uint64(len(d.payload)-pos)/entrySize {
			return fmt.Errorf("%w: vector %d overruns payload", errs.ErrInvalidPayload, len(d.offsets)-1)
		}

		for range n {
			if d.engine.Uint32(d.payload[pos:])&^mask != 0 {
				return fmt.Errorf("%w: vector %d", errs.ErrIndexOutOfRange, len(d.offsets)-1)
			}
			pos += entrySize
		}
	}

	if len(d.offsets) != int(d.header.Count) {
		return fmt.Errorf("%w: found %d vectors, header says %d", errs.ErrInvalidPayload, len(d.offsets), d.header.Count)
	}

	return nil
}

// Header returns the parsed header.
func (d *Decoder) Header() Header {
	return d.header
}

// Len returns the number of vectors.
func (d *Decoder) Len() int {
	return len(d.offsets)
}

// At decodes vector i.
func (d *Decoder) At(i int) (sparse.Vector, error) {
	if i < 0 || i >= len(d.offsets) {
		return sparse.Vector{}, fmt.Errorf("%w: vector %d of %d", errs.ErrIndexOutOfRange, i, len(d.offsets))
	}

	return d.vectorAt(d.offsets[i]), nil
}

func (d *Decoder) vectorAt(pos int) sparse.Vector {
	n, size := binary.Uvarint(d.payload[pos:])
	pos += size

	v := sparse.NewVector(int(n)) //nolint:gosec
	for range n {
		idx := int32(d.engine.Uint32(d.payload[pos:])) //nolint:gosec
		val := math.Float64frombits(d.engine.Uint64(d.payload[pos+4:]))
		v.Append(idx, val)
		pos += entrySize
	}

	return v
}

// All yields every vector with its position. Each vector owns its slices.
func (d *Decoder) All() iter.Seq2[int, sparse.Vector] {
	return func(yield func(int, sparse.Vector) bool) {
		for i, pos := range d.offsets {
			if !yield(i, d.vectorAt(pos)) {
				return
			}
		}
	}
}

// Decode returns every vector.
func (d *Decoder) Decode() []sparse.Vector {
	out := make([]sparse.Vector, 0, len(d.offsets))
	for _, v := range d.All() {
		out = append(out, v)
	}

	return out
}
