package vecblob

import (
	"fmt"

	"github.com/arloliu/hashvec/endian"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
)

const (
	HeaderSize   = 32 // fixed header size in bytes
	ChecksumSize = 8  // trailing payload checksum size in bytes

	EndiannessMask  = 0x0002 // bit 1: 0 little-endian, 1 big-endian
	ReservedMask    = 0x000D // bits 0, 2, 3 must be zero
	MagicNumberMask = 0xFFF0 // bits 4-15

	MagicVectorV1Opt = 0xEC10 // version 1 sparse vector blob
)

// Flag is the packed first word of the header plus the two single-byte
// settings that follow it.
type Flag struct {
	// Options packs the magic number and the endianness bit.
	Options uint16
	// CompressionType is the payload codec.
	CompressionType uint8
	// BitWidth is the hash space width, 1..32.
	BitWidth uint8
}

// NewFlag creates a little-endian, uncompressed flag.
func NewFlag(bitWidth int) Flag {
	return Flag{
		Options:         MagicVectorV1Opt,
		CompressionType: uint8(format.CompressionNone),
		BitWidth:        uint8(bitWidth), //nolint:gosec
	}
}

func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns bits 4-15 of Options.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// GetEndianEngine returns the payload byte order.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Compression returns the payload codec type.
func (f Flag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// Validate checks the magic number, reserved bits, compression and bit width.
func (f Flag) Validate() error {
	if f.GetMagicNumber() != MagicVectorV1Opt {
		return errs.ErrInvalidMagicNumber
	}
	if f.Options&ReservedMask != 0 {
		return fmt.Errorf("%w: reserved option bits set", errs.ErrInvalidHeaderFlags)
	}

	switch f.Compression() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: compression type %d", errs.ErrInvalidHeaderFlags, f.CompressionType)
	}

	if f.BitWidth == 0 || int(f.BitWidth) > feature.MaxBitWidth {
		return fmt.Errorf("%w: bit width %d", errs.ErrInvalidHeaderFlags, f.BitWidth)
	}

	return nil
}

// Header is the fixed-size section at the start of a vector blob.
type Header struct {
	// Count is the number of vectors stored.
	Count uint32 // byte offset 4-7
	// Fingerprint identifies the feature set the vectors were built with.
	Fingerprint uint64 // byte offset 8-15
	// PayloadLength is the size of the raw payload.
	PayloadLength uint32 // byte offset 16-19
	// StoredLength is the size of the payload after compression.
	StoredLength uint32 // byte offset 20-23

	Flag Flag // byte offset 0-3
}

// Mask returns the index mask implied by the bit width.
func (h *Header) Mask() uint32 {
	mask, _ := feature.Mask(int(h.Flag.BitWidth))
	return mask
}

// Parse parses exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// Options is always little-endian; it decides the order of the rest.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.CompressionType = data[2]
	h.Flag.BitWidth = data[3]

	engine := h.Flag.GetEndianEngine()
	h.Count = engine.Uint32(data[4:8])
	h.Fingerprint = engine.Uint64(data[8:16])
	h.PayloadLength = engine.Uint32(data[16:20])
	h.StoredLength = engine.Uint32(data[20:24])

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	for _, b := range data[24:32] {
		if b != 0 {
			return fmt.Errorf("%w: reserved header bytes set", errs.ErrInvalidHeaderFlags)
		}
	}

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.put(b)

	return b
}

func (h *Header) put(b []byte) {
	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.CompressionType
	b[3] = h.Flag.BitWidth
	engine.PutUint32(b[4:8], h.Count)
	engine.PutUint64(b[8:16], h.Fingerprint)
	engine.PutUint32(b[16:20], h.PayloadLength)
	engine.PutUint32(b[20:24], h.StoredLength)
	clear(b[24:32])
}

// ParseHeader parses the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
