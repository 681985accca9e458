package compress

// ZstdCompressor compresses payloads with Zstandard. It gives the best ratio
// of the built-in codecs and suits blobs that are written once and archived.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
