// Package compress provides the payload codecs of hashvec vector blobs.
//
// A vector blob payload is a sequence of (uvarint count, index, value) runs.
// Indices of one feature set repeat heavily across records and categorical
// values are always 1.0, so general-purpose compression usually pays off:
//
//   - None: payload stored as-is
//   - Zstd: best ratio, for archival of encoded training sets
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression, for blobs read many times
//
// All codecs are stateless values and safe for concurrent use. Zstd and LZ4
// keep their encoder/decoder state in sync.Pools.
//
// The cgo Zstd implementation (valyala/gozstd) is only compiled with the
// nobuild tag; the default build uses the pure-Go klauspost/compress encoder.
package compress
