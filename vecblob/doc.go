// Package vecblob stores a batch of combined sparse vectors as one binary blob.
//
// # Layout
//
//	┌──────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                     │
//	├──────────────────────────────────────────────┤
//	│ Payload (StoredLength bytes, maybe compressed)│
//	├──────────────────────────────────────────────┤
//	│ Checksum (8 bytes, xxHash64 of raw payload)  │
//	└──────────────────────────────────────────────┘
//
// Header:
//
//	Bytes  | Field          | Description
//	-------|----------------|------------------------------------------
//	0-1    | Options        | magic (bits 4-15), endianness (bit 1); always little-endian
//	2      | Compression    | format.CompressionType of the payload
//	3      | BitWidth       | hash space width the vectors were built with
//	4-7    | Count          | number of vectors
//	8-15   | Fingerprint    | feature.Set fingerprint
//	16-19  | PayloadLength  | uncompressed payload size
//	20-23  | StoredLength   | payload size as stored
//	24-31  | reserved       | zero
//
// The raw payload holds each vector in order as a uvarint entry count
// followed by that many (uint32 index, float64 value) pairs in the byte
// order selected by the header.
//
// Encoders are single-use and not safe for concurrent use. Decoders are
// read-only after construction and may be iterated from many goroutines.
package vecblob
