// Package hash provides the 64-bit xxHash helpers used for fingerprints and
// checksums. The 32-bit feature hashing primitives live in package murmur.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Checksum computes the xxHash64 of a byte payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprint computes the xxHash64 of an ordered list of parts. Each part is
// length-prefixed, so ("ab", "c") and ("a", "bc") hash differently.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()

	var lenBuf [4]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p))) //nolint:gosec
		_, _ = d.Write(lenBuf[:])
		_, _ = d.WriteString(p)
	}

	return d.Sum64()
}
