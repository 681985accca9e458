// Package murmur implements the 32-bit MurmurHash3 (x86) primitives used to
// map raw feature values into the hashed index space.
//
// Both functions are part of the persisted-model contract: a trained weight
// vector is only meaningful together with the exact hash function that
// produced its indices. The outputs therefore must stay bit-exact across
// releases and across implementations in other languages.
//
// HashString operates on UTF-16 code units, not on UTF-8 bytes. This matches
// the "unencoded chars" variant of MurmurHash3 found in JVM libraries, so a Go
// string and the equivalent JVM string hash to the same value.
package murmur

import (
	"math/bits"
	"unicode/utf16"
)

const (
	c1 uint32 = 0xcc9e2d51
	c2 uint32 = 0x1b873593
)

// HashInt returns the MurmurHash3 (x86, 32-bit, seed 0) of a single 4-byte block.
func HashInt(x int32) int32 {
	k1 := mixK1(uint32(x)) //nolint:gosec
	h1 := mixH1(0, k1)

	return int32(fmix(h1, 4)) //nolint:gosec
}

// HashString returns the MurmurHash3 (x86, 32-bit, seed 0) of the UTF-16 code
// units of s. Runes outside the BMP contribute two units (a surrogate pair).
func HashString(s string) int32 {
	var st stringState
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			st.add(uint16(hi)) //nolint:gosec
			st.add(uint16(lo)) //nolint:gosec

			continue
		}
		st.add(uint16(r)) //nolint:gosec
	}

	return st.sum()
}

// HashUnits returns the hash of an explicit sequence of UTF-16 code units.
// Unpaired surrogates are hashed as-is, which HashString cannot express.
func HashUnits(units []uint16) int32 {
	var st stringState
	for _, u := range units {
		st.add(u)
	}

	return st.sum()
}

// stringState folds code units two at a time into h1.
type stringState struct {
	h1      uint32
	pending uint32
	count   uint32
}

func (s *stringState) add(u uint16) {
	if s.count&1 == 0 {
		s.pending = uint32(u)
	} else {
		k1 := s.pending | uint32(u)<<16
		s.h1 = mixH1(s.h1, mixK1(k1))
	}
	s.count++
}

func (s *stringState) sum() int32 {
	h1 := s.h1
	if s.count&1 == 1 {
		// trailing unit skips the block mix
		h1 ^= mixK1(s.pending)
	}

	return int32(fmix(h1, 2*s.count)) //nolint:gosec
}

func mixK1(k1 uint32) uint32 {
	k1 *= c1
	k1 = bits.RotateLeft32(k1, 15)
	k1 *= c2

	return k1
}

func mixH1(h1, k1 uint32) uint32 {
	h1 ^= k1
	h1 = bits.RotateLeft32(h1, 13)

	return h1*5 + 0xe6546b64
}

// fmix is the finalization mix; it forces all bits of the hash to avalanche.
func fmix(h1, length uint32) uint32 {
	h1 ^= length
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16

	return h1
}
