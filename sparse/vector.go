// Package sparse defines the sparse vector emitted by the combiner.
package sparse

import "iter"

// BiasIndex is the constant term present in every combined vector.
const BiasIndex int32 = 0

// Vector is an ordered list of (index, value) pairs. Indices and Values are
// parallel slices. An index may appear more than once when a categorical and
// a numerical contribution land on the same slot.
type Vector struct {
	Indices []int32
	Values  []float64
}

// NewVector creates an empty vector with room for capacity entries.
func NewVector(capacity int) Vector {
	return Vector{
		Indices: make([]int32, 0, capacity),
		Values:  make([]float64, 0, capacity),
	}
}

// Len returns the number of entries.
func (v *Vector) Len() int { return len(v.Indices) }

// Append adds one entry.
func (v *Vector) Append(index int32, value float64) {
	v.Indices = append(v.Indices, index)
	v.Values = append(v.Values, value)
}

// Reset empties the vector but keeps its capacity.
func (v *Vector) Reset() {
	v.Indices = v.Indices[:0]
	v.Values = v.Values[:0]
}

// Contains reports whether index appears in the vector.
func (v *Vector) Contains(index int32) bool {
	for _, idx := range v.Indices {
		if idx == index {
			return true
		}
	}

	return false
}

// All iterates over the entries in order.
func (v *Vector) All() iter.Seq2[int32, float64] {
	return func(yield func(int32, float64) bool) {
		for i, idx := range v.Indices {
			if !yield(idx, v.Values[i]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (v *Vector) Clone() Vector {
	out := NewVector(v.Len())
	out.Indices = append(out.Indices, v.Indices...)
	out.Values = append(out.Values, v.Values...)

	return out
}

// Dot returns the dot product with a dense weight vector. Indices outside
// weights contribute nothing; negative indices are interpreted as uint32 so
// 32-bit index spaces can be addressed.
func (v *Vector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		pos := uint64(uint32(idx)) //nolint:gosec
		if pos < uint64(len(weights)) {
			sum += v.Values[i] * weights[pos]
		}
	}

	return sum
}
