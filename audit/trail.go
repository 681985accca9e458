package audit

import (
	"iter"
	"maps"
	"slices"
)

// Trail maps emitted vector indices to the raw features that produced them.
type Trail struct {
	entries map[int32][]RawFeature
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{
		entries: make(map[int32][]RawFeature),
	}
}

// Record sets the contributing features of index, replacing any earlier entry.
// The features slice is copied.
func (t *Trail) Record(index int32, features ...RawFeature) {
	t.entries[index] = slices.Clone(features)
}

// Get returns the features recorded for index.
func (t *Trail) Get(index int32) ([]RawFeature, bool) {
	f, ok := t.entries[index]
	return f, ok
}

// Len returns the number of recorded indices.
func (t *Trail) Len() int {
	return len(t.entries)
}

// Indices returns the recorded indices in ascending order.
func (t *Trail) Indices() []int32 {
	return slices.Sorted(maps.Keys(t.entries))
}

// All iterates over the recorded entries in ascending index order.
func (t *Trail) All() iter.Seq2[int32, []RawFeature] {
	return func(yield func(int32, []RawFeature) bool) {
		for _, idx := range t.Indices() {
			if !yield(idx, t.entries[idx]) {
				return
			}
		}
	}
}

// Reset clears all entries but keeps the allocated capacity.
func (t *Trail) Reset() {
	clear(t.entries)
}
