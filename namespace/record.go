package namespace

import (
	"iter"
)

// Record maps namespaces of one Domain to values. Absent entries mean "no
// value for this namespace", which is a normal state.
//
// A Record is dense: it holds one slot per namespace, so Get and Set are
// slice accesses. Reset clears it for reuse by the next input. A Record is not
// safe for concurrent use.
type Record[V any] struct {
	domain  *Domain
	values  []V
	present []bool
	count   int
}

// NewRecord creates an empty record over d.
func NewRecord[V any](d *Domain) *Record[V] {
	return &Record[V]{
		domain:  d,
		values:  make([]V, d.Len()),
		present: make([]bool, d.Len()),
	}
}

// Domain returns the domain the record is keyed by.
func (r *Record[V]) Domain() *Domain { return r.domain }

// Set stores v for id. It panics if id is outside the domain.
func (r *Record[V]) Set(id ID, v V) {
	if !r.present[id] {
		r.present[id] = true
		r.count++
	}
	r.values[id] = v
}

// SetByName stores v for the named namespace.
func (r *Record[V]) SetByName(name string, v V) error {
	id, err := r.domain.Lookup(name)
	if err != nil {
		return err
	}
	r.Set(id, v)

	return nil
}

// Get returns the value for id and whether it is present.
func (r *Record[V]) Get(id ID) (V, bool) {
	if int(id) >= len(r.present) || !r.present[id] {
		var zero V
		return zero, false
	}

	return r.values[id], true
}

// Has reports whether id is present.
func (r *Record[V]) Has(id ID) bool {
	return int(id) < len(r.present) && r.present[id]
}

// Delete removes the value for id, if any.
func (r *Record[V]) Delete(id ID) {
	if !r.Has(id) {
		return
	}

	var zero V
	r.values[id] = zero
	r.present[id] = false
	r.count--
}

// Len returns the number of present namespaces.
func (r *Record[V]) Len() int { return r.count }

// Reset removes all values while keeping the allocated slots.
func (r *Record[V]) Reset() {
	clear(r.values)
	clear(r.present)
	r.count = 0
}

// All iterates over the present entries in namespace order.
func (r *Record[V]) All() iter.Seq2[ID, V] {
	return func(yield func(ID, V) bool) {
		for i, ok := range r.present {
			if !ok {
				continue
			}
			if !yield(ID(i), r.values[i]) { //nolint:gosec
				return
			}
		}
	}
}
