// Package audit records where the indices of a sparse vector came from.
//
// Auditing has two stages. While a raw record is hashed, a Registry maps every
// emitted (namespace, hashed id) pair back to the source value it was hashed
// from. While the hashed record is combined, a Trail maps every emitted vector
// index to the raw features that produced it: one entry for a plain feature,
// k entries for a k-way interaction.
//
// Both are scratch structures owned by a single worker and reset for every
// record; they are not safe for concurrent use.
package audit

import (
	"strconv"

	"github.com/arloliu/hashvec/namespace"
)

// RawFeature names one raw feature value.
type RawFeature struct {
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

func (f RawFeature) String() string {
	return f.Namespace + "=" + f.Value
}

type registryKey struct {
	ns namespace.ID
	id int32
}

// Registry maps (namespace, hashed id) to the raw value it was hashed from.
type Registry struct {
	entries map[registryKey]RawFeature
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[registryKey]RawFeature),
	}
}

// Register records that hashed id in ns came from f. A later registration of
// the same pair replaces the earlier one.
func (r *Registry) Register(ns namespace.ID, id int32, f RawFeature) {
	r.entries[registryKey{ns: ns, id: id}] = f
}

// Lookup returns the raw feature registered for (ns, id).
func (r *Registry) Lookup(ns namespace.ID, id int32) (RawFeature, bool) {
	f, ok := r.entries[registryKey{ns: ns, id: id}]
	return f, ok
}

// Resolve returns the registered raw feature for (ns, id), or a feature named
// nsName whose value is the decimal id when nothing was registered.
func (r *Registry) Resolve(ns namespace.ID, nsName string, id int32) RawFeature {
	if f, ok := r.Lookup(ns, id); ok {
		return f
	}

	return RawFeature{Namespace: nsName, Value: strconv.FormatInt(int64(id), 10)}
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Reset clears all entries but keeps the allocated capacity.
func (r *Registry) Reset() {
	clear(r.entries)
}
