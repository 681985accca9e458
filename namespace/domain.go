// Package namespace defines the closed set of feature slots a pipeline works
// over, and the records keyed by it.
//
// A Domain is built once at startup from a static list of namespace
// declarations. Name lookups go through a table validated at construction, so
// configuration parsing never resolves identifiers dynamically per field.
package namespace

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
)

// TargetName is the reserved namespace holding the training label. It may be
// declared in a domain but never used as a feature component.
const TargetName = "target"

// ID identifies a namespace within its Domain. IDs are dense, starting at 0,
// in declaration order.
type ID uint16

// Spec declares one namespace.
type Spec struct {
	Name string
	Kind format.Kind
}

// Domain is an immutable, closed set of namespaces. It is safe for concurrent use.
type Domain struct {
	names []string
	kinds []format.Kind
	index map[string]ID
}

// NewDomain builds a domain from the given declarations.
//
// Returns an error if the list is empty, a name is empty or repeated, or a
// kind is not one of format.KindCategorical / format.KindNumerical.
func NewDomain(specs ...Spec) (*Domain, error) {
	if len(specs) == 0 {
		return nil, errs.ErrEmptyDomain
	}
	if len(specs) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d namespaces exceeds maximum %d", errs.ErrInvalidNamespaceName, len(specs), math.MaxUint16)
	}

	d := &Domain{
		names: make([]string, 0, len(specs)),
		kinds: make([]format.Kind, 0, len(specs)),
		index: make(map[string]ID, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: empty name", errs.ErrInvalidNamespaceName)
		}
		if _, dup := d.index[s.Name]; dup {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateNamespace, s.Name)
		}
		if s.Kind != format.KindCategorical && s.Kind != format.KindNumerical {
			return nil, fmt.Errorf("%w: namespace %q has kind %d", errs.ErrInvalidKind, s.Name, s.Kind)
		}

		d.index[s.Name] = ID(len(d.names)) //nolint:gosec
		d.names = append(d.names, s.Name)
		d.kinds = append(d.kinds, s.Kind)
	}

	return d, nil
}

// MustNewDomain is like NewDomain but panics on error. It is meant for
// package-level domain declarations.
func MustNewDomain(specs ...Spec) *Domain {
	d, err := NewDomain(specs...)
	if err != nil {
		panic(err)
	}

	return d
}

// Len returns the number of namespaces.
func (d *Domain) Len() int { return len(d.names) }

// Lookup returns the ID of the named namespace.
func (d *Domain) Lookup(name string) (ID, error) {
	id, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownNamespace, name)
	}

	return id, nil
}

// MustLookup is like Lookup but panics if the name is unknown.
func (d *Domain) MustLookup(name string) ID {
	id, err := d.Lookup(name)
	if err != nil {
		panic(err)
	}

	return id
}

// Equal reports whether d and other declare the same namespaces, with the
// same kinds, in the same order. Records keyed by equal domains are
// interchangeable, so two pipelines loaded from the same document can share
// records.
func (d *Domain) Equal(other *Domain) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}

	return slices.Equal(d.names, other.names) && slices.Equal(d.kinds, other.kinds)
}

// Contains reports whether id belongs to the domain.
func (d *Domain) Contains(id ID) bool { return int(id) < len(d.names) }

// Name returns the name of id. It panics if id is outside the domain.
func (d *Domain) Name(id ID) string { return d.names[id] }

// Kind returns the declared kind of id. It panics if id is outside the domain.
func (d *Domain) Kind(id ID) format.Kind { return d.kinds[id] }

// All iterates over the namespaces in declaration order.
func (d *Domain) All() iter.Seq2[ID, string] {
	return func(yield func(ID, string) bool) {
		for i, name := range d.names {
			if !yield(ID(i), name) { //nolint:gosec
				return
			}
		}
	}
}
