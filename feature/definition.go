// Package feature declares the features and feature interactions a pipeline
// folds into its sparse vectors.
//
// A Definition covers one namespace (a plain feature) or several categorical
// namespaces (an interaction). Its canonical name joins the component names
// in lexicographic order with "^", and the name's murmur hash becomes the
// definition's namespace id, which seeds every index it emits. Definitions are
// validated once at configuration time and are immutable afterwards.
package feature

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/murmur"
	"github.com/arloliu/hashvec/namespace"
)

// NameSeparator joins component names in a definition's canonical name.
const NameSeparator = "^"

// Definition is one feature or interaction.
type Definition struct {
	domain      *namespace.Domain
	components  []namespace.ID
	names       []string
	kind        format.Kind
	name        string
	namespaceID uint32
}

// NewDefinition builds a definition over the given components of d.
// Repeated components are collapsed.
//
// Returns an error if:
//   - no component is given (errs.ErrEmptyFeature)
//   - a component is outside d (errs.ErrDomainMismatch)
//   - a component is the target namespace (errs.ErrTargetComponent)
//   - a numerical component is combined with others (errs.ErrNumericalInteraction)
func NewDefinition(d *namespace.Domain, components ...namespace.ID) (*Definition, error) {
	if len(components) == 0 {
		return nil, errs.ErrEmptyFeature
	}

	comps := make([]namespace.ID, 0, len(components))
	for _, id := range components {
		if !d.Contains(id) {
			return nil, fmt.Errorf("%w: namespace id %d", errs.ErrDomainMismatch, id)
		}
		if d.Name(id) == namespace.TargetName {
			return nil, errs.ErrTargetComponent
		}
		if !slices.Contains(comps, id) {
			comps = append(comps, id)
		}
	}

	slices.SortFunc(comps, func(a, b namespace.ID) int {
		return strings.Compare(d.Name(a), d.Name(b))
	})

	kind := format.KindCategorical
	for _, id := range comps {
		if d.Kind(id) == format.KindNumerical {
			kind = format.KindNumerical
		}
	}

	names := make([]string, len(comps))
	for i, id := range comps {
		names[i] = d.Name(id)
	}
	name := strings.Join(names, NameSeparator)

	if kind == format.KindNumerical && len(comps) > 1 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNumericalInteraction, name)
	}

	return &Definition{
		domain:      d,
		components:  comps,
		names:       names,
		kind:        kind,
		name:        name,
		namespaceID: uint32(murmur.HashString(name)), //nolint:gosec
	}, nil
}

// NewDefinitionByName is like NewDefinition but resolves components by name.
func NewDefinitionByName(d *namespace.Domain, names ...string) (*Definition, error) {
	ids := make([]namespace.ID, 0, len(names))
	for _, name := range names {
		id, err := d.Lookup(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return NewDefinition(d, ids...)
}

// Domain returns the domain the components belong to.
func (f *Definition) Domain() *namespace.Domain { return f.domain }

// Components returns the component ids in canonical order. The slice must not
// be modified.
func (f *Definition) Components() []namespace.ID { return f.components }

// ComponentNames returns the component names in canonical order. The slice
// must not be modified.
func (f *Definition) ComponentNames() []string { return f.names }

// Len returns the number of components.
func (f *Definition) Len() int { return len(f.components) }

// IsInteraction reports whether the definition has more than one component.
func (f *Definition) IsInteraction() bool { return len(f.components) > 1 }

// Kind returns the definition's value kind.
func (f *Definition) Kind() format.Kind { return f.kind }

// Name returns the canonical name, e.g. "country^device".
func (f *Definition) Name() string { return f.name }

// NamespaceID returns the murmur hash of the canonical name.
func (f *Definition) NamespaceID() uint32 { return f.namespaceID }

// Hash returns the namespace id; equal definitions have equal hashes.
func (f *Definition) Hash() uint32 { return f.namespaceID }

// Equal reports whether both definitions have the same components.
func (f *Definition) Equal(other *Definition) bool {
	if other == nil {
		return false
	}

	return slices.Equal(f.components, other.components)
}

func (f *Definition) String() string { return f.name }
