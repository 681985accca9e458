package feature

import (
	"fmt"
	"strconv"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/internal/hash"
	"github.com/arloliu/hashvec/namespace"
)

// MaxBitWidth is the widest supported index space.
const MaxBitWidth = 32

// Set is an ordered, duplicate-free list of definitions plus the bit width
// of the index space they hash into. It is immutable and safe for concurrent use.
type Set struct {
	domain      *namespace.Domain
	bitWidth    int
	mask        uint32
	defs        []*Definition
	fingerprint uint64
}

// Mask returns the index mask for a bit width: (1<<b)-1, or all ones for 32.
//
// Returns errs.ErrInvalidBitWidth unless 1 <= bitWidth <= 32.
func Mask(bitWidth int) (uint32, error) {
	if bitWidth < 1 || bitWidth > MaxBitWidth {
		return 0, fmt.Errorf("%w: got %d", errs.ErrInvalidBitWidth, bitWidth)
	}
	if bitWidth == MaxBitWidth {
		return ^uint32(0), nil
	}

	return uint32(1)<<bitWidth - 1, nil
}

// NewSet builds a set from definitions over d, in the given order. A
// definition equal to an earlier one is dropped.
func NewSet(d *namespace.Domain, bitWidth int, defs ...*Definition) (*Set, error) {
	mask, err := Mask(bitWidth)
	if err != nil {
		return nil, err
	}

	s := &Set{
		domain:   d,
		bitWidth: bitWidth,
		mask:     mask,
		defs:     make([]*Definition, 0, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			return nil, errs.ErrEmptyFeature
		}
		if !d.Equal(def.domain) {
			return nil, fmt.Errorf("%w: definition %s", errs.ErrDomainMismatch, def.name)
		}
		if s.contains(def) {
			continue
		}
		s.defs = append(s.defs, def)
	}

	parts := make([]string, 0, len(s.defs)+1)
	parts = append(parts, strconv.Itoa(bitWidth))
	for _, def := range s.defs {
		parts = append(parts, def.name)
	}
	s.fingerprint = hash.Fingerprint(parts...)

	return s, nil
}

// NewSetFromGroups builds a set from feature groups, where each group lists
// namespace names: a single name is a plain feature, several names form an
// interaction.
func NewSetFromGroups(d *namespace.Domain, bitWidth int, groups [][]string) (*Set, error) {
	defs := make([]*Definition, 0, len(groups))
	for i, group := range groups {
		def, err := NewDefinitionByName(d, group...)
		if err != nil {
			return nil, fmt.Errorf("feature group %d %v: %w", i, group, err)
		}
		defs = append(defs, def)
	}

	return NewSet(d, bitWidth, defs...)
}

func (s *Set) contains(def *Definition) bool {
	for _, existing := range s.defs {
		if existing.namespaceID == def.namespaceID && existing.Equal(def) {
			return true
		}
	}

	return false
}

// Domain returns the namespace domain.
func (s *Set) Domain() *namespace.Domain { return s.domain }

// BitWidth returns the configured bit width.
func (s *Set) BitWidth() int { return s.bitWidth }

// Mask returns the index mask derived from the bit width.
func (s *Set) Mask() uint32 { return s.mask }

// Definitions returns the definitions in configured order. The slice must not
// be modified.
func (s *Set) Definitions() []*Definition { return s.defs }

// Len returns the number of definitions.
func (s *Set) Len() int { return len(s.defs) }

// Fingerprint identifies the bit width and the ordered definition names.
// Vectors produced under different fingerprints are not comparable.
func (s *Set) Fingerprint() uint64 { return s.fingerprint }
