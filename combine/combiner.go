package combine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/internal/options"
	"github.com/arloliu/hashvec/murmur"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/sparse"
	"github.com/arloliu/hashvec/value"
)

// FNVPrime32 is the 32-bit FNV prime used to fold namespace ids and id hashes.
const FNVPrime32 uint32 = 16777619

// Option configures a Combiner.
type Option = options.Option[*Combiner]

// WithAudit enables or disables the audit trail.
func WithAudit(enabled bool) Option {
	return options.NoError(func(c *Combiner) {
		c.audit = enabled
	})
}

// Combiner turns hashed records into sparse vectors for one feature set.
// It is immutable and safe for concurrent use; see Scratch for per-worker state.
type Combiner struct {
	set    *feature.Set
	domain *namespace.Domain
	mask   uint32
	hasher *Hasher
	audit  bool
	pool   sync.Pool
}

// NewCombiner creates a combiner for set.
func NewCombiner(set *feature.Set, opts ...Option) (*Combiner, error) {
	if set == nil {
		return nil, fmt.Errorf("%w: nil feature set", errs.ErrInvalidConfig)
	}

	c := &Combiner{
		set:    set,
		domain: set.Domain(),
		mask:   set.Mask(),
		hasher: NewHasher(set.Domain()),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	c.pool.New = func() any { return newScratch(c.domain) }

	return c, nil
}

// FeatureSet returns the feature set the combiner was built with.
func (c *Combiner) FeatureSet() *feature.Set { return c.set }

// Auditing reports whether the audit trail is enabled.
func (c *Combiner) Auditing() bool { return c.audit }

// NewScratch creates a scratch for one worker.
func (c *Combiner) NewScratch() *Scratch {
	return newScratch(c.domain)
}

// AcquireScratch borrows a scratch from the combiner's pool. The returned
// function gives it back and must be called once the caller is done with the
// scratch and everything it returned.
func (c *Combiner) AcquireScratch() (*Scratch, func()) {
	s, _ := c.pool.Get().(*Scratch)
	return s, func() { c.pool.Put(s) }
}

// Hash hashes raw into the scratch's hashed record and returns it. With
// auditing enabled the scratch's registry is rebuilt for this record.
func (c *Combiner) Hash(s *Scratch, raw *namespace.Record[value.Raw]) (*namespace.Record[value.Hashed], error) {
	if !c.audit {
		return s.hashed, c.hasher.Hash(raw, s.hashed, nil)
	}

	s.registered = nil
	if err := c.hasher.Hash(raw, s.hashed, s.registry); err != nil {
		return s.hashed, err
	}
	s.registered = s.hashed

	return s.hashed, nil
}

// Process hashes raw and combines it, returning a newly allocated vector.
func (c *Combiner) Process(s *Scratch, raw *namespace.Record[value.Raw]) (sparse.Vector, error) {
	hashed, err := c.Hash(s, raw)
	if err != nil {
		return sparse.Vector{}, err
	}

	return c.Apply(s, hashed)
}

// Apply combines a hashed record into a newly allocated vector.
func (c *Combiner) Apply(s *Scratch, rec *namespace.Record[value.Hashed]) (sparse.Vector, error) {
	var vec sparse.Vector
	if err := c.ApplyTo(s, rec, &vec); err != nil {
		return sparse.Vector{}, err
	}

	return vec, nil
}

// ApplyTo combines a hashed record into dst, which is reset first.
//
// Categorical indices are written first with value 1.0, then numerical
// indices with their values; each group is in ascending index order. With
// auditing enabled, raw feature names are resolved through the scratch's
// registry when rec is the record produced by Hash on the same scratch; any
// other record is audited with decimal ids.
//
// Returns errs.ErrDomainMismatch if rec is keyed by another domain, or
// errs.ErrValueTypeMismatch if a present value's shape does not fit the kind
// of the feature reading it.
func (c *Combiner) ApplyTo(s *Scratch, rec *namespace.Record[value.Hashed], dst *sparse.Vector) error {
	if !c.domain.Equal(rec.Domain()) {
		return fmt.Errorf("%w: record is not keyed by the feature set's domain", errs.ErrDomainMismatch)
	}

	s.reset(rec, c.audit)
	s.categorical[sparse.BiasIndex] = struct{}{}

	for _, def := range c.set.Definitions() {
		var err error
		switch {
		case def.Kind() == format.KindNumerical:
			err = c.addNumerical(s, rec, def)
		case def.IsInteraction():
			err = c.addInteraction(s, rec, def)
		default:
			err = c.addCategorical(s, rec, def)
		}
		if err != nil {
			return err
		}
	}

	c.emit(s, dst)

	return nil
}

func (c *Combiner) emit(s *Scratch, dst *sparse.Vector) {
	dst.Reset()

	for idx := range s.categorical {
		s.keys = append(s.keys, idx)
	}
	slices.Sort(s.keys)
	for _, idx := range s.keys {
		dst.Append(idx, 1.0)
	}

	s.keys = s.keys[:0]
	for idx := range s.numerical {
		s.keys = append(s.keys, idx)
	}
	slices.Sort(s.keys)
	for _, idx := range s.keys {
		dst.Append(idx, s.numerical[idx])
	}
}

// index folds a single-component id: ((ns*FNV) ^ hash(id)) & mask.
func (c *Combiner) index(base uint32, id int32) int32 {
	return int32((base ^ uint32(murmur.HashInt(id))) & c.mask) //nolint:gosec
}

func (c *Combiner) addNumerical(s *Scratch, rec *namespace.Record[value.Hashed], def *feature.Definition) error {
	ns := def.Components()[0]
	v, ok := rec.Get(ns)
	if !ok || v == nil {
		return nil
	}

	base := def.NamespaceID() * FNVPrime32
	switch hv := v.(type) {
	case value.SingleNumerical:
		c.putNumerical(s, ns, base, 0, hv.Value())
	case value.CategoricalsToNumericals:
		values := hv.Values()
		for i, id := range hv.IDs() {
			c.putNumerical(s, ns, base, id, values[i])
		}
	default:
		return c.mismatch(def, ns, v)
	}

	return nil
}

func (c *Combiner) putNumerical(s *Scratch, ns namespace.ID, base uint32, id int32, val float64) {
	idx := c.index(base, id)
	s.numerical[idx] = val
	s.attempts++
	if c.audit {
		s.trail.Record(idx, s.registry.Resolve(ns, c.domain.Name(ns), id))
	}
}

func (c *Combiner) addCategorical(s *Scratch, rec *namespace.Record[value.Hashed], def *feature.Definition) error {
	ns := def.Components()[0]
	v, ok := rec.Get(ns)
	if !ok || v == nil {
		return nil
	}

	base := def.NamespaceID() * FNVPrime32
	switch hv := v.(type) {
	case value.SingleCategorical:
		c.putCategorical(s, ns, base, hv.ID())
	case value.Categoricals:
		for _, id := range hv.IDs() {
			c.putCategorical(s, ns, base, id)
		}
	default:
		return c.mismatch(def, ns, v)
	}

	return nil
}

func (c *Combiner) putCategorical(s *Scratch, ns namespace.ID, base uint32, id int32) {
	idx := c.index(base, id)
	s.categorical[idx] = struct{}{}
	s.attempts++
	if c.audit {
		s.trail.Record(idx, s.registry.Resolve(ns, c.domain.Name(ns), id))
	}
}

// addInteraction emits one index per combination of the components' ids.
// Combinations are enumerated as a mixed-radix counter whose last component
// varies fastest; prefix[j] caches the fold over components 0..j-1 so a step
// only refolds the components whose digit changed.
func (c *Combiner) addInteraction(s *Scratch, rec *namespace.Record[value.Hashed], def *feature.Definition) error {
	comps := def.Components()
	k := len(comps)
	s.grow(k)

	for j, ns := range comps {
		v, ok := rec.Get(ns)
		if !ok || v == nil {
			return nil
		}

		switch hv := v.(type) {
		case value.SingleCategorical:
			s.single[j] = hv.ID()
			s.ids[j] = s.single[j : j+1]
		case value.Categoricals:
			s.ids[j] = hv.IDs()
		default:
			return c.mismatch(def, ns, v)
		}
		if len(s.ids[j]) == 0 {
			return nil
		}
	}

	for j := range k {
		s.hashes[j] = s.hashes[j][:0]
		for _, id := range s.ids[j] {
			s.hashes[j] = append(s.hashes[j], uint32(murmur.HashInt(id))) //nolint:gosec
		}
	}

	pos := s.pos[:k]
	clear(pos)
	prefix := s.prefix[:k+1]
	prefix[0] = def.NamespaceID()
	refold(prefix, s.hashes, pos, 0)

	for {
		idx := int32(prefix[k] & c.mask) //nolint:gosec
		s.categorical[idx] = struct{}{}
		s.attempts++
		if c.audit {
			for j, ns := range comps {
				s.names[j] = s.registry.Resolve(ns, c.domain.Name(ns), s.ids[j][pos[j]])
			}
			s.trail.Record(idx, s.names[:k]...)
		}

		j := k - 1
		for ; j >= 0; j-- {
			pos[j]++
			if pos[j] < len(s.hashes[j]) {
				break
			}
			pos[j] = 0
		}
		if j < 0 {
			break
		}
		refold(prefix, s.hashes, pos, j)
	}

	// drop references to record-owned slices
	clear(s.ids[:k])

	return nil
}

// refold recomputes prefix[from+1:] for the current digit positions.
func refold(prefix []uint32, hashes [][]uint32, pos []int, from int) {
	for j := from; j < len(pos); j++ {
		prefix[j+1] = (prefix[j] ^ hashes[j][pos[j]]) * FNVPrime32
	}
}

func (c *Combiner) mismatch(def *feature.Definition, ns namespace.ID, v value.Hashed) error {
	return fmt.Errorf("%w: feature %s reads %s values but namespace %q holds %s",
		errs.ErrValueTypeMismatch, def.Name(), def.Kind(), c.domain.Name(ns), v.Type())
}
