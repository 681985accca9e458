package combine

import (
	"fmt"
	"strconv"

	"github.com/arloliu/hashvec/audit"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/murmur"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/value"
)

// singleSource is the audit source of single numerical and single categorical
// inputs, which carry no source string.
const singleSource = "0"

// Hasher converts raw records into hashed records.
type Hasher struct {
	domain *namespace.Domain
}

// NewHasher creates a hasher for records over d.
func NewHasher(d *namespace.Domain) *Hasher {
	return &Hasher{domain: d}
}

// Hash resets out and fills it with the hashed form of every value present
// in raw. If reg is not nil it is reset and receives, for every hashed id, the
// raw value it came from.
//
// Returns errs.ErrDomainMismatch if either record is keyed by another domain,
// or errs.ErrValueTypeMismatch if a value's kind differs from its namespace's
// declared kind.
func (h *Hasher) Hash(raw *namespace.Record[value.Raw], out *namespace.Record[value.Hashed], reg *audit.Registry) error {
	if !h.domain.Equal(raw.Domain()) || !h.domain.Equal(out.Domain()) {
		return fmt.Errorf("%w: record is not keyed by the hasher's domain", errs.ErrDomainMismatch)
	}

	out.Reset()
	if reg != nil {
		reg.Reset()
	}

	for ns, v := range raw.All() {
		if v == nil {
			continue
		}
		if v.Type().Kind() != h.domain.Kind(ns) {
			return fmt.Errorf("%w: namespace %q is %s but holds %s",
				errs.ErrValueTypeMismatch, h.domain.Name(ns), h.domain.Kind(ns), v.Type())
		}

		hv, err := h.hashValue(ns, v, reg)
		if err != nil {
			return err
		}
		out.Set(ns, hv)
	}

	return nil
}

func (h *Hasher) hashValue(ns namespace.ID, v value.Raw, reg *audit.Registry) (value.Hashed, error) {
	switch rv := v.(type) {
	case value.SingleString:
		id := murmur.HashString(rv.Value())
		h.register(reg, ns, id, rv.Value())

		return value.NewSingleCategorical(id), nil

	case value.Strings:
		ids := make([]int32, rv.Len())
		for i, s := range rv.Values() {
			ids[i] = murmur.HashString(s)
			h.register(reg, ns, ids[i], s)
		}

		return value.NewCategoricals(ids...), nil

	case value.StringsToNumericals:
		ids := make([]int32, rv.Len())
		for i, s := range rv.Names() {
			ids[i] = murmur.HashString(s)
			h.register(reg, ns, ids[i], s)
		}

		return value.NewCategoricalsToNumericals(ids, rv.Values())

	case value.SingleNumerical:
		h.register(reg, ns, 0, singleSource)
		return rv, nil

	case value.SingleCategorical:
		h.register(reg, ns, rv.ID(), singleSource)
		return rv, nil

	case value.Categoricals:
		if reg != nil {
			for _, id := range rv.IDs() {
				h.register(reg, ns, id, strconv.FormatInt(int64(id), 10))
			}
		}

		return rv, nil

	case value.CategoricalsToNumericals:
		if reg != nil {
			for _, id := range rv.IDs() {
				h.register(reg, ns, id, strconv.FormatInt(int64(id), 10))
			}
		}

		return rv, nil

	default:
		return nil, fmt.Errorf("%w: unsupported raw value %T", errs.ErrValueTypeMismatch, v)
	}
}

func (h *Hasher) register(reg *audit.Registry, ns namespace.ID, id int32, source string) {
	if reg == nil {
		return
	}
	reg.Register(ns, id, audit.RawFeature{Namespace: h.domain.Name(ns), Value: source})
}
