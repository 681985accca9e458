// Package value defines the raw and hashed feature value shapes.
//
// A raw value is what a record carries before hashing: ids, numbers, strings
// or weighted string/id lists. A hashed value is the same shape taxonomy after
// every string identity has been replaced by its 32-bit hash; it can only hold
// integer-keyed shapes.
//
// Both are sealed sum types. Code that processes values should type-switch on
// the concrete shape:
//
//	switch v := h.(type) {
//	case value.SingleCategorical:
//	    use(v.ID())
//	case value.Categoricals:
//	    use(v.IDs()...)
//	}
//
// The As* accessors exist for boundary code that assumes a shape dynamically.
// They fail with errs.ErrValueTypeMismatch when the active shape differs.
//
// Values are immutable: callers must not modify the slices passed to a
// constructor or returned from an accessor.
package value

import (
	"fmt"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
)

// Value is implemented by every raw and hashed shape.
type Value interface {
	Type() format.ValueType
}

// Raw is a feature value before hashing.
type Raw interface {
	Value
	isRaw()
}

// Hashed is a feature value after hashing. String shapes cannot be hashed values.
type Hashed interface {
	Value
	isHashed()
}

// SingleCategorical holds one categorical id.
type SingleCategorical struct{ id int32 }

// Categoricals holds a list of categorical ids.
type Categoricals struct{ ids []int32 }

// SingleNumerical holds one numeric value.
type SingleNumerical struct{ v float64 }

// CategoricalsToNumericals holds ids paired with numeric values.
type CategoricalsToNumericals struct {
	ids    []int32
	values []float64
}

// SingleString holds one string identity.
type SingleString struct{ s string }

// Strings holds a list of string identities.
type Strings struct{ ss []string }

// StringsToNumericals holds string names paired with numeric values.
type StringsToNumericals struct {
	names  []string
	values []float64
}

var (
	_ Raw    = SingleCategorical{}
	_ Hashed = SingleCategorical{}
	_ Raw    = Categoricals{}
	_ Hashed = Categoricals{}
	_ Raw    = SingleNumerical{}
	_ Hashed = SingleNumerical{}
	_ Raw    = CategoricalsToNumericals{}
	_ Hashed = CategoricalsToNumericals{}
	_ Raw    = SingleString{}
	_ Raw    = Strings{}
	_ Raw    = StringsToNumericals{}
)

// NewSingleCategorical creates a SingleCategorical value.
func NewSingleCategorical(id int32) SingleCategorical { return SingleCategorical{id: id} }

// NewCategoricals creates a Categoricals value. An empty list is legal and
// contributes nothing when combined.
func NewCategoricals(ids ...int32) Categoricals { return Categoricals{ids: ids} }

// NewSingleNumerical creates a SingleNumerical value.
func NewSingleNumerical(v float64) SingleNumerical { return SingleNumerical{v: v} }

// NewCategoricalsToNumericals creates a CategoricalsToNumericals value.
//
// Returns errs.ErrLengthMismatch if ids and values differ in length.
func NewCategoricalsToNumericals(ids []int32, values []float64) (CategoricalsToNumericals, error) {
	if len(ids) != len(values) {
		return CategoricalsToNumericals{}, fmt.Errorf("%w: %d ids, %d values", errs.ErrLengthMismatch, len(ids), len(values))
	}

	return CategoricalsToNumericals{ids: ids, values: values}, nil
}

// NewSingleString creates a SingleString value.
func NewSingleString(s string) SingleString { return SingleString{s: s} }

// NewStrings creates a Strings value.
func NewStrings(ss ...string) Strings { return Strings{ss: ss} }

// NewStringsToNumericals creates a StringsToNumericals value.
//
// Returns errs.ErrLengthMismatch if names and values differ in length.
func NewStringsToNumericals(names []string, values []float64) (StringsToNumericals, error) {
	if len(names) != len(values) {
		return StringsToNumericals{}, fmt.Errorf("%w: %d names, %d values", errs.ErrLengthMismatch, len(names), len(values))
	}

	return StringsToNumericals{names: names, values: values}, nil
}

func (SingleCategorical) Type() format.ValueType        { return format.TypeSingleCategorical }
func (Categoricals) Type() format.ValueType             { return format.TypeCategoricals }
func (SingleNumerical) Type() format.ValueType          { return format.TypeSingleNumerical }
func (CategoricalsToNumericals) Type() format.ValueType { return format.TypeCategoricalsToNumericals }
func (SingleString) Type() format.ValueType             { return format.TypeSingleString }
func (Strings) Type() format.ValueType                  { return format.TypeStrings }
func (StringsToNumericals) Type() format.ValueType      { return format.TypeStringsToNumericals }

func (SingleCategorical) isRaw()        {}
func (Categoricals) isRaw()             {}
func (SingleNumerical) isRaw()          {}
func (CategoricalsToNumericals) isRaw() {}
func (SingleString) isRaw()             {}
func (Strings) isRaw()                  {}
func (StringsToNumericals) isRaw()      {}

func (SingleCategorical) isHashed()        {}
func (Categoricals) isHashed()             {}
func (SingleNumerical) isHashed()          {}
func (CategoricalsToNumericals) isHashed() {}

// ID returns the categorical id.
func (v SingleCategorical) ID() int32 { return v.id }

// IDs returns the categorical ids.
func (v Categoricals) IDs() []int32 { return v.ids }

// Len returns the number of ids.
func (v Categoricals) Len() int { return len(v.ids) }

// Value returns the numeric value.
func (v SingleNumerical) Value() float64 { return v.v }

// IDs returns the ids, parallel to Values.
func (v CategoricalsToNumericals) IDs() []int32 { return v.ids }

// Values returns the numeric values, parallel to IDs.
func (v CategoricalsToNumericals) Values() []float64 { return v.values }

// Len returns the number of (id, value) pairs.
func (v CategoricalsToNumericals) Len() int { return len(v.ids) }

// Value returns the string.
func (v SingleString) Value() string { return v.s }

// Values returns the strings.
func (v Strings) Values() []string { return v.ss }

// Len returns the number of strings.
func (v Strings) Len() int { return len(v.ss) }

// Names returns the names, parallel to Values.
func (v StringsToNumericals) Names() []string { return v.names }

// Values returns the numeric values, parallel to Names.
func (v StringsToNumericals) Values() []float64 { return v.values }

// Len returns the number of (name, value) pairs.
func (v StringsToNumericals) Len() int { return len(v.names) }
