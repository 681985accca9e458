package value

import (
	"fmt"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
)

func mismatch(v Value, want format.ValueType) error {
	if v == nil {
		return fmt.Errorf("%w: nil value accessed as %s", errs.ErrValueTypeMismatch, want)
	}

	return fmt.Errorf("%w: %s accessed as %s", errs.ErrValueTypeMismatch, v.Type(), want)
}

// AsSingleCategorical returns the id of a SingleCategorical value.
func AsSingleCategorical(v Value) (int32, error) {
	if c, ok := v.(SingleCategorical); ok {
		return c.id, nil
	}

	return 0, mismatch(v, format.TypeSingleCategorical)
}

// AsCategoricals returns the ids of a Categoricals value.
func AsCategoricals(v Value) ([]int32, error) {
	if c, ok := v.(Categoricals); ok {
		return c.ids, nil
	}

	return nil, mismatch(v, format.TypeCategoricals)
}

// AsSingleNumerical returns the number of a SingleNumerical value.
func AsSingleNumerical(v Value) (float64, error) {
	if n, ok := v.(SingleNumerical); ok {
		return n.v, nil
	}

	return 0, mismatch(v, format.TypeSingleNumerical)
}

// AsCategoricalsToNumericals returns the parallel ids and values of a
// CategoricalsToNumericals value.
func AsCategoricalsToNumericals(v Value) ([]int32, []float64, error) {
	if c, ok := v.(CategoricalsToNumericals); ok {
		return c.ids, c.values, nil
	}

	return nil, nil, mismatch(v, format.TypeCategoricalsToNumericals)
}

// AsSingleString returns the string of a SingleString value.
func AsSingleString(v Value) (string, error) {
	if s, ok := v.(SingleString); ok {
		return s.s, nil
	}

	return "", mismatch(v, format.TypeSingleString)
}

// AsStrings returns the strings of a Strings value.
func AsStrings(v Value) ([]string, error) {
	if s, ok := v.(Strings); ok {
		return s.ss, nil
	}

	return nil, mismatch(v, format.TypeStrings)
}

// AsStringsToNumericals returns the parallel names and values of a
// StringsToNumericals value.
func AsStringsToNumericals(v Value) ([]string, []float64, error) {
	if s, ok := v.(StringsToNumericals); ok {
		return s.names, s.values, nil
	}

	return nil, nil, mismatch(v, format.TypeStringsToNumericals)
}
