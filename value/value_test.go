package value

import (
	"testing"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/stretchr/testify/require"
)

func mustC2N(t *testing.T, ids []int32, values []float64) CategoricalsToNumericals {
	t.Helper()
	v, err := NewCategoricalsToNumericals(ids, values)
	require.NoError(t, err)

	return v
}

func mustS2N(t *testing.T, names []string, values []float64) StringsToNumericals {
	t.Helper()
	v, err := NewStringsToNumericals(names, values)
	require.NoError(t, err)

	return v
}

// accessors calls each As* accessor and reports which ones succeeded.
func accessors(v Value) map[format.ValueType]error {
	res := make(map[format.ValueType]error)
	_, res[format.TypeSingleCategorical] = AsSingleCategorical(v)
	_, res[format.TypeCategoricals] = AsCategoricals(v)
	_, res[format.TypeSingleNumerical] = AsSingleNumerical(v)
	_, _, res[format.TypeCategoricalsToNumericals] = AsCategoricalsToNumericals(v)
	_, res[format.TypeSingleString] = AsSingleString(v)
	_, res[format.TypeStrings] = AsStrings(v)
	_, _, res[format.TypeStringsToNumericals] = AsStringsToNumericals(v)

	return res
}

func TestShapeExclusivity(t *testing.T) {
	values := []Value{
		NewSingleCategorical(1),
		NewCategoricals(1, 2, 3),
		NewSingleNumerical(1.5),
		mustC2N(t, []int32{1, 2}, []float64{0.5, 0.25}),
		NewSingleString("abc"),
		NewStrings("13", "14", "15"),
		mustS2N(t, []string{"16", "17", "18"}, []float64{16, 17, 18}),
	}
	want := []format.ValueType{
		format.TypeSingleCategorical,
		format.TypeCategoricals,
		format.TypeSingleNumerical,
		format.TypeCategoricalsToNumericals,
		format.TypeSingleString,
		format.TypeStrings,
		format.TypeStringsToNumericals,
	}

	for i, v := range values {
		t.Run(want[i].String(), func(t *testing.T) {
			require.Equal(t, want[i], v.Type())
			for typ, err := range accessors(v) {
				if typ == want[i] {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, errs.ErrValueTypeMismatch, "accessor %s", typ)
				}
			}
		})
	}
}

func TestAccessors_NilValue(t *testing.T) {
	for typ, err := range accessors(nil) {
		require.ErrorIs(t, err, errs.ErrValueTypeMismatch, "accessor %s", typ)
	}
}

func TestAccessors_Payload(t *testing.T) {
	id, err := AsSingleCategorical(NewSingleCategorical(-7))
	require.NoError(t, err)
	require.Equal(t, int32(-7), id)

	ids, err := AsCategoricals(NewCategoricals(4, 5))
	require.NoError(t, err)
	require.Equal(t, []int32{4, 5}, ids)

	n, err := AsSingleNumerical(NewSingleNumerical(2.5))
	require.NoError(t, err)
	require.InDelta(t, 2.5, n, 0)

	cids, cvals, err := AsCategoricalsToNumericals(mustC2N(t, []int32{9}, []float64{0.1}))
	require.NoError(t, err)
	require.Equal(t, []int32{9}, cids)
	require.Equal(t, []float64{0.1}, cvals)

	s, err := AsSingleString(NewSingleString("abc"))
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	ss, err := AsStrings(NewStrings("x", "y"))
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, ss)

	names, vals, err := AsStringsToNumericals(mustS2N(t, []string{"a"}, []float64{3}))
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, names)
	require.Equal(t, []float64{3}, vals)
}

func TestParallelConstructors_LengthMismatch(t *testing.T) {
	_, err := NewCategoricalsToNumericals([]int32{1, 2}, []float64{1})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)

	_, err = NewStringsToNumericals([]string{"a"}, nil)
	require.ErrorIs(t, err, errs.ErrLengthMismatch)

	v, err := NewStringsToNumericals(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, v.Len())
}

func TestValueType_Kind(t *testing.T) {
	require.Equal(t, format.KindCategorical, NewSingleString("x").Type().Kind())
	require.Equal(t, format.KindCategorical, NewCategoricals().Type().Kind())
	require.Equal(t, format.KindNumerical, NewSingleNumerical(1).Type().Kind())
	require.Equal(t, format.KindNumerical, mustS2N(t, nil, nil).Type().Kind())
}
