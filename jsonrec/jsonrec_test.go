package jsonrec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/hashvec/audit"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/sparse"
	"github.com/arloliu/hashvec/value"
)

func testDomain(t *testing.T) *namespace.Domain {
	t.Helper()

	d, err := namespace.NewDomain(
		namespace.Spec{Name: "country", Kind: format.KindCategorical},
		namespace.Spec{Name: "ad_id", Kind: format.KindCategorical},
		namespace.Spec{Name: "query", Kind: format.KindCategorical},
		namespace.Spec{Name: "hours", Kind: format.KindCategorical},
		namespace.Spec{Name: "price", Kind: format.KindNumerical},
		namespace.Spec{Name: "weights", Kind: format.KindNumerical},
		namespace.Spec{Name: "clicks", Kind: format.KindNumerical},
	)
	require.NoError(t, err)

	return d
}

func get(t *testing.T, rec *namespace.Record[value.Raw], name string) value.Raw {
	t.Helper()

	v, ok := rec.Get(rec.Domain().MustLookup(name))
	require.True(t, ok, "namespace %s absent", name)

	return v
}

func TestUnmarshal_Shapes(t *testing.T) {
	d := testDomain(t)
	rec := namespace.NewRecord[value.Raw](d)

	line := `{
		"country": "us",
		"ad_id": 42,
		"query": ["13", "14", "15"],
		"hours": [9, 10],
		"price": 2.5,
		"weights": {"18": 18, "16": 16, "17": 17},
		"clicks": {"ids": [3, 4], "values": [0.5, 1.5]}
	}`
	require.NoError(t, Unmarshal([]byte(line), rec))
	require.Equal(t, 7, rec.Len())

	require.Equal(t, value.NewSingleString("us"), get(t, rec, "country"))
	require.Equal(t, value.NewSingleCategorical(42), get(t, rec, "ad_id"))
	require.Equal(t, value.NewStrings("13", "14", "15"), get(t, rec, "query"))
	require.Equal(t, value.NewCategoricals(9, 10), get(t, rec, "hours"))
	require.Equal(t, value.NewSingleNumerical(2.5), get(t, rec, "price"))

	weights, err := value.NewStringsToNumericals([]string{"16", "17", "18"}, []float64{16, 17, 18})
	require.NoError(t, err)
	require.Equal(t, weights, get(t, rec, "weights"))

	clicks, err := value.NewCategoricalsToNumericals([]int32{3, 4}, []float64{0.5, 1.5})
	require.NoError(t, err)
	require.Equal(t, clicks, get(t, rec, "clicks"))
}

func TestUnmarshal_NullAndReset(t *testing.T) {
	d := testDomain(t)
	rec := namespace.NewRecord[value.Raw](d)

	require.NoError(t, Unmarshal([]byte(`{"country":"us","price":1}`), rec))
	require.Equal(t, 2, rec.Len())

	require.NoError(t, Unmarshal([]byte(`{"country":null,"ad_id":1}`), rec))
	require.Equal(t, 1, rec.Len())
	require.False(t, rec.Has(d.MustLookup("country")))
	require.False(t, rec.Has(d.MustLookup("price")))

	require.NoError(t, Unmarshal([]byte(`{"hours":[]}`), rec))
	require.Equal(t, value.NewCategoricals(), get(t, rec, "hours"))
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"unknown namespace", `{"city":"paris"}`, errs.ErrUnknownNamespace},
		{"not an object", `[1,2]`, errs.ErrInvalidRecord},
		{"null line", `null`, errs.ErrInvalidRecord},
		{"malformed", `{"country":`, errs.ErrInvalidRecord},
		{"fractional id", `{"ad_id":1.5}`, errs.ErrInvalidRecord},
		{"id overflow", `{"ad_id":4294967296}`, errs.ErrInvalidRecord},
		{"boolean", `{"ad_id":true}`, errs.ErrInvalidRecord},
		{"mixed array", `{"query":["a",1]}`, errs.ErrInvalidRecord},
		{"string in numerical", `{"price":"2.5"}`, errs.ErrValueTypeMismatch},
		{"array in numerical", `{"price":[1]}`, errs.ErrValueTypeMismatch},
		{"object in categorical", `{"country":{"a":1}}`, errs.ErrValueTypeMismatch},
		{"non-number weight", `{"weights":{"a":"b"}}`, errs.ErrInvalidRecord},
		{"pair length mismatch", `{"clicks":{"ids":[1,2],"values":[1]}}`, errs.ErrLengthMismatch},
	}

	d := testDomain(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := namespace.NewRecord[value.Raw](d)
			require.NoError(t, rec.SetByName("country", value.NewSingleString("us")))
			require.ErrorIs(t, Unmarshal([]byte(tt.line), rec), tt.want)
			require.Equal(t, 0, rec.Len())
		})
	}
}

func TestUnmarshal_ErrorLeavesRecordEmpty(t *testing.T) {
	d := testDomain(t)
	rec := namespace.NewRecord[value.Raw](d)

	// valid keys before and after the failing one
	line := `{"country":"fr","query":["a","b"],"price":"oops","ad_id":3}`
	for range 10 {
		require.ErrorIs(t, Unmarshal([]byte(line), rec), errs.ErrValueTypeMismatch)
		require.Equal(t, 0, rec.Len())
		for ns := range rec.All() {
			t.Fatalf("namespace %d still set", ns)
		}
	}
}

func TestDecoder_Lines(t *testing.T) {
	d := testDomain(t)
	input := strings.Join([]string{
		`{"country":"us"}`,
		``,
		`{"country":"de","price":3}`,
		`{"city":"x"}`,
	}, "\n")

	dec := NewDecoder(d, strings.NewReader(input))
	rec := namespace.NewRecord[value.Raw](d)

	require.NoError(t, dec.Decode(rec))
	require.Equal(t, 1, dec.Line())
	require.Equal(t, value.NewSingleString("us"), get(t, rec, "country"))

	require.NoError(t, dec.Decode(rec))
	require.Equal(t, 3, dec.Line())
	require.Equal(t, 2, rec.Len())

	err := dec.Decode(rec)
	require.ErrorIs(t, err, errs.ErrUnknownNamespace)
	require.Contains(t, err.Error(), "line 4")

	require.ErrorIs(t, dec.Decode(rec), io.EOF)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	v := sparse.NewVector(2)
	v.Append(0, 1)
	v.Append(32771, 2.5)
	require.NoError(t, w.WriteVector(3, v))

	trail := audit.NewTrail()
	trail.Record(9, audit.RawFeature{Namespace: "query", Value: "<a&b>"})
	trail.Record(5,
		audit.RawFeature{Namespace: "country", Value: "us"},
		audit.RawFeature{Namespace: "device", Value: "mobile"},
	)
	require.NoError(t, w.WriteTrail(3, trail))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var got VectorLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	require.Equal(t, VectorLine{Record: 3, Indices: []int32{0, 32771}, Values: []float64{1, 2.5}}, got)

	require.JSONEq(t,
		`{"record":3,"index":5,"features":[{"namespace":"country","value":"us"},{"namespace":"device","value":"mobile"}]}`,
		lines[1])
	require.Contains(t, lines[2], "<a&b>")
}
