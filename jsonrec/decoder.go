// Package jsonrec reads raw records from JSON lines and writes vectors and
// audit trails back as JSON lines.
//
// Each input line is an object keyed by namespace name. The JSON shape of a
// value, together with the namespace kind, selects the raw value shape:
//
//	categorical  "us"                      SingleString
//	categorical  7                         SingleCategorical
//	categorical  ["a", "b"]                Strings
//	categorical  [1, 2]                    Categoricals
//	numerical    2.5                       SingleNumerical
//	numerical    {"w1": 0.5, "w2": 1}      StringsToNumericals
//	numerical    {"ids": [1], "values": [0.5]}  CategoricalsToNumericals
//
// null marks the namespace absent.
package jsonrec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/value"
)

// MaxLineSize bounds a single input line.
const MaxLineSize = 16 * 1024 * 1024

// Decoder reads one record per line.
type Decoder struct {
	domain  *namespace.Domain
	scanner *bufio.Scanner
	line    int
}

// NewDecoder creates a decoder reading records over d from r.
func NewDecoder(d *namespace.Domain, r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	return &Decoder{domain: d, scanner: scanner}
}

// Line returns the number of the line last read, starting at 1.
func (d *Decoder) Line() int {
	return d.line
}

// Decode resets rec and fills it from the next non-blank line. It returns
// io.EOF when the input is exhausted.
func (d *Decoder) Decode(rec *namespace.Record[value.Raw]) error {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if err := Unmarshal(line, rec); err != nil {
			return fmt.Errorf("line %d: %w", d.line, err)
		}

		return nil
	}

	if err := d.scanner.Err(); err != nil {
		return fmt.Errorf("line %d: %w", d.line+1, err)
	}

	return io.EOF
}

// Unmarshal resets rec and fills it from one JSON object keyed by namespace
// names of rec's domain. On error rec is left empty.
func Unmarshal(data []byte, rec *namespace.Record[value.Raw]) error {
	rec.Reset()
	if err := fill(data, rec); err != nil {
		rec.Reset()
		return err
	}

	return nil
}

func fill(data []byte, rec *namespace.Record[value.Raw]) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidRecord, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: not a JSON object", errs.ErrInvalidRecord)
	}

	d := rec.Domain()
	for name, raw := range fields {
		ns, err := d.Lookup(name)
		if err != nil {
			return err
		}

		v, err := parseValue(d.Kind(ns), raw)
		if err != nil {
			return fmt.Errorf("namespace %q: %w", name, err)
		}
		if v != nil {
			rec.Set(ns, v)
		}
	}

	return nil
}

func parseValue(kind format.Kind, raw json.RawMessage) (value.Raw, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil //nolint:nilnil
	}

	switch raw[0] {
	case '"':
		if kind != format.KindCategorical {
			return nil, shapeError(kind, "string")
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRecord, err)
		}

		return value.NewSingleString(s), nil

	case '[':
		if kind != format.KindCategorical {
			return nil, shapeError(kind, "array")
		}

		return parseArray(raw)

	case '{':
		if kind != format.KindNumerical {
			return nil, shapeError(kind, "object")
		}

		return parseObject(raw)

	case 't', 'f':
		return nil, fmt.Errorf("%w: boolean values are not supported", errs.ErrInvalidRecord)

	default:
		if kind == format.KindNumerical {
			f, err := parseFloat(raw)
			if err != nil {
				return nil, err
			}

			return value.NewSingleNumerical(f), nil
		}

		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}

		return value.NewSingleCategorical(id), nil
	}
}

func parseArray(raw json.RawMessage) (value.Raw, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRecord, err)
	}
	if len(items) == 0 {
		return value.NewCategoricals(), nil
	}

	if bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte(`"`)) {
		ss := make([]string, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &ss[i]); err != nil {
				return nil, fmt.Errorf("%w: element %d: mixed or invalid string array", errs.ErrInvalidRecord, i)
			}
		}

		return value.NewStrings(ss...), nil
	}

	ids := make([]int32, len(items))
	for i, item := range items {
		id, err := parseID(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		ids[i] = id
	}

	return value.NewCategoricals(ids...), nil
}

type pairs struct {
	IDs    []int32   `json:"ids"`
	Values []float64 `json:"values"`
}

func parseObject(raw json.RawMessage) (value.Raw, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRecord, err)
	}

	_, hasIDs := fields["ids"]
	_, hasValues := fields["values"]
	if len(fields) == 2 && hasIDs && hasValues {
		var p pairs
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRecord, err)
		}

		return value.NewCategoricalsToNumericals(p.IDs, p.Values)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	values := make([]float64, len(names))
	for i, name := range names {
		f, err := parseFloat(fields[name])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", name, err)
		}
		values[i] = f
	}

	return value.NewStringsToNumericals(names, values)
}

func parseID(raw []byte) (int32, error) {
	id, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: categorical id %s is not a 32-bit integer", errs.ErrInvalidRecord, raw)
	}

	return int32(id), nil
}

func parseFloat(raw []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not a finite number", errs.ErrInvalidRecord, raw)
	}

	return f, nil
}

func shapeError(kind format.Kind, shape string) error {
	return fmt.Errorf("%w: %s namespace cannot hold a JSON %s", errs.ErrValueTypeMismatch, kind, shape)
}
