package jsonrec

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/arloliu/hashvec/audit"
	"github.com/arloliu/hashvec/sparse"
)

// VectorLine is the JSON form of one sparse vector.
type VectorLine struct {
	Record  int       `json:"record"`
	Indices []int32   `json:"indices"`
	Values  []float64 `json:"values"`
}

// AuditLine is the JSON form of one audited vector index.
type AuditLine struct {
	Record   int                `json:"record"`
	Index    int32              `json:"index"`
	Features []audit.RawFeature `json:"features"`
}

// Writer writes JSON lines. It is not safe for concurrent use.
type Writer struct {
	enc *json.Encoder
}

// NewWriter creates a writer on w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return &Writer{enc: enc}
}

// WriteVector writes v as one line.
func (w *Writer) WriteVector(record int, v sparse.Vector) error {
	return w.enc.Encode(VectorLine{
		Record:  record,
		Indices: v.Indices,
		Values:  v.Values,
	})
}

// WriteTrail writes one line per index of trail, in ascending index order.
func (w *Writer) WriteTrail(record int, trail *audit.Trail) error {
	for idx, features := range trail.All() {
		if err := w.enc.Encode(AuditLine{Record: record, Index: idx, Features: features}); err != nil {
			return err
		}
	}

	return nil
}

// Write writes any JSON-encodable value as one line.
func (w *Writer) Write(v any) error {
	return w.enc.Encode(v)
}
