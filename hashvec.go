// Package hashvec turns records of named raw feature values into
// fixed-width sparse vectors using feature hashing.
//
// Every feature, and every interaction of several features, is hashed into a
// 2^b index space with 32-bit MurmurHash3, so a linear model can consume
// high-cardinality categorical data without a vocabulary.
//
// # Core Features
//
//   - Closed namespace domains with categorical and numerical kinds
//   - Plain features and k-way interactions (cartesian product of ids)
//   - Deterministic indices, stable across processes and runs
//   - Optional audit trail from each index back to its raw features
//   - Compact vector blobs (None, Zstd, S2, LZ4) tagged with the feature-set fingerprint
//
// # Basic Usage
//
//	pipeline, _ := hashvec.LoadPipeline("hyper.yaml")
//
//	rec := pipeline.NewRecord()
//	_ = rec.SetByName("country", value.NewSingleString("us"))
//	_ = rec.SetByName("device", value.NewSingleString("mobile"))
//
//	s := pipeline.Combiner().NewScratch()
//	vec, _ := pipeline.Combiner().Process(s, rec)
//
// Storing vectors:
//
//	enc, _ := pipeline.NewEncoder()
//	_ = enc.Append(vec)
//	blob, _ := enc.Finish()
//
//	dec, _ := pipeline.NewDecoder(blob)
//	for i, v := range dec.All() {
//	    fmt.Println(i, v.Indices)
//	}
//
// # Package Structure
//
// This package wires the namespace, feature, combine and vecblob packages
// together for the common case of one feature set per process. Use those
// packages directly for finer control.
package hashvec

import (
	"fmt"

	"github.com/arloliu/hashvec/combine"
	"github.com/arloliu/hashvec/config"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/murmur"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/value"
	"github.com/arloliu/hashvec/vecblob"
)

// Pipeline bundles a feature set, its combiner and the blob settings used to
// store its vectors. It is safe for concurrent use.
type Pipeline struct {
	set         *feature.Set
	combiner    *combine.Combiner
	compression format.CompressionType
}

// NewPipeline creates a pipeline over set. Blobs are stored uncompressed
// unless the encoder is given vecblob.WithCompression.
func NewPipeline(set *feature.Set, opts ...combine.Option) (*Pipeline, error) {
	c, err := combine.NewCombiner(set, opts...)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		set:         set,
		combiner:    c,
		compression: format.CompressionNone,
	}, nil
}

// NewPipelineFromDocument builds a pipeline from a parsed hyperparameter
// document. The document's audit and compression settings become defaults;
// opts are applied after them.
func NewPipelineFromDocument(doc *config.Document, opts ...combine.Option) (*Pipeline, error) {
	set, err := doc.Build()
	if err != nil {
		return nil, err
	}

	compression, err := doc.CompressionType()
	if err != nil {
		return nil, err
	}

	all := append([]combine.Option{combine.WithAudit(doc.Audit)}, opts...)
	p, err := NewPipeline(set, all...)
	if err != nil {
		return nil, err
	}
	p.compression = compression

	return p, nil
}

// LoadPipeline loads a YAML or JSON hyperparameter document and builds a
// pipeline from it.
func LoadPipeline(path string, opts ...combine.Option) (*Pipeline, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return NewPipelineFromDocument(doc, opts...)
}

// FeatureSet returns the pipeline's feature set.
func (p *Pipeline) FeatureSet() *feature.Set { return p.set }

// Domain returns the namespace domain records must be keyed by. Records keyed
// by an equal domain, such as one loaded from the same document, are accepted
// as well.
func (p *Pipeline) Domain() *namespace.Domain { return p.set.Domain() }

// Combiner returns the pipeline's combiner.
func (p *Pipeline) Combiner() *combine.Combiner { return p.combiner }

// Compression returns the default blob codec.
func (p *Pipeline) Compression() format.CompressionType { return p.compression }

// NewRecord creates an empty raw record over the pipeline's domain.
func (p *Pipeline) NewRecord() *namespace.Record[value.Raw] {
	return namespace.NewRecord[value.Raw](p.set.Domain())
}

// NewEncoder creates a blob encoder stamped with the pipeline's bit width and
// fingerprint, using the default codec unless opts override it.
func (p *Pipeline) NewEncoder(opts ...vecblob.EncoderOption) (*vecblob.Encoder, error) {
	all := append([]vecblob.EncoderOption{vecblob.WithCompression(p.compression)}, opts...)

	return vecblob.NewEncoder(p.set.BitWidth(), p.set.Fingerprint(), all...)
}

// NewDecoder opens a blob and checks that it was produced by an identical
// feature set.
func (p *Pipeline) NewDecoder(data []byte) (*vecblob.Decoder, error) {
	dec, err := vecblob.NewDecoder(data)
	if err != nil {
		return nil, err
	}

	h := dec.Header()
	if h.Fingerprint != p.set.Fingerprint() || int(h.Flag.BitWidth) != p.set.BitWidth() {
		return nil, fmt.Errorf("%w: blob fingerprint %016x/%d bits, pipeline %016x/%d bits",
			errs.ErrFingerprintMismatch, h.Fingerprint, h.Flag.BitWidth, p.set.Fingerprint(), p.set.BitWidth())
	}

	return dec, nil
}

// HashString returns the 32-bit MurmurHash3 of s's UTF-16 encoding.
func HashString(s string) int32 {
	return murmur.HashString(s)
}

// HashInt returns the 32-bit MurmurHash3 of a single int.
func HashInt(v int32) int32 {
	return murmur.HashInt(v)
}
