// Package config loads the hyperparameter document that declares the
// namespace domain, the bit width and the feature groups of a pipeline.
//
// Documents are YAML or JSON, selected by file extension. ${VAR} references
// are replaced with environment values before parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/namespace"
)

var validate = validator.New()

// Type is a document encoding.
type Type string

const (
	TypeYAML Type = "yaml"
	TypeJSON Type = "json"
)

// Namespace declares one namespace of the domain.
type Namespace struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=categorical numerical"`
}

// Document is a parsed hyperparameter document.
type Document struct {
	BitWidth   int         `json:"bit_width" yaml:"bit_width" validate:"min=1,max=32"`
	Namespaces []Namespace `json:"namespaces" yaml:"namespaces" validate:"required,min=1,dive"`
	Features   [][]string  `json:"features" yaml:"features" validate:"dive,min=1,dive,required"`
	// Compression is the default vector blob codec; empty means none.
	Compression string `json:"compression,omitempty" yaml:"compression,omitempty" validate:"omitempty,oneof=none zstd s2 lz4"`
	// Audit enables the audit side channel by default.
	Audit bool `json:"audit,omitempty" yaml:"audit,omitempty"`
}

// TypeOf returns the document type implied by a file extension.
func TypeOf(path string) (Type, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return TypeYAML, nil
	case ".json":
		return TypeJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedConfigType, filepath.Ext(path))
	}
}

// Load reads, parses and validates the document at path.
func Load(path string) (*Document, error) {
	typ, err := TypeOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, typ)
}

// Parse parses and validates a document.
func Parse(data []byte, typ Type) (*Document, error) {
	content := []byte(substituteEnvVars(string(data)))

	doc := &Document{}
	switch typ {
	case TypeYAML:
		if err := yaml.Unmarshal(content, doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML: %w", errs.ErrInvalidConfig, err)
		}
	case TypeJSON:
		if err := json.Unmarshal(content, doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON: %w", errs.ErrInvalidConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedConfigType, typ)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks field constraints. Cross references between features and
// namespaces are checked by Build.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", errs.ErrInvalidConfig, fe.Namespace(), fe.Tag())
		}

		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	return nil
}

// Domain builds the namespace domain.
func (d *Document) Domain() (*namespace.Domain, error) {
	specs := make([]namespace.Spec, 0, len(d.Namespaces))
	for _, ns := range d.Namespaces {
		kind, ok := format.ParseKind(ns.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q for namespace %q", errs.ErrInvalidKind, ns.Kind, ns.Name)
		}
		specs = append(specs, namespace.Spec{Name: ns.Name, Kind: kind})
	}

	return namespace.NewDomain(specs...)
}

// Build builds the domain and the feature set. Every configuration error
// surfaces here, before any record is processed.
func (d *Document) Build() (*feature.Set, error) {
	domain, err := d.Domain()
	if err != nil {
		return nil, err
	}

	return feature.NewSetFromGroups(domain, d.BitWidth, d.Features)
}

// CompressionType returns the configured codec.
func (d *Document) CompressionType() (format.CompressionType, error) {
	ct, ok := format.ParseCompression(d.Compression)
	if !ok {
		return 0, fmt.Errorf("%w: compression %q", errs.ErrInvalidConfig, d.Compression)
	}

	return ct, nil
}

// Save writes the document, as YAML or JSON by extension.
func Save(path string, doc *Document) error {
	typ, err := TypeOf(path)
	if err != nil {
		return err
	}

	var data []byte
	if typ == TypeJSON {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are not scanned again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)

	return b.String()
}
