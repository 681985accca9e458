package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
)

const yamlDoc = `
bit_width: 18
compression: zstd
namespaces:
  - {name: country, kind: categorical}
  - {name: device,  kind: categorical}
  - {name: price,   kind: numerical}
  - {name: target,  kind: numerical}
features:
  - [country]
  - [price]
  - [device, country]
`

const jsonDoc = `{
  "bit_width": 18,
  "compression": "zstd",
  "namespaces": [
    {"name": "country", "kind": "categorical"},
    {"name": "device", "kind": "categorical"},
    {"name": "price", "kind": "numerical"},
    {"name": "target", "kind": "numerical"}
  ],
  "features": [["country"], ["price"], ["device", "country"]]
}`

func TestParse_YAMLAndJSONAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(yamlDoc), TypeYAML)
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(jsonDoc), TypeJSON)
	require.NoError(t, err)
	require.Equal(t, fromYAML, fromJSON)

	set, err := fromYAML.Build()
	require.NoError(t, err)
	require.Equal(t, 18, set.BitWidth())
	require.Equal(t, 4, set.Domain().Len())

	names := make([]string, 0, set.Len())
	for _, def := range set.Definitions() {
		names = append(names, def.Name())
	}
	require.Equal(t, []string{"country", "price", "country^device"}, names)

	ct, err := fromYAML.CompressionType()
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, ct)
}

func TestParse_EnvSubstitution(t *testing.T) {
	t.Setenv("HASHVEC_BITS", "12")

	doc, err := Parse([]byte(`
bit_width: ${HASHVEC_BITS}
namespaces: [{name: a, kind: categorical}]
features: [[a]]
`), TypeYAML)
	require.NoError(t, err)
	require.Equal(t, 12, doc.BitWidth)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("HASHVEC_SELF", "${HASHVEC_SELF}")
	t.Setenv("HASHVEC_NESTED", "${HASHVEC_BITS}")
	t.Setenv("HASHVEC_BITS", "12")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "bits: ${HASHVEC_BITS}", "bits: 12"},
		{"repeated", "${HASHVEC_BITS}-${HASHVEC_BITS}", "12-12"},
		{"unset", "a${HASHVEC_UNSET}b", "ab"},
		{"self reference", "bits: ${HASHVEC_SELF}", "bits: ${HASHVEC_SELF}"},
		{"value not expanded", "${HASHVEC_NESTED}", "${HASHVEC_BITS}"},
		{"unterminated", "bits: ${HASHVEC_BITS", "bits: ${HASHVEC_BITS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, substituteEnvVars(tt.in))
		})
	}
}

func TestParse_SelfReferencingEnvVar(t *testing.T) {
	t.Setenv("HASHVEC_SELF", "${HASHVEC_SELF}")

	_, err := Parse([]byte("bit_width: ${HASHVEC_SELF}\n"), TypeYAML)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bit width zero", `{"bit_width":0,"namespaces":[{"name":"a","kind":"categorical"}],"features":[["a"]]}`},
		{"bit width too large", `{"bit_width":33,"namespaces":[{"name":"a","kind":"categorical"}],"features":[["a"]]}`},
		{"no namespaces", `{"bit_width":8,"namespaces":[],"features":[["a"]]}`},
		{"bad kind", `{"bit_width":8,"namespaces":[{"name":"a","kind":"ordinal"}],"features":[["a"]]}`},
		{"empty group", `{"bit_width":8,"namespaces":[{"name":"a","kind":"categorical"}],"features":[[]]}`},
		{"empty name in group", `{"bit_width":8,"namespaces":[{"name":"a","kind":"categorical"}],"features":[[""]]}`},
		{"bad compression", `{"bit_width":8,"compression":"gzip","namespaces":[{"name":"a","kind":"categorical"}],"features":[["a"]]}`},
		{"malformed", `{"bit_width":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), TypeJSON)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown namespace", `{"bit_width":8,"namespaces":[{"name":"a","kind":"categorical"}],"features":[["b"]]}`, errs.ErrUnknownNamespace},
		{"target component", `{"bit_width":8,"namespaces":[{"name":"target","kind":"numerical"}],"features":[["target"]]}`, errs.ErrTargetComponent},
		{"numerical interaction", `{"bit_width":8,"namespaces":[{"name":"a","kind":"numerical"},{"name":"b","kind":"categorical"}],"features":[["a","b"]]}`, errs.ErrNumericalInteraction},
		{"duplicate namespace", `{"bit_width":8,"namespaces":[{"name":"a","kind":"categorical"},{"name":"a","kind":"categorical"}],"features":[["a"]]}`, errs.ErrDuplicateNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc), TypeJSON)
			require.NoError(t, err)

			_, err = doc.Build()
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "hyper.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o600))

	doc, err := Load(yamlPath)
	require.NoError(t, err)

	jsonPath := filepath.Join(dir, "hyper.json")
	require.NoError(t, Save(jsonPath, doc))

	reloaded, err := Load(jsonPath)
	require.NoError(t, err)
	require.Equal(t, doc, reloaded)

	_, err = Load(filepath.Join(dir, "hyper.toml"))
	require.ErrorIs(t, err, errs.ErrUnsupportedConfigType)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
