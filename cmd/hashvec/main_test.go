package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/hashvec"
	"github.com/arloliu/hashvec/combine"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/feature"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/jsonrec"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/sparse"
	"github.com/arloliu/hashvec/value"
	"github.com/arloliu/hashvec/vecblob"
)

const testConfig = `
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

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestHashCmd(t *testing.T) {
	out, err := run(t, "", "hash", "abc", "country^device")
	require.NoError(t, err)
	require.Equal(t, "abc\t1118836419\ncountry^device\t1164966157\n", out)

	out, err = run(t, "", "hash", "--int", "--", "7", "-1")
	require.NoError(t, err)
	require.Equal(t, "7\t1343918321\n-1\t1982413648\n", out)

	_, err = run(t, "", "hash", "--int", "x")
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "hashvec dev\n", out)
}

func TestEncodeAndInspect(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "hyper.yaml", testConfig)

	var records strings.Builder
	for i := range 50 {
		country := []string{"fr", "us", "de"}[i%3]
		records.WriteString(`{"country":"` + country + `","device":["phone","tablet"],"price":` + []string{"1", "2.5"}[i%2] + "}\n")
	}
	input := writeFile(t, dir, "records.jsonl", records.String())
	output := filepath.Join(dir, "out.hvb")

	_, err := run(t, "", "encode", "-c", cfg, "-i", input, "-o", output,
		"--workers", "4", "--batch-size", "7", "--audit")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	dec, err := vecblob.NewDecoder(data)
	require.NoError(t, err)
	require.Equal(t, 50, dec.Len())
	require.Equal(t, format.CompressionZstd, dec.Header().Flag.Compression())

	// order is preserved: vector i equals a single-threaded combine of record i
	wantVectors, wantTrail := singleThreaded(t, cfg, records.String())
	require.Equal(t, wantVectors, dec.Decode())

	auditData, err := os.ReadFile(output + AuditSuffix)
	require.NoError(t, err)
	require.Equal(t, wantTrail, string(auditData))
	lines := strings.Split(strings.TrimSpace(string(auditData)), "\n")

	var first jsonrec.AuditLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, 0, first.Record)

	var last jsonrec.AuditLine
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	require.Equal(t, 49, last.Record)

	out, err := run(t, "", "inspect", output, "-c", cfg, "--vectors")
	require.NoError(t, err)
	outLines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, outLines, 51)

	var summary headerSummary
	require.NoError(t, json.Unmarshal([]byte(outLines[0]), &summary))
	require.Equal(t, uint32(50), summary.Count)
	require.Equal(t, uint8(18), summary.BitWidth)
	require.Equal(t, "Zstd", summary.Compression)
	require.Equal(t, "little", summary.Endianness)
}

func TestEncode_StdinOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "hyper.yaml", testConfig)
	output := filepath.Join(dir, "out.hvb")

	_, err := run(t, `{"country":"fr"}`+"\n\n"+`{"price":3}`, "encode", "-c", cfg, "-o", output,
		"--compression", "lz4", "--big-endian")
	require.NoError(t, err)

	out, err := run(t, "", "inspect", output)
	require.NoError(t, err)

	var summary headerSummary
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &summary))
	require.Equal(t, uint32(2), summary.Count)
	require.Equal(t, "LZ4", summary.Compression)
	require.Equal(t, "big", summary.Endianness)

	_, err = os.Stat(output + AuditSuffix)
	require.True(t, os.IsNotExist(err))
}

func TestEncode_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "hyper.yaml", testConfig)
	output := filepath.Join(dir, "out.hvb")

	_, err := run(t, `{"city":"paris"}`, "encode", "-c", cfg, "-o", output)
	require.ErrorIs(t, err, errs.ErrUnknownNamespace)

	_, err = run(t, `{"country":"fr"}`, "encode", "-c", cfg, "-o", output, "--compression", "gzip")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = run(t, "", "encode", "-c", filepath.Join(dir, "missing.yaml"), "-o", output)
	require.Error(t, err)

	_, err = run(t, "", "encode", "-o", output)
	require.Error(t, err)
}

func TestInspect_FingerprintMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "hyper.yaml", testConfig)

	blob, err := vecblob.Encode(18, 12345, nil)
	require.NoError(t, err)
	path := filepath.Join(dir, "foreign.hvb")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	_, err = run(t, "", "inspect", path, "-c", cfg)
	require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
}

func TestCombineBatch_Cancelled(t *testing.T) {
	d := namespace.MustNewDomain(namespace.Spec{Name: "a", Kind: format.KindCategorical})
	set, err := feature.NewSetFromGroups(d, 8, [][]string{{"a"}})
	require.NoError(t, err)
	c, err := combine.NewCombiner(set)
	require.NoError(t, err)

	records := []*namespace.Record[value.Raw]{namespace.NewRecord[value.Raw](d)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = combineBatch(ctx, c, records, 0, 2)
	require.ErrorIs(t, err, context.Canceled)

	results, err := combineBatch(context.Background(), c, records, 0, 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []int32{0}, results[0].vector.Indices)
}

// singleThreaded combines input on one scratch and returns the vectors and
// the audit trail the encode command is expected to write.
func singleThreaded(t *testing.T, cfgPath, input string) ([]sparse.Vector, string) {
	t.Helper()

	pipeline, err := hashvec.LoadPipeline(cfgPath, combine.WithAudit(true))
	require.NoError(t, err)

	var trail bytes.Buffer
	w := jsonrec.NewWriter(&trail)
	dec := jsonrec.NewDecoder(pipeline.Domain(), strings.NewReader(input))
	rec := pipeline.NewRecord()
	s := pipeline.Combiner().NewScratch()

	var vectors []sparse.Vector
	for i := 0; ; i++ {
		if err := dec.Decode(rec); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		vec, err := pipeline.Combiner().Process(s, rec)
		require.NoError(t, err)
		vectors = append(vectors, vec)
		require.NoError(t, w.WriteTrail(i, s.Trail()))
	}

	return vectors, trail.String()
}
