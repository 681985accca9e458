package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/hashvec"
	"github.com/arloliu/hashvec/combine"
	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/format"
	"github.com/arloliu/hashvec/jsonrec"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/value"
	"github.com/arloliu/hashvec/vecblob"
)

// AuditSuffix is appended to the output path to name the audit trail file.
const AuditSuffix = ".audit.jsonl"

type encodeOptions struct {
	configPath  string
	inputPath   string
	outputPath  string
	workers     int
	batchSize   int
	compression string
	audit       bool
	bigEndian   bool
}

func (a *app) newEncodeCmd() *cobra.Command {
	opts := encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Hash JSON-lines records and store the vectors as a vector blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncode(cmd.Context(), cmd.InOrStdin(), opts, cmd.Flags().Changed("audit"))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "hyperparameter document (.yaml, .yml or .json)")
	f.StringVarP(&opts.inputPath, "input", "i", "-", "JSON-lines records, - for stdin")
	f.StringVarP(&opts.outputPath, "output", "o", "", "vector blob to write")
	f.IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "number of combining workers")
	f.IntVar(&opts.batchSize, "batch-size", 4096, "records combined per batch")
	f.StringVar(&opts.compression, "compression", "", "payload compression (none, zstd, s2, lz4); defaults to the document's")
	f.BoolVar(&opts.audit, "audit", false, "write an audit trail next to the output")
	f.BoolVar(&opts.bigEndian, "big-endian", false, "store the payload big-endian")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (a *app) runEncode(ctx context.Context, stdin io.Reader, opts encodeOptions, auditSet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	var combineOpts []combine.Option
	if auditSet {
		combineOpts = append(combineOpts, combine.WithAudit(opts.audit))
	}
	pipeline, err := hashvec.LoadPipeline(opts.configPath, combineOpts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.configPath, err)
	}

	compression := pipeline.Compression()
	if opts.compression != "" {
		ct, ok := format.ParseCompression(opts.compression)
		if !ok {
			return fmt.Errorf("%w: compression %q", errs.ErrInvalidConfig, opts.compression)
		}
		compression = ct
	}
	encOpts := []vecblob.EncoderOption{vecblob.WithCompression(compression)}
	if opts.bigEndian {
		encOpts = append(encOpts, vecblob.WithBigEndian())
	}
	enc, err := pipeline.NewEncoder(encOpts...)
	if err != nil {
		return err
	}

	in := stdin
	if opts.inputPath != "-" {
		file, err := os.Open(opts.inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		in = file
	}

	var auditOut *jsonrec.Writer
	if pipeline.Combiner().Auditing() {
		file, err := os.Create(opts.outputPath + AuditSuffix)
		if err != nil {
			return fmt.Errorf("create audit trail: %w", err)
		}
		defer file.Close()
		auditOut = jsonrec.NewWriter(file)
	}

	a.log.Debug("encoding records",
		zap.String("config", opts.configPath),
		zap.Int("bit_width", pipeline.FeatureSet().BitWidth()),
		zap.Int("features", pipeline.FeatureSet().Len()),
		zap.Int("workers", opts.workers),
		zap.Bool("audit", auditOut != nil),
	)

	dec := jsonrec.NewDecoder(pipeline.Domain(), in)
	batch := newRecordBatch(pipeline.Domain(), max(1, opts.batchSize))
	total := 0

	for {
		n, readErr := batch.fill(dec)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}

		if n > 0 {
			results, err := combineBatch(ctx, pipeline.Combiner(), batch.records[:n], total, opts.workers)
			if err != nil {
				return err
			}

			for _, r := range results {
				if err := enc.Append(r.vector); err != nil {
					return recordError(total, err)
				}
				if auditOut != nil {
					for _, line := range r.trail {
						if err := auditOut.Write(line); err != nil {
							return fmt.Errorf("write audit trail: %w", err)
						}
					}
				}
				total++
			}
		}

		if readErr != nil {
			break
		}
	}

	blob, err := enc.Finish()
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outputPath, blob, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("write output: %w", err)
	}

	a.log.Info("encoded vector blob",
		zap.String("output", opts.outputPath),
		zap.Int("records", total),
		zap.Int("bytes", len(blob)),
		zap.Stringer("compression", compression),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// recordBatch reuses its raw records across batches.
type recordBatch struct {
	records []*namespace.Record[value.Raw]
}

func newRecordBatch(d *namespace.Domain, size int) *recordBatch {
	b := &recordBatch{records: make([]*namespace.Record[value.Raw], size)}
	for i := range b.records {
		b.records[i] = namespace.NewRecord[value.Raw](d)
	}

	return b
}

// fill decodes up to len(records) records and returns how many were read.
// io.EOF is returned together with the final partial batch.
func (b *recordBatch) fill(dec *jsonrec.Decoder) (int, error) {
	for i, rec := range b.records {
		if err := dec.Decode(rec); err != nil {
			return i, err
		}
	}

	return len(b.records), nil
}

func recordError(record int, err error) error {
	return fmt.Errorf("record %d: %w", record, err)
}
