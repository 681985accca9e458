package main

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/hashvec/audit"
	"github.com/arloliu/hashvec/combine"
	"github.com/arloliu/hashvec/jsonrec"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/sparse"
	"github.com/arloliu/hashvec/value"
)

// batchResult holds the combined vector of one record and, with auditing,
// its trail lines.
type batchResult struct {
	vector sparse.Vector
	trail  []jsonrec.AuditLine
}

// combineBatch combines records with up to workers goroutines, each owning a
// scratch. Results keep the order of records; first is the position of
// records[0] in the whole input.
func combineBatch(ctx context.Context, c *combine.Combiner, records []*namespace.Record[value.Raw], first, workers int) ([]batchResult, error) {
	results := make([]batchResult, len(records))
	workers = max(1, min(workers, len(records)))

	g, gCtx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			s, release := c.AcquireScratch()
			defer release()

			for i := w; i < len(records); i += workers {
				if err := gCtx.Err(); err != nil {
					return err
				}

				vec, err := c.Process(s, records[i])
				if err != nil {
					return recordError(first+i, err)
				}
				results[i].vector = vec
				if c.Auditing() {
					results[i].trail = trailLines(first+i, s.Trail())
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func trailLines(record int, trail *audit.Trail) []jsonrec.AuditLine {
	lines := make([]jsonrec.AuditLine, 0, trail.Len())
	for idx, features := range trail.All() {
		lines = append(lines, jsonrec.AuditLine{
			Record:   record,
			Index:    idx,
			Features: slices.Clone(features),
		})
	}

	return lines
}
