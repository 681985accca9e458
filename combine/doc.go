// Package combine folds hashed records and their declared feature
// interactions into fixed-width sparse vectors.
//
// # Pipeline
//
// A raw record is first hashed: every string identity becomes a 32-bit murmur
// hash, numeric payloads pass through, and integer ids are kept as they are.
// The hashed record is then combined against a feature.Set:
//
//   - index 0 (the bias) is always emitted
//   - a numerical feature emits ((ns*FNV) ^ hash(id)) & mask with its value
//   - a categorical feature emits ((ns*FNV) ^ hash(id)) & mask with value 1.0
//   - an interaction over k categorical components emits one index per element
//     of the cartesian product of their id lists, folding h = (h ^ hash(id)) * FNV
//     from h = ns across the components in canonical order
//
// where ns is the definition's namespace id and FNV is FNVPrime32. A feature
// whose component is absent from the record, or whose id list is empty,
// contributes nothing; interactions are all-or-nothing. Index collisions are
// accepted: categorical indices form a set and numerical indices keep the last
// value written.
//
// # Concurrency
//
// A Combiner is immutable after construction and may be shared by any number
// of goroutines. All per-record mutable state lives in a Scratch, which must be
// owned by one goroutine at a time and is cleared at the start of every call:
//
//	c, _ := combine.NewCombiner(set)
//	for range workers {
//	    go func() {
//	        s := c.NewScratch()
//	        for raw := range records {
//	            vec, err := c.Process(s, raw)
//	            ...
//	        }
//	    }()
//	}
//
// Callers without long-lived workers can borrow a Scratch with AcquireScratch.
//
// # Auditing
//
// WithAudit(true) makes Process record, in the Scratch, which raw values
// produced each emitted index (see package audit). Auditing never changes the
// emitted vector.
package combine
