package combine

import (
	"github.com/arloliu/hashvec/audit"
	"github.com/arloliu/hashvec/namespace"
	"github.com/arloliu/hashvec/value"
)

// initialAccumulatorSize is the starting capacity of the index accumulators.
const initialAccumulatorSize = 64

// Scratch holds the mutable per-record state of one worker: the hashed
// record, the index accumulators, the interaction expansion buffers and the
// audit structures. It is reused across records and must never be shared
// between goroutines while in use.
type Scratch struct {
	hashed      *namespace.Record[value.Hashed]
	categorical map[int32]struct{}
	numerical   map[int32]float64
	keys        []int32

	registry *audit.Registry
	trail    *audit.Trail
	// record the registry was built for, nil when stale
	registered *namespace.Record[value.Hashed]

	// interaction expansion, one slot per component
	ids    [][]int32
	hashes [][]uint32
	single []int32
	pos    []int
	prefix []uint32
	names  []audit.RawFeature

	attempts int
}

func newScratch(d *namespace.Domain) *Scratch {
	return &Scratch{
		hashed:      namespace.NewRecord[value.Hashed](d),
		categorical: make(map[int32]struct{}, initialAccumulatorSize),
		numerical:   make(map[int32]float64, initialAccumulatorSize),
		keys:        make([]int32, 0, initialAccumulatorSize),
		registry:    audit.NewRegistry(),
		trail:       audit.NewTrail(),
	}
}

// Hashed returns the hashed record produced by the last Hash or Process call.
func (s *Scratch) Hashed() *namespace.Record[value.Hashed] { return s.hashed }

// Registry returns the raw-to-hashed registry of the last hashed record. It is
// only populated when auditing is enabled.
func (s *Scratch) Registry() *audit.Registry { return s.registry }

// Trail returns the index-to-raw-feature trail of the last combined record.
// It is only populated when auditing is enabled.
func (s *Scratch) Trail() *audit.Trail { return s.trail }

// Attempts returns how many feature indices the last Apply computed, not
// counting the bias. Colliding indices are each counted.
func (s *Scratch) Attempts() int { return s.attempts }

// reset clears the accumulators before rec is combined. A registry built for
// another record is dropped so its names never leak into rec's trail.
func (s *Scratch) reset(rec *namespace.Record[value.Hashed], auditing bool) {
	clear(s.categorical)
	clear(s.numerical)
	s.keys = s.keys[:0]
	s.attempts = 0
	if auditing {
		s.trail.Reset()
		if s.registered != rec {
			s.registry.Reset()
			s.registered = nil
		}
	}
}

// grow makes sure the interaction buffers have k slots.
func (s *Scratch) grow(k int) {
	if len(s.ids) >= k {
		return
	}

	s.ids = append(s.ids, make([][]int32, k-len(s.ids))...)
	s.hashes = append(s.hashes, make([][]uint32, k-len(s.hashes))...)
	s.single = make([]int32, k)
	s.pos = make([]int, k)
	s.prefix = make([]uint32, k+1)
	s.names = make([]audit.RawFeature, k)
}
