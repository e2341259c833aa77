// Package indicators wires the cooccurrence accumulator (phase 2) and the
// parallel rescorer (phase 3) behind the single public entry point callers
// use: Compute.
package indicators

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pc3/recoreco/cooccur"
	"github.com/pc3/recoreco/llr"
	"github.com/pc3/recoreco/rescorer"
)

// Params configures one Compute call. Zero-valued fields fall back to
// sensible defaults (see withDefaults).
type Params struct {
	NumUsers int
	NumItems int
	N        int    // indicators per item, default 10
	FMax     uint32 // per-item interaction cap, default 500
	KMax     uint32 // per-user sampled-history cap, default 500
	Workers  int    // worker-pool size, default runtime.GOMAXPROCS(0)
	Seed     int64  // reservoir RNG seed; fixed by default for reproducibility
}

// DefaultSeed is used whenever a caller leaves Params.Seed at its zero value;
// it exists purely so that two unconfigured Compute calls over the same
// input are guaranteed to produce identical results.
const DefaultSeed = 0x5ec0b1ad

func (p Params) withDefaults() Params {
	if p.N == 0 {
		p.N = cooccur.DefaultN
	}
	if p.FMax == 0 {
		p.FMax = cooccur.DefaultFMax
	}
	if p.KMax == 0 {
		p.KMax = cooccur.DefaultKMax
	}
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
	return p
}

// InteractionSource is a finite, non-restartable, lazily-pulled sequence of
// (user, item) pairs.
type InteractionSource interface {
	// Next returns the next (user, item) pair. ok is false once the stream
	// is exhausted; Next must not be called again afterward.
	Next() (user, item uint32, ok bool)
}

// SliceSource adapts an in-memory slice of pairs to InteractionSource.
type SliceSource struct {
	pairs [][2]uint32
	pos   int
}

// NewSliceSource wraps pairs for use as an InteractionSource.
func NewSliceSource(pairs [][2]uint32) *SliceSource {
	s := &SliceSource{pairs: make([][2]uint32, len(pairs))}
	copy(s.pairs, pairs)
	return s
}

// Next implements InteractionSource.
func (s *SliceSource) Next() (uint32, uint32, bool) {
	if s.pos >= len(s.pairs) {
		return 0, 0, false
	}
	p := s.pairs[s.pos]
	s.pos++
	return p[0], p[1], true
}

// Compute runs the full two-phase pipeline: a single-threaded accumulation
// pass over interactions, followed by a parallel rescoring pass over every
// item whose cooccurrence row changed. It returns one result set per item
// index in [0, NumItems); items never seen produce an empty set.
//
// The only failure mode is allocation failure inside phase 2 or phase 3,
// which callers cannot recover from; Compute turns that into an error via
// recover rather than letting a bad NumUsers/NumItems value crash the whole
// process, while still treating it as a hard, unretryable failure.
func Compute(ctx context.Context, interactions InteractionSource, params Params) (result []map[uint32]struct{}, err error) {
	p := params.withDefaults()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("indicators: fatal allocation failure computing indicators: %v", r)
		}
	}()

	acc := cooccur.New(cooccur.Params{
		NumUsers: p.NumUsers,
		NumItems: p.NumItems,
		FMax:     p.FMax,
		KMax:     p.KMax,
		Seed:     p.Seed,
	})

	acc.Run(interactions.Next)

	maxCell := int(p.FMax)*int(p.KMax) + int(p.KMax)
	logs := llr.NewLogTable(maxCell + 1)

	return rescorer.Rescore(ctx, acc.C, acc.RowSum, acc.NCooc, acc.Dirty, logs, rescorer.Params{
		N:       p.N,
		Workers: p.Workers,
	})
}
