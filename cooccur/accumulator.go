// Package cooccur implements the downsampled cooccurrence accumulator: a
// single-threaded streaming pass over (user, item) interaction pairs that
// maintains a sparse symmetric cooccurrence matrix bounded in memory by a
// per-item frequency cap and a per-user reservoir-sampled history.
package cooccur

import "math/rand"

// Row is one row of the sparse symmetric cooccurrence matrix: item id to
// cooccurrence count. Counts are signed because the reservoir-replacement
// branch decrements entries, and a 16-bit unsigned cell would be unsafe to
// hold magnitudes up to KMax (see spec's design notes on cell width).
type Row map[uint32]int32

// Accumulator holds all phase-2 state: per-user sampled histories, per-user
// and per-item interaction counters, the sparse cooccurrence matrix C, its
// row sums, the running total cooccurrence count, and the set of items
// whose row changed during the pass ("dirty").
type Accumulator struct {
	fMax uint32
	kMax uint32

	userTotal []uint64 // raw interaction count per user, never capped
	userKept  []uint32 // count admitted into the sampled history
	itemCount []uint32 // count admitted for the item, capped at fMax
	history   [][]uint32

	C       []Row
	RowSum  []uint32
	NCooc   uint64
	Dirty   map[uint32]struct{}

	rng *rand.Rand
}

// Params bounds one accumulation pass.
type Params struct {
	NumUsers int
	NumItems int
	FMax     uint32 // per-item interaction cap, default 500
	KMax     uint32 // per-user sampled-history cap, default 500
	Seed     int64  // seeds the reservoir RNG; fixed seed => deterministic run
}

// DefaultFMax and DefaultKMax are the default per-item and per-user caps
// applied when a caller leaves them unset.
const (
	DefaultFMax = 500
	DefaultKMax = 500
	DefaultN    = 10
)

// New allocates an Accumulator sized for p.NumUsers users and p.NumItems
// items. FMax/KMax of zero are replaced with their documented defaults.
func New(p Params) *Accumulator {
	fMax := p.FMax
	if fMax == 0 {
		fMax = DefaultFMax
	}
	kMax := p.KMax
	if kMax == 0 {
		kMax = DefaultKMax
	}

	a := &Accumulator{
		fMax:      fMax,
		kMax:      kMax,
		userTotal: make([]uint64, p.NumUsers),
		userKept:  make([]uint32, p.NumUsers),
		itemCount: make([]uint32, p.NumItems),
		history:   make([][]uint32, p.NumUsers),
		C:         make([]Row, p.NumItems),
		RowSum:    make([]uint32, p.NumItems),
		Dirty:     make(map[uint32]struct{}),
		rng:       rand.New(rand.NewSource(p.Seed)),
	}
	for i := range a.C {
		a.C[i] = make(Row, 4)
	}
	return a
}

// History returns user u's sampled interaction history. It is exposed
// read-only for tests that check accumulator invariants.
func (a *Accumulator) History(u uint32) []uint32 {
	return a.history[u]
}

// UserKept returns the number of interactions admitted into user u's
// sampled history (distinct from UserTotal, which counts every interaction
// seen regardless of admission).
func (a *Accumulator) UserKept(u uint32) uint32 { return a.userKept[u] }

// UserTotal returns the raw number of interactions observed for user u.
func (a *Accumulator) UserTotal(u uint32) uint64 { return a.userTotal[u] }

// ItemCount returns the number of interactions admitted for item i.
func (a *Accumulator) ItemCount(i uint32) uint32 { return a.itemCount[i] }

// markDirty adds item to the set of rows requiring rescoring.
func (a *Accumulator) markDirty(item uint32) {
	a.Dirty[item] = struct{}{}
}

// bump adds delta to C[i][j], pruning the entry if it returns to zero so
// that empty rows do not accumulate stale zero-valued keys over a long run.
func (a *Accumulator) bump(i, j uint32, delta int32) {
	row := a.C[i]
	row[j] += delta
	if row[j] == 0 {
		delete(row, j)
	}
}

// Observe admits one (user, item) interaction into the accumulator: the
// item-frequency cap is applied first, then either the admission branch
// (history not yet full) or the reservoir-replacement branch (history full,
// replace uniformly at random with probability proportional to
// 1/user_total) runs.
func (a *Accumulator) Observe(user, item uint32) {
	a.userTotal[user]++

	if a.itemCount[item] >= a.fMax {
		return
	}

	h := a.history[user]
	numInHistory := len(h)

	if a.userKept[user] < a.kMax {
		for _, other := range h {
			a.bump(item, other, 1)
			a.bump(other, item, 1)
			a.RowSum[other]++
			a.markDirty(other)
		}

		a.RowSum[item] += uint32(numInHistory)
		a.NCooc += 2 * uint64(numInHistory)

		a.history[user] = append(h, item)
		a.userKept[user]++
		a.itemCount[item]++
		a.markDirty(item)
		return
	}

	r := a.rng.Intn(int(a.userTotal[user]))
	if r >= numInHistory {
		return
	}

	previous := h[r]

	for n, other := range h {
		if n == r {
			continue
		}
		a.bump(item, other, 1)
		a.bump(other, item, 1)
		a.bump(previous, other, -1)
		a.bump(other, previous, -1)
		a.markDirty(other)
	}

	a.RowSum[item] += uint32(numInHistory) - 1
	a.RowSum[previous] -= uint32(numInHistory) - 1

	h[r] = item
	a.itemCount[item]++
	a.itemCount[previous]--

	a.markDirty(previous)
	a.markDirty(item)
}

// Run consumes every pair yielded by next until it returns ok == false.
func (a *Accumulator) Run(next func() (user, item uint32, ok bool)) {
	for {
		u, i, ok := next()
		if !ok {
			return
		}
		a.Observe(u, i)
	}
}
