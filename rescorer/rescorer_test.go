package rescorer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pc3/recoreco/cooccur"
	"github.com/pc3/recoreco/llr"
	"github.com/pc3/recoreco/rescorer"
)

func buildFromStream(t *testing.T, numItems int, pairs [][2]uint32, fMax, kMax uint32) *cooccur.Accumulator {
	t.Helper()
	a := cooccur.New(cooccur.Params{NumUsers: numItems, NumItems: numItems, FMax: fMax, KMax: kMax})
	for _, p := range pairs {
		a.Observe(p[0], p[1])
	}
	return a
}

func TestRescoreTinyDeterministic(t *testing.T) {
	const (
		apple = uint32(iota)
		dog
		pony
		bike
	)
	const (
		alice = uint32(iota)
		bob
		charles
	)
	a := buildFromStream(t, 4, [][2]uint32{
		{alice, apple}, {alice, dog}, {alice, pony},
		{bob, apple}, {bob, pony},
		{charles, pony}, {charles, bike},
	}, 500, 500)

	logs := llr.NewLogTable(500*500 + 500)
	results, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 10, Workers: 4})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.Contains(t, results[apple], dog)
	require.Contains(t, results[apple], pony)
	require.NotContains(t, results[apple], apple)

	for i, set := range results {
		require.LessOrEqual(t, len(set), 10)
		require.NotContains(t, set, uint32(i))
	}
}

func TestRescoreSaturationKeepsHighestScoring(t *testing.T) {
	// Item 0 co-occurs with items 1..50 at increasing frequency, so higher
	// indices should score higher and only the top 5 should survive.
	const numItems = 51
	a := cooccur.New(cooccur.Params{NumUsers: 200, NumItems: numItems, FMax: 100000, KMax: 100000})
	for rep := 0; rep < 200; rep++ {
		for i := uint32(1); i < numItems; i++ {
			if uint32(rep) < i*2 {
				a.Observe(uint32(rep%5000), 0)
				a.Observe(uint32(rep%5000), i)
			}
		}
	}

	logs := llr.NewLogTable(200*200 + 200)
	results, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 5, Workers: 2})
	require.NoError(t, err)
	require.Len(t, results[0], 5)
	for item := range results[0] {
		require.GreaterOrEqual(t, item, uint32(46))
	}
}

func TestRescoreEmptyDirtyYieldsAllEmptySets(t *testing.T) {
	a := cooccur.New(cooccur.Params{NumUsers: 5, NumItems: 5})
	logs := llr.NewLogTable(10)
	results, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 10, Workers: 4})
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, set := range results {
		require.Empty(t, set)
	}
}

func TestRescoreTiedScoresAreDeterministicAcrossRepeatedRuns(t *testing.T) {
	// Item 0 co-occurs exactly once with each of items 1..10, each via its
	// own dedicated user (user i sees item 0 then item i), so every
	// candidate has the same k11/k12/k21/k22 shape and therefore the same
	// LLR score — a tie at the n=3 boundary that only the item-id tiebreak
	// in llr.ScoredItem.LessThan can resolve consistently. Rescore ranges
	// over the row map itself, whose iteration order Go intentionally
	// randomizes per range statement, so running this many times is what
	// would have caught the non-determinism a pure map-order fix misses.
	const numItems = 11
	pairs := make([][2]uint32, 0, 2*(numItems-1))
	for i := uint32(1); i < numItems; i++ {
		pairs = append(pairs, [2]uint32{i, 0}, [2]uint32{i, i})
	}
	a := buildFromStream(t, numItems, pairs, 500, 500)
	logs := llr.NewLogTable(5000)

	var first map[uint32]struct{}
	for i := 0; i < 50; i++ {
		results, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 3, Workers: 4})
		require.NoError(t, err)
		require.Len(t, results[0], 3)
		if first == nil {
			first = results[0]
			continue
		}
		require.Equal(t, first, results[0], "tied top-k selection changed across runs")
	}

	// Lower item ids win ties (llr.ScoredItem.LessThan), so 1, 2, 3 survive.
	require.Contains(t, first, uint32(1))
	require.Contains(t, first, uint32(2))
	require.Contains(t, first, uint32(3))
}

func TestRescoreDeterministicAcrossWorkerCounts(t *testing.T) {
	a := buildFromStream(t, 6, [][2]uint32{
		{0, 0}, {0, 1}, {0, 2}, {0, 3},
		{1, 0}, {1, 1}, {1, 4},
		{2, 0}, {2, 2}, {2, 5},
	}, 500, 500)

	logs := llr.NewLogTable(5000)

	r1, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 10, Workers: 1})
	require.NoError(t, err)
	r2, err := rescorer.Rescore(context.Background(), a.C, a.RowSum, a.NCooc, a.Dirty, logs, rescorer.Params{N: 10, Workers: 8})
	require.NoError(t, err)

	require.Equal(t, len(r1), len(r2))
	for i := range r1 {
		require.Equal(t, r1[i], r2[i])
	}
}
