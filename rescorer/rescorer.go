// Package rescorer implements phase 3 of the indicator pipeline: for every
// item whose cooccurrence row changed during accumulation, score every
// co-occurring item with the LLR kernel and keep the top-n by score. Items
// are scored independently and in parallel, bounded by a worker pool.
package rescorer

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pc3/recoreco/cooccur"
	"github.com/pc3/recoreco/llr"
	"github.com/pc3/recoreco/topk"
)

// Params configures a rescoring pass.
type Params struct {
	N       int // indicators to keep per item
	Workers int // bounded worker pool size
}

// Rescore scores every item in dirty against the finalized cooccurrence
// state and returns one result set per item index in [0, len(C)). Items
// that never appear in dirty produce an empty set.
//
// dirty is drained into a slice sorted by item id before dispatch, purely so
// that the dispatch order itself is reproducible for inspection/logging —
// result[i] is written exactly once, by whichever worker is handed item i,
// so the result is identical for any dispatch order or worker count. Within a
// row, entries are scored in map order, which varies from run to run; the
// kept set still does not, because llr.ScoredItem orders by score and then
// by item id (see rescoreRow).
func Rescore(ctx context.Context, c []cooccur.Row, rowSum []uint32, nCooc uint64, dirty map[uint32]struct{}, logs llr.LogTable, p Params) ([]map[uint32]struct{}, error) {
	results := make([]map[uint32]struct{}, len(c))

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	items := make([]uint32, 0, len(dirty))
	for item := range dirty {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			results[item] = rescoreRow(item, c[item], rowSum, nCooc, logs, p.N)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		if results[i] == nil {
			results[i] = map[uint32]struct{}{}
		}
	}
	return results, nil
}

// rescoreRow scores one item's cooccurrence row: if the row already fits
// within the n-item budget, every co-occurring item (other than the item
// itself) is kept unscored; otherwise a bounded min-heap keeps the n
// highest-scoring entries.
func rescoreRow(item uint32, row cooccur.Row, rowSum []uint32, nCooc uint64, logs llr.LogTable, n int) map[uint32]struct{} {
	out := make(map[uint32]struct{}, minInt(len(row), n))

	effectiveLen := len(row)
	if _, ok := row[item]; ok {
		effectiveLen--
	}

	if effectiveLen <= n {
		for other := range row {
			if other != item {
				out[other] = struct{}{}
			}
		}
		return out
	}

	heap := topk.New(n)
	k12Base := uint64(rowSum[item])

	for other, count := range row {
		if other == item {
			continue
		}
		k11 := uint64(count)
		k12 := k12Base - k11
		k21 := uint64(rowSum[other]) - k11
		k22 := nCooc + k11 - k12 - k21

		score := llr.LLR(k11, k12, k21, k22, logs)
		heap.Offer(llr.ScoredItem{Item: other, Score: score})
	}

	for _, e := range heap.Items() {
		out[e.(llr.ScoredItem).Item] = struct{}{}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
