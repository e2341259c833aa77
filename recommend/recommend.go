// Package recommend implements a trivial history-based recommender: a
// count-and-top-k aggregation over an already-computed indicator matrix. It
// performs no statistical scoring of its own — every candidate's weight is
// simply how many items in the user's history indicate it.
package recommend

import (
	"github.com/pc3/recoreco/topk"
)

// countedItem implements topk.Scored, ranking candidates by raw indicator
// hit count. Ties are broken by the lower item id winning, mirroring
// original_source/src/recommend.rs's CountedItem (`self.item.cmp(&other.item).reverse()`
// is folded into the heap so that, for equal counts, a higher item id is
// "less than" a lower one and therefore evicted first).
type countedItem struct {
	item  uint32
	count uint32
}

func (a countedItem) LessThan(other topk.Scored) bool {
	b, ok := other.(countedItem)
	if !ok {
		return false
	}
	if a.count != b.count {
		return a.count < b.count
	}
	return a.item > b.item
}

// Recommend computes, for every user, the topN items most frequently
// indicated by items already in that user's history, excluding items the
// user has already seen. histories[u] is u's full (unsampled) interaction
// set; indicatorSets[i] is the precomputed indicator set for item i.
//
// The returned recommendations are ordered by descending hit count (unlike
// the core's indicator sets, which are contractually unordered — this
// recommender is a different, simpler statistic, so ranking its own output
// is fine).
func Recommend(histories [][]uint32, indicatorSets []map[uint32]struct{}, topN int) [][]uint32 {
	recommendations := make([][]uint32, len(histories))

	for u, history := range histories {
		if len(history) == 0 {
			continue
		}

		inHistory := make(map[uint32]struct{}, len(history))
		for _, item := range history {
			inHistory[item] = struct{}{}
		}

		counts := make(map[uint32]uint32, 8)
		for _, item := range history {
			if int(item) >= len(indicatorSets) {
				continue
			}
			for other := range indicatorSets[item] {
				if _, seen := inHistory[other]; seen {
					continue
				}
				counts[other]++
			}
		}

		heap := topk.New(topN)
		for item, count := range counts {
			heap.Offer(countedItem{item: item, count: count})
		}

		kept := heap.Items()
		ranked := make([]countedItem, len(kept))
		for i, e := range kept {
			ranked[i] = e.(countedItem)
		}
		sortDescending(ranked)

		out := make([]uint32, len(ranked))
		for i, ci := range ranked {
			out[i] = ci.item
		}
		recommendations[u] = out
	}

	return recommendations
}

// sortDescending orders ranked items by count descending, item id ascending
// on ties — a simple insertion sort since topN (and therefore the slice
// length) is always small.
func sortDescending(items []countedItem) {
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && less(items[j-1], items[j]) {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
}

// less reports whether a should sort after b (i.e. a ranks worse than b):
// lower count, or equal count and higher item id.
func less(a, b countedItem) bool {
	if a.count != b.count {
		return a.count < b.count
	}
	return a.item > b.item
}
