// Package llr implements the G²/log-likelihood-ratio significance test used
// to score item cooccurrences, following Ted Dunning's formulation of the
// test for 2x2 contingency tables.
package llr

import (
	"math"

	"github.com/pc3/recoreco/topk"
)

// LogTable is a precomputed table of ln(x) values, with logs[0] == 0. Sizing
// it to the largest cell-sum that can occur in a pass (f_max*k_max) lets the
// hot scoring loop avoid a math.Log call per cooccurrence.
type LogTable []float64

// NewLogTable builds a table of natural logarithms for 0..maxArg-1, with
// ln(0) defined as 0 so that the H(x) = x*ln(x) identity holds at x=0
// without a branch in the caller.
func NewLogTable(maxArg int) LogTable {
	table := make(LogTable, maxArg)
	for i := 1; i < maxArg; i++ {
		table[i] = math.Log(float64(i))
	}
	return table
}

// at returns ln(x), falling back to math.Log for values outside the
// precomputed range.
func (t LogTable) at(x uint64) float64 {
	if x < uint64(len(t)) {
		return t[x]
	}
	return math.Log(float64(x))
}

// entropy computes H(x) = x*ln(x) with H(0) = 0.
func entropy(x uint64, logX float64) float64 {
	if x == 0 {
		return 0
	}
	return float64(x) * logX
}

// LLR computes the G² score for the 2x2 contingency table
//
//	           item B present   item B absent
//	item A present    k11             k12
//	item A absent     k21             k22
//
// Negative round-off can push the raw value marginally below zero; the
// result is clamped at zero since a negative LLR has no meaning.
func LLR(k11, k12, k21, k22 uint64, logs LogTable) float64 {
	total := k11 + k12 + k21 + k22

	rowA := k11 + k12
	rowB := k21 + k22
	colA := k11 + k21
	colB := k12 + k22

	xlxAll := entropy(total, logs.at(total))

	rowEntropy := xlxAll - entropy(rowA, logs.at(rowA)) - entropy(rowB, logs.at(rowB))
	colEntropy := xlxAll - entropy(colA, logs.at(colA)) - entropy(colB, logs.at(colB))
	matrixEntropy := xlxAll -
		entropy(k11, logs.at(k11)) -
		entropy(k12, logs.at(k12)) -
		entropy(k21, logs.at(k21)) -
		entropy(k22, logs.at(k22))

	score := 2.0 * (rowEntropy + colEntropy - matrixEntropy)
	if score < 0 {
		return 0
	}
	return score
}

// ScoredItem pairs an item id with its LLR score against some reference
// item. It implements topk.Scored: ascending by score, so that the root of
// a min-heap of ScoredItems is always the worst kept entry.
type ScoredItem struct {
	Item  uint32
	Score float64
}

// LessThan reports whether a ranks worse than other: lower score first,
// then — when scores tie — the higher item id loses. The id tiebreak gives
// the heap a strict total order so the kept top-k set never depends on the
// order items were offered in, which matters because a cooccurrence row's
// iteration order (a Go map) is not stable across runs. Any comparison
// involving NaN (which partial_cmp treats as "neither less nor greater")
// resolves to false, so a NaN score never displaces an incumbent heap entry.
func (a ScoredItem) LessThan(other topk.Scored) bool {
	b, ok := other.(ScoredItem)
	if !ok {
		return false
	}
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Item > b.Item
}
