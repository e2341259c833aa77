// Command recoreco-recommend runs a simple history-based recommender over a
// precomputed indicator matrix, grounded in
// original_source/src/bin/batch_recommend.rs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/pc3/recoreco/dataset"
	"github.com/pc3/recoreco/recio"
	"github.com/pc3/recoreco/recommend"
	"github.com/pc3/recoreco/utils"
)

func main() {
	var (
		historiesPath  string
		indicatorsPath string
		outputPath     string
		n              int
	)

	flag.StringVar(&historiesPath, "histories", "", "interaction TSV path used as each user's history (required)")
	flag.StringVar(&indicatorsPath, "indicators", "", "JSON-lines indicators file produced by recoreco-indicators (required)")
	flag.StringVar(&outputPath, "o", "", "output path for JSON-lines recommendations (default stdout)")
	flag.IntVar(&n, "n", 10, "recommendations to keep per user")
	flag.Parse()

	log := utils.NewLogger(true)

	if err := run(historiesPath, indicatorsPath, outputPath, n, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type recommendationLine struct {
	User             string   `json:"user"`
	RecommendedItems []string `json:"recommended_items"`
}

func run(historiesPath, indicatorsPath, outputPath string, n int, log *utils.Logger) error {
	if historiesPath == "" || indicatorsPath == "" {
		return errors.New("-histories and -indicators are both required")
	}

	timer := utils.NewTimer()

	dict, err := dataset.From(historiesPath)
	if err != nil {
		return errors.Wrap(err, "building identifier dictionary")
	}

	histories, err := recio.ReadHistories(historiesPath, dict)
	if err != nil {
		return errors.Wrap(err, "reading histories")
	}

	lines, err := recio.ReadIndicatorsJSON(indicatorsPath)
	if err != nil {
		return errors.Wrap(err, "reading indicators")
	}

	indicatorSets := make([]map[uint32]struct{}, dict.NumItems())
	for _, line := range lines {
		forItem, ok := dict.ItemIndex(line.ForItem)
		if !ok {
			continue
		}
		set := make(map[uint32]struct{}, len(line.IndicatedItems))
		for _, name := range line.IndicatedItems {
			if idx, ok := dict.ItemIndex(name); ok {
				set[idx] = struct{}{}
			}
		}
		indicatorSets[forItem] = set
	}

	recommendations := recommend.Recommend(histories, indicatorSets, n)
	log.Info("computed recommendations for %d users in %s", len(recommendations), timer.Elapsed())

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrapf(err, "creating output file %q", outputPath)
		}
		defer f.Close()
		out = f
	}

	renaming := dict.Renaming()
	enc := json.NewEncoder(out)
	for userIdx, items := range recommendations {
		userName, ok := renaming.UserName(uint32(userIdx))
		if !ok || len(items) == 0 {
			continue
		}
		names := make([]string, 0, len(items))
		for _, item := range items {
			if name, ok := renaming.ItemName(item); ok {
				names = append(names, name)
			}
		}
		if err := enc.Encode(recommendationLine{User: userName, RecommendedItems: names}); err != nil {
			return errors.Wrap(err, "encoding recommendation line")
		}
	}

	return nil
}
