// Command recoreco-indicators computes the per-item indicator matrix from a
// tab-separated stream of user-item interactions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/pc3/recoreco/cooccur"
	"github.com/pc3/recoreco/dataset"
	"github.com/pc3/recoreco/indicators"
	"github.com/pc3/recoreco/recio"
	"github.com/pc3/recoreco/utils"
)

func main() {
	var (
		inputPath  string
		outputPath string
		n          int
		fMax       int
		kMax       int
		workers    int
	)

	flag.StringVar(&inputPath, "i", "", "input TSV path, one 'user\\titem' pair per line (required)")
	flag.StringVar(&outputPath, "o", "", "output path for JSON-lines indicators (default stdout)")
	flag.IntVar(&n, "n", cooccur.DefaultN, "indicators to keep per item")
	flag.IntVar(&fMax, "f-max", cooccur.DefaultFMax, "per-item interaction cap")
	flag.IntVar(&kMax, "k-max", cooccur.DefaultKMax, "per-user sampled-history cap")
	flag.IntVar(&workers, "workers", 0, "worker-pool size (default: number of CPUs)")
	flag.Parse()

	log := utils.NewLogger(true)

	if err := run(inputPath, outputPath, n, fMax, kMax, workers, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string, n, fMax, kMax, workers int, log *utils.Logger) error {
	if inputPath == "" {
		return errors.New("-i is required")
	}

	timer := utils.NewTimer()

	dict, err := dataset.From(inputPath)
	if err != nil {
		return errors.Wrap(err, "building identifier dictionary")
	}
	log.Info("interned %d users, %d items, %d interactions in %s",
		dict.NumUsers(), dict.NumItems(), dict.NumInteractions(), timer.Elapsed())

	pairs, err := recio.ReadInteractionPairs(inputPath)
	if err != nil {
		return errors.Wrap(err, "reading interactions")
	}
	encoded := recio.EncodeInteractions(pairs, dict)

	params := indicators.Params{
		NumUsers: dict.NumUsers(),
		NumItems: dict.NumItems(),
		N:        n,
		FMax:     uint32(fMax),
		KMax:     uint32(kMax),
		Workers:  workers,
	}

	computeTimer := utils.NewTimer()
	results, err := indicators.Compute(context.Background(), indicators.NewSliceSource(encoded), params)
	if err != nil {
		return errors.Wrap(err, "computing indicators")
	}
	log.Info("computed indicators for %d items in %s", len(results), computeTimer.Elapsed())

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
	if err := recio.WriteIndicatorsJSON(out, results, renaming); err != nil {
		return errors.Wrap(err, "writing indicators")
	}

	return nil
}
