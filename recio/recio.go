// Package recio implements the interaction-file and result-serialization
// collaborators: tab-separated interaction parsing and JSON-lines
// indicator emission and reading.
package recio

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/pc3/recoreco/dataset"
)

// ReadInteractionPairs reads a tab-separated, header-less interaction file
// (one "user\titem" pair per line) and returns the raw string pairs in file
// order, following the format original_source/src/io.rs documents.
func ReadInteractionPairs(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening interaction file %q", path)
	}
	defer f.Close()

	var pairs [][2]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '\t')
		if idx < 0 {
			continue
		}
		pairs = append(pairs, [2]string{line[:idx], line[idx+1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading interaction file %q", path)
	}
	return pairs, nil
}

// EncodeInteractions maps raw string pairs to the dense (user, item)
// integer pairs the accumulator consumes, skipping any pair whose user or
// item name the dictionary never interned.
func EncodeInteractions(pairs [][2]string, dict *dataset.Dictionary) [][2]uint32 {
	out := make([][2]uint32, 0, len(pairs))
	for _, p := range pairs {
		u, ok := dict.UserIndex(p[0])
		if !ok {
			continue
		}
		i, ok := dict.ItemIndex(p[1])
		if !ok {
			continue
		}
		out = append(out, [2]uint32{u, i})
	}
	return out
}

// ReadHistories builds each user's full (unsampled) interaction history from
// an interaction file, for use by the recommend package.
func ReadHistories(path string, dict *dataset.Dictionary) ([][]uint32, error) {
	pairs, err := ReadInteractionPairs(path)
	if err != nil {
		return nil, err
	}

	histories := make([][]uint32, dict.NumUsers())
	seen := make([]map[uint32]struct{}, dict.NumUsers())
	for _, p := range pairs {
		u, ok := dict.UserIndex(p[0])
		if !ok {
			continue
		}
		i, ok := dict.ItemIndex(p[1])
		if !ok {
			continue
		}
		if seen[u] == nil {
			seen[u] = make(map[uint32]struct{})
		}
		if _, dup := seen[u][i]; dup {
			continue
		}
		seen[u][i] = struct{}{}
		histories[u] = append(histories[u], i)
	}
	return histories, nil
}

// indicatorLine mirrors original_source/src/io.rs's Indicators struct;
// field names are load-bearing for the JSON wire contract.
type indicatorLine struct {
	ForItem        string   `json:"for_item"`
	IndicatedItems []string `json:"indicated_items"`
}

// WriteIndicatorsJSON writes one JSON object per line, in item-index order,
// translating indices back to names via renaming. Unseen items (empty
// result sets) are still emitted, with an empty indicated_items array.
func WriteIndicatorsJSON(w io.Writer, results []map[uint32]struct{}, renaming *dataset.Renaming) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for idx, set := range results {
		forItem, ok := renaming.ItemName(uint32(idx))
		if !ok {
			continue
		}
		names := make([]string, 0, len(set))
		for item := range set {
			if name, ok := renaming.ItemName(item); ok {
				names = append(names, name)
			}
		}
		// Contractually unordered; sorted only so that two runs over the
		// same input produce byte-identical output lines.
		names = sortedNames(names)
		if err := enc.Encode(indicatorLine{ForItem: forItem, IndicatedItems: names}); err != nil {
			return errors.Wrap(err, "encoding indicator line")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing indicator output")
}

// IndicatorSet is the deserialized form of one line written by
// WriteIndicatorsJSON, used by cmd/recoreco-recommend to read the indicator
// matrix back in.
type IndicatorSet struct {
	ForItem        string   `json:"for_item"`
	IndicatedItems []string `json:"indicated_items"`
}

// ReadIndicatorsJSON reads back the JSON-lines file WriteIndicatorsJSON
// produces.
func ReadIndicatorsJSON(path string) ([]IndicatorSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening indicators file %q", path)
	}
	defer f.Close()

	var out []IndicatorSet
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var line IndicatorSet
		if err := dec.Decode(&line); err != nil {
			return nil, errors.Wrapf(err, "decoding indicators file %q", path)
		}
		out = append(out, line)
	}
	return out, nil
}

// sortedNames returns a sorted copy of names. WriteIndicatorsJSON uses it so
// its output is stable despite the indicator set's contractually unordered
// nature.
func sortedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
