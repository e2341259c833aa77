package recio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pc3/recoreco/dataset"
	"github.com/pc3/recoreco/recio"
)

func writeFixture(t *testing.T, lines string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "interactions.tsv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestReadInteractionPairs(t *testing.T) {
	path := writeFixture(t, "alice\tapple\nbob\tpony\n")
	pairs, err := recio.ReadInteractionPairs(path)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"alice", "apple"}, {"bob", "pony"}}, pairs)
}

func TestEncodeInteractionsSkipsUnknownNames(t *testing.T) {
	path := writeFixture(t, "alice\tapple\nbob\tpony\n")
	dict, err := dataset.From(path)
	require.NoError(t, err)

	pairs := [][2]string{{"alice", "apple"}, {"nobody", "apple"}, {"alice", "nothing"}}
	encoded := recio.EncodeInteractions(pairs, dict)
	require.Len(t, encoded, 1)
}

func TestReadHistoriesDeduplicatesPerUser(t *testing.T) {
	path := writeFixture(t, "alice\tapple\nalice\tapple\nalice\tdog\n")
	dict, err := dataset.From(path)
	require.NoError(t, err)

	histories, err := recio.ReadHistories(path, dict)
	require.NoError(t, err)

	aliceIdx, _ := dict.UserIndex("alice")
	require.Len(t, histories[aliceIdx], 2)
}

func TestWriteAndReadIndicatorsJSON(t *testing.T) {
	path := writeFixture(t, "alice\tapple\nalice\tdog\nbob\tapple\nbob\tpony\n")
	dict, err := dataset.From(path)
	require.NoError(t, err)
	renaming := dict.Renaming()

	appleIdx, _ := dict.ItemIndex("apple")
	dogIdx, _ := dict.ItemIndex("dog")
	ponyIdx, _ := dict.ItemIndex("pony")

	results := make([]map[uint32]struct{}, dict.NumItems())
	results[appleIdx] = map[uint32]struct{}{dogIdx: {}, ponyIdx: {}}
	results[dogIdx] = map[uint32]struct{}{}
	results[ponyIdx] = map[uint32]struct{}{}

	var buf bytes.Buffer
	require.NoError(t, recio.WriteIndicatorsJSON(&buf, results, renaming))

	out := writeFixture(t, "")
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o644))

	lines, err := recio.ReadIndicatorsJSON(out)
	require.NoError(t, err)
	require.Len(t, lines, dict.NumItems())

	var appleLine *recio.IndicatorSet
	for i := range lines {
		if lines[i].ForItem == "apple" {
			appleLine = &lines[i]
		}
	}
	require.NotNil(t, appleLine)
	require.ElementsMatch(t, []string{"dog", "pony"}, appleLine.IndicatedItems)
}
