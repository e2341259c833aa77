// Package dataset implements identifier interning, kept out of the core's
// scope: bidirectional string<->uint32 dictionaries for users and items,
// built from a single pass over a tab-separated interaction file.
package dataset

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Dictionary interns user and item names into dense indices in first-seen
// order, matching original_source/src/stats.rs's DataDictionary.
type Dictionary struct {
	userIndex map[string]uint32
	itemIndex map[string]uint32
	numPairs  uint64
}

// NumUsers reports the number of distinct users interned.
func (d *Dictionary) NumUsers() int { return len(d.userIndex) }

// NumItems reports the number of distinct items interned.
func (d *Dictionary) NumItems() int { return len(d.itemIndex) }

// NumInteractions reports the number of interaction lines consumed while
// building this dictionary.
func (d *Dictionary) NumInteractions() uint64 { return d.numPairs }

// UserIndex looks up the dense index assigned to a user name.
func (d *Dictionary) UserIndex(name string) (uint32, bool) {
	idx, ok := d.userIndex[name]
	return idx, ok
}

// ItemIndex looks up the dense index assigned to an item name.
func (d *Dictionary) ItemIndex(name string) (uint32, bool) {
	idx, ok := d.itemIndex[name]
	return idx, ok
}

// From builds a Dictionary from a tab-separated interaction file with no
// header, one "user\titem" pair per line — the same format read throughout
// original_source/src/utils.rs.
func From(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening interaction file %q", path)
	}
	defer f.Close()

	d := &Dictionary{
		userIndex: make(map[string]uint32, 128),
		itemIndex: make(map[string]uint32, 128),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var nextUser, nextItem uint32
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		user, item, ok := splitInteraction(line)
		if !ok {
			continue
		}

		if _, seen := d.userIndex[user]; !seen {
			d.userIndex[user] = nextUser
			nextUser++
		}
		if _, seen := d.itemIndex[item]; !seen {
			d.itemIndex[item] = nextItem
			nextItem++
		}
		d.numPairs++
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "reading interaction file %q", path)
	}

	return d, nil
}

func splitInteraction(line string) (user, item string, ok bool) {
	idx := strings.IndexByte(line, '\t')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+1:], true
}

// Renaming is the inverse of a Dictionary — dense index back to name — used
// only after Compute returns, to label results for output.
type Renaming struct {
	userNames []string
	itemNames []string
}

// Renaming produces the inverse mapping. d is not modified and remains
// usable afterward.
func (d *Dictionary) Renaming() *Renaming {
	r := &Renaming{
		userNames: make([]string, len(d.userIndex)),
		itemNames: make([]string, len(d.itemIndex)),
	}
	for name, idx := range d.userIndex {
		r.userNames[idx] = name
	}
	for name, idx := range d.itemIndex {
		r.itemNames[idx] = name
	}
	return r
}

// UserName returns the original name for a user's dense index.
func (r *Renaming) UserName(idx uint32) (string, bool) {
	if int(idx) >= len(r.userNames) {
		return "", false
	}
	return r.userNames[idx], true
}

// ItemName returns the original name for an item's dense index.
func (r *Renaming) ItemName(idx uint32) (string, bool) {
	if int(idx) >= len(r.itemNames) {
		return "", false
	}
	return r.itemNames[idx], true
}
