package translate

import (
	"golang.org/x/text/cases"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

type indexEntry struct {
	id  vocab.RecordID
	key string // case-folded word
}

// index is the flattened, read-only view over every head and link record.
type index struct {
	graph   *vocab.Graph
	entries []indexEntry
}

// buildIndex flattens the forest: all roots in load order followed by the
// links of each root. Records are deduplicated by identity, never by entry
// value, so equal entries under different heads stay distinct.
func buildIndex(g *vocab.Graph) *index {
	idx := &index{
		graph:   g,
		entries: make([]indexEntry, 0, g.Len()),
	}
	seen := make(map[vocab.RecordID]struct{}, g.Len())
	add := func(id vocab.RecordID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		idx.entries = append(idx.entries, indexEntry{id: id, key: fold(g.Entry(id).Word)})
	}

	roots := g.Roots()
	for _, r := range roots {
		add(r)
	}
	for _, r := range roots {
		for _, l := range g.Links(r) {
			add(l)
		}
	}
	return idx
}

// find returns every record whose word equals word case-insensitively,
// in index order.
func (x *index) find(word string) ([]vocab.RecordID, error) {
	key := fold(word)
	var matches []vocab.RecordID
	for _, e := range x.entries {
		if e.key == key {
			matches = append(matches, e.id)
		}
	}
	if len(matches) == 0 {
		return nil, &vocab.NotFoundError{Word: word}
	}
	return matches, nil
}

func (x *index) entriesOf(ids []vocab.RecordID) []vocab.Entry {
	out := make([]vocab.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, x.graph.Entry(id))
	}
	return out
}

// fold applies locale-independent full Unicode case folding, so "ß" and "ss"
// fold to the same key and "STRASSE" finds "Straße". Casers carry state, so
// each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
