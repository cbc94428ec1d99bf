package vocab

import "fmt"

// RecordID is a stable handle to a record inside a Graph.
type RecordID int

// NoRecord is the parent of every root record.
const NoRecord RecordID = -1

type record struct {
	entry  Entry
	parent RecordID
	links  []RecordID
}

// Graph holds a vocabulary forest: head records (roots) and their translation
// links. Records live in a single arena and refer to each other by RecordID,
// so a link and its back-reference are always set together by AddLink.
//
// A Graph is built by a single loader goroutine and must not be mutated once
// it has been handed to a lookup engine.
type Graph struct {
	records []record
	roots   []RecordID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddRoot appends a head record.
func (g *Graph) AddRoot(e Entry) RecordID {
	id := RecordID(len(g.records))
	g.records = append(g.records, record{entry: e, parent: NoRecord})
	g.roots = append(g.roots, id)
	return id
}

// AddLink appends a translation link under parent. The forest is two levels
// deep, so parent must be a root.
func (g *Graph) AddLink(parent RecordID, e Entry) (RecordID, error) {
	if !g.valid(parent) {
		return NoRecord, fmt.Errorf("vocab: unknown parent record %d", parent)
	}
	if g.records[parent].parent != NoRecord {
		return NoRecord, fmt.Errorf("vocab: link under %s: %w", g.records[parent].entry, ErrDepth)
	}
	id := RecordID(len(g.records))
	g.records = append(g.records, record{entry: e, parent: parent})
	g.records[parent].links = append(g.records[parent].links, id)
	return id, nil
}

// Roots returns the head records in load order.
func (g *Graph) Roots() []RecordID {
	out := make([]RecordID, len(g.roots))
	copy(out, g.roots)
	return out
}

// Entry returns the entry of record id.
func (g *Graph) Entry(id RecordID) Entry {
	return g.records[id].entry
}

// Parent returns the owning head of id, or false for a root.
func (g *Graph) Parent(id RecordID) (RecordID, bool) {
	p := g.records[id].parent
	return p, p != NoRecord
}

// IsRoot reports whether id is a head record.
func (g *Graph) IsRoot(id RecordID) bool {
	return g.records[id].parent == NoRecord
}

// Links returns the translation links of id in source order.
// The returned slice must not be modified.
func (g *Graph) Links(id RecordID) []RecordID {
	return g.records[id].links
}

// Len returns the number of records (roots and links).
func (g *Graph) Len() int {
	return len(g.records)
}

func (g *Graph) valid(id RecordID) bool {
	return id >= 0 && int(id) < len(g.records)
}
