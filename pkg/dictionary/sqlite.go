package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/japaniel/lexilookup/pkg/db"
	"github.com/japaniel/lexilookup/pkg/vocab"
)

// SQLLoader reads a vocabulary graph from the records table of a SQLite file.
type SQLLoader struct {
	Path string
}

// Load opens the database read-only and rebuilds the graph.
func (l SQLLoader) Load(ctx context.Context) (*vocab.Graph, error) {
	if _, err := os.Stat(l.Path); err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", l.Path, vocab.ErrSourceUnavailable, err)
	}
	conn, err := sql.Open("sqlite3", "file:"+l.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", l.Path, vocab.ErrSourceUnavailable, err)
	}
	defer conn.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadGraph(conn)
}

// LoadGraph rebuilds a graph from the records table reachable through q.
func LoadGraph(q db.DBExecutor) (*vocab.Graph, error) {
	records, err := db.ListRecords(q)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, fmt.Errorf("%w: %v", vocab.ErrMalformedSource, err)
		}
		return nil, fmt.Errorf("%w: %v", vocab.ErrSourceUnavailable, err)
	}

	g := vocab.NewGraph()
	ids := make(map[int64]vocab.RecordID, len(records))
	for _, r := range records {
		e, ok := vocab.NewEntry(r.Word, r.Culture)
		if !ok {
			return nil, fmt.Errorf("%w: record %d has an empty word or culture", vocab.ErrMalformedSource, r.ID)
		}
		if r.ParentID == 0 {
			ids[r.ID] = g.AddRoot(e)
			continue
		}
		parent, ok := ids[r.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: record %d links to %d which is not a head record", vocab.ErrMalformedSource, r.ID, r.ParentID)
		}
		if _, err := g.AddLink(parent, e); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", vocab.ErrMalformedSource, r.ID, err)
		}
	}
	return g, nil
}
