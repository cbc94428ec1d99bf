package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/japaniel/lexilookup/pkg/db"
	"github.com/japaniel/lexilookup/pkg/vocab"
)

// ImportGraph replaces the contents of the records table with g in one
// transaction and returns the number of rows written.
func ImportGraph(ctx context.Context, conn *sql.DB, g *vocab.Graph) (int, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := db.DeleteRecords(tx); err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}

	written := 0
	for _, root := range g.Roots() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		head := g.Entry(root)
		parentID, err := db.InsertRecord(tx, head.Word, head.Culture, 0, 0)
		if err != nil {
			return 0, err
		}
		written++
		for pos, link := range g.Links(root) {
			e := g.Entry(link)
			if _, err := db.InsertRecord(tx, e.Word, e.Culture, parentID, pos); err != nil {
				return 0, err
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	committed = true
	return written, nil
}
