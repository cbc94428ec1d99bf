package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS records (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	word      TEXT    NOT NULL,
	culture   TEXT    NOT NULL,
	parent_id INTEGER REFERENCES records(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent_id, position);

CREATE TABLE IF NOT EXISTS sources (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type TEXT NOT NULL,
	title       TEXT,
	author      TEXT,
	website     TEXT,
	url         TEXT,
	meta        TEXT,
	added_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sources_identity
	ON sources(IFNULL(url, ''), IFNULL(title, ''), IFNULL(author, ''));

CREATE TABLE IF NOT EXISTS glosses (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id        INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	word             TEXT    NOT NULL,
	source_language  TEXT,
	translations     TEXT    NOT NULL DEFAULT '[]',
	first_sentence   INTEGER NOT NULL DEFAULT 0,
	occurrence_count INTEGER NOT NULL DEFAULT 1,
	UNIQUE(source_id, word)
);
`

// InitDB runs migrations on the given DB connection.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
