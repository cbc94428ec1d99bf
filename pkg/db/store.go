package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// InsertRecord stores a vocabulary record and returns its id.
// parentID 0 stores a head record; otherwise the record is a link at position.
func InsertRecord(db DBExecutor, word, culture string, parentID int64, position int) (int64, error) {
	word = strings.TrimSpace(word)
	culture = strings.TrimSpace(culture)
	if word == "" || culture == "" {
		return 0, fmt.Errorf("word and culture must be non-empty")
	}
	if parentID < 0 {
		return 0, fmt.Errorf("parentID must not be negative")
	}

	res, err := db.Exec(
		`INSERT INTO records (word, culture, parent_id, position) VALUES (?, ?, ?, ?)`,
		word, culture, nullableInt64(parentID), position,
	)
	if err != nil {
		return 0, fmt.Errorf("insert record %q: %w", word, err)
	}
	return res.LastInsertId()
}

// ListRecords returns head records in id order followed by links ordered by
// parent and position.
func ListRecords(db DBExecutor) ([]Record, error) {
	rows, err := db.Query(`SELECT id, word, culture, parent_id, position FROM records
		ORDER BY parent_id IS NOT NULL, parent_id, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var parent sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Word, &r.Culture, &parent, &r.Position); err != nil {
			return nil, err
		}
		if parent.Valid {
			r.ParentID = parent.Int64
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRecords removes every vocabulary record.
func DeleteRecords(db DBExecutor) error {
	_, err := db.Exec(`DELETE FROM records`)
	return err
}

// CountRecords returns the number of stored vocabulary records.
func CountRecords(db DBExecutor) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url, meta string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, meta) VALUES (?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, meta,
		)
		if err != nil {
			// If another concurrent transaction inserted the same source, retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// SaveGloss records a glossed word for a source. Saving the same word again
// adds to its occurrence count, keeps the earliest sentence index and
// replaces the translations.
func SaveGloss(db DBExecutor, sourceID int64, sentence int, word, sourceLanguage, translations string, count int) error {
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("word must be non-empty")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if translations == "" {
		translations = "[]"
	}

	_, err := db.Exec(`INSERT INTO glosses (source_id, word, source_language, translations, first_sentence, occurrence_count)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_id, word) DO UPDATE SET
	  occurrence_count = glosses.occurrence_count + excluded.occurrence_count,
	  first_sentence = MIN(glosses.first_sentence, excluded.first_sentence),
	  source_language = COALESCE(NULLIF(excluded.source_language, ''), glosses.source_language),
	  translations = excluded.translations`,
		sourceID, word, sourceLanguage, translations, sentence, count)
	return err
}

// DeleteGlossesBySource removes the glosses stored for a source.
func DeleteGlossesBySource(db DBExecutor, sourceID int64) error {
	_, err := db.Exec(`DELETE FROM glosses WHERE source_id = ?`, sourceID)
	return err
}

// GetGlossesBySource returns the glosses of a source ordered by first appearance.
func GetGlossesBySource(db DBExecutor, sourceID int64) ([]Gloss, error) {
	rows, err := db.Query(`SELECT id, source_id, word, source_language, translations, first_sentence, occurrence_count
		FROM glosses WHERE source_id = ? ORDER BY first_sentence, id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Gloss
	for rows.Next() {
		var g Gloss
		var lang sql.NullString
		if err := rows.Scan(&g.ID, &g.SourceID, &g.Word, &lang, &g.Translations, &g.FirstSentence, &g.OccurrenceCount); err != nil {
			return nil, err
		}
		if lang.Valid {
			g.SourceLanguage = lang.String
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullableInt64 returns nil for 0 (meaning no reference) else the value.
func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
