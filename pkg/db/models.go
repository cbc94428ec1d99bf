package db

import "time"

// Record is a stored vocabulary record. ParentID is 0 for head records.
type Record struct {
	ID       int64
	Word     string
	Culture  string
	ParentID int64
	Position int
}

// Source is a provenance record for a glossed document.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	Meta       string
	AddedAt    time.Time
}

// Gloss is a word found in a source together with its translations.
// Translations holds a JSON array of {word, culture} objects.
type Gloss struct {
	ID              int64
	SourceID        int64
	Word            string
	SourceLanguage  string
	Translations    string
	FirstSentence   int
	OccurrenceCount int
}
