package vocab

import "strings"

// Entry is a word in a given culture (locale tag such as "en-US").
// The word keeps its original casing for display; lookups compare it
// case-insensitively.
type Entry struct {
	Word    string
	Culture string
}

// NewEntry builds an Entry from raw source attributes. It reports false when
// either the word or the culture is blank; such records are skipped by loaders.
func NewEntry(word, culture string) (Entry, bool) {
	word = strings.TrimSpace(word)
	culture = strings.TrimSpace(culture)
	if word == "" || culture == "" {
		return Entry{}, false
	}
	return Entry{Word: word, Culture: culture}, true
}

func (e Entry) String() string {
	return e.Word + " (" + e.Culture + ")"
}
