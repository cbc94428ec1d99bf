package translate

import (
	"context"
	"fmt"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

// LookupResult combines the translations and synonyms of a word.
type LookupResult struct {
	Word           string
	SourceLanguage *string
	Translations   []vocab.Entry
	Synonyms       []vocab.Entry
}

// Lookup translates word and then collects its synonyms through svc.
// Not-found errors from the translation step are returned unwrapped.
func Lookup(ctx context.Context, svc Service, word string) (*LookupResult, error) {
	tr, err := svc.Translate(ctx, word)
	if err != nil {
		return nil, err
	}
	syn, err := svc.FindSynonyms(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("synonyms for %q: %w", word, err)
	}
	return &LookupResult{
		Word:           word,
		SourceLanguage: tr.SourceLanguage,
		Translations:   tr.Results,
		Synonyms:       syn.Results,
	}, nil
}
