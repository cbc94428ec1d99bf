package translate

import (
	"context"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

// Service is the query contract shared by the offline engine and the online
// backend. Callers pick one implementation at configuration time.
type Service interface {
	Initialize(ctx context.Context) error
	Translate(ctx context.Context, word string) (*Result, error)
	FindSynonyms(ctx context.Context, word string) (*Result, error)
	FindAutocompleteSuggestions(ctx context.Context, prefix string) []string
}

// Loader produces the vocabulary forest. Roots returned by Load have no parent.
// Failures wrap vocab.ErrSourceUnavailable or vocab.ErrMalformedSource.
type Loader interface {
	Load(ctx context.Context) (*vocab.Graph, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*vocab.Graph, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*vocab.Graph, error) { return f(ctx) }

// Result is the outcome of a translate or synonym query.
type Result struct {
	// SourceLanguage is nil when the query has no single source language
	// (synonym results).
	SourceLanguage *string
	Results        []vocab.Entry
}

// Language returns the source language and whether one is set.
func (r *Result) Language() (string, bool) {
	if r == nil || r.SourceLanguage == nil {
		return "", false
	}
	return *r.SourceLanguage, true
}

// Words returns the display words of the result entries.
func (r *Result) Words() []string {
	out := make([]string, 0, len(r.Results))
	for _, e := range r.Results {
		out = append(out, e.Word)
	}
	return out
}

func strPtr(s string) *string { return &s }

var (
	_ Service = (*Engine)(nil)
	_ Service = (*Online)(nil)
)
