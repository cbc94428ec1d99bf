package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

// State describes the engine's initialization progress.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrNotReady is returned by queries issued before Initialize has completed.
// It matches vocab.ErrNotFound.
var ErrNotReady = fmt.Errorf("translate: engine not initialized: %w", vocab.ErrNotFound)

// Engine answers translation, synonym and autocomplete queries from an
// in-memory index built once from the loader's vocabulary.
type Engine struct {
	loader Loader
	log    *slog.Logger

	group singleflight.Group
	state atomic.Int32
	index atomic.Pointer[index]
}

// NewEngine creates an offline engine. Nothing is loaded until Initialize.
func NewEngine(loader Loader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		loader: loader,
		log:    logger.With("component", "engine"),
	}
}

// Initialize loads the vocabulary and publishes the index. Concurrent callers
// share one in-flight load; once it succeeds further calls return immediately.
// A failed load is not remembered and the next call tries again.
//
// The load keeps the values of the starting caller's context but not its
// cancellation. Any caller whose context is done stops waiting and gets the
// context error while the shared load carries on for the others.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.index.Load() != nil {
		return nil
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan("initialize", func() (any, error) {
		return nil, e.load(flightCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) load(ctx context.Context) error {
	// A previous flight may have finished between the fast-path check and Do.
	if e.index.Load() != nil {
		return nil
	}

	e.state.Store(int32(StateLoading))
	start := time.Now()

	g, err := e.loader.Load(ctx)
	if err != nil {
		e.state.Store(int32(StateFailed))
		e.log.ErrorContext(ctx, "vocabulary load failed", slog.String("error", err.Error()))
		return fmt.Errorf("translate: load vocabulary: %w", err)
	}
	if g == nil {
		g = vocab.NewGraph()
	}

	idx := buildIndex(g)
	e.index.Store(idx)
	e.state.Store(int32(StateReady))

	e.log.InfoContext(ctx, "vocabulary indexed",
		slog.Int("heads", len(g.Roots())),
		slog.Int("records", len(idx.entries)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// State returns the current initialization state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Len returns the number of indexed records, or 0 before initialization.
func (e *Engine) Len() int {
	idx := e.index.Load()
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

func (e *Engine) ready() (*index, error) {
	idx := e.index.Load()
	if idx == nil {
		return nil, ErrNotReady
	}
	return idx, nil
}

// Translate returns the translations of word.
//
// When word is a head record its links are returned in source order with the
// head's culture as source language. If several heads match, the first in
// index order wins. When word only occurs as a link, the heads it translates
// are returned (one per matching link, duplicates kept) and the source
// language is the culture of the first matching link.
func (e *Engine) Translate(ctx context.Context, word string) (*Result, error) {
	idx, err := e.ready()
	if err != nil {
		return nil, err
	}
	matches, err := idx.find(word)
	if err != nil {
		return nil, err
	}

	g := idx.graph
	for _, m := range matches {
		if g.IsRoot(m) {
			return &Result{
				SourceLanguage: strPtr(g.Entry(m).Culture),
				Results:        idx.entriesOf(g.Links(m)),
			}, nil
		}
	}

	// Every match is a link here.
	res := &Result{
		SourceLanguage: strPtr(g.Entry(matches[0]).Culture),
		Results:        make([]vocab.Entry, 0, len(matches)),
	}
	for _, m := range matches {
		parent, _ := g.Parent(m)
		res.Results = append(res.Results, g.Entry(parent))
	}
	return res, nil
}

// FindSynonyms returns the siblings of every link record matching word:
// the other links under the same head, in link order, concatenated per match.
// A word that only matches heads has no synonyms and yields an empty result.
// The result carries no source language.
func (e *Engine) FindSynonyms(ctx context.Context, word string) (*Result, error) {
	idx, err := e.ready()
	if err != nil {
		return nil, err
	}
	matches, err := idx.find(word)
	if err != nil {
		return nil, err
	}

	g := idx.graph
	res := &Result{Results: []vocab.Entry{}}
	for _, m := range matches {
		parent, ok := g.Parent(m)
		if !ok {
			continue
		}
		for _, sibling := range g.Links(parent) {
			if sibling == m {
				continue
			}
			res.Results = append(res.Results, g.Entry(sibling))
		}
	}
	return res, nil
}

// FindAutocompleteSuggestions returns the distinct words starting with prefix
// (case-insensitive) in index order. It never fails; an empty prefix or an
// engine that is not ready yields no suggestions.
func (e *Engine) FindAutocompleteSuggestions(ctx context.Context, prefix string) []string {
	out := []string{}
	if prefix == "" {
		return out
	}
	idx := e.index.Load()
	if idx == nil {
		return out
	}

	key := fold(prefix)
	seen := make(map[string]struct{})
	for _, entry := range idx.entries {
		if !strings.HasPrefix(entry.key, key) {
			continue
		}
		word := idx.graph.Entry(entry.id).Word
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}
