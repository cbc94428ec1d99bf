package gloss

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/japaniel/lexilookup/pkg/analyzer"
	"github.com/japaniel/lexilookup/pkg/db"
	"github.com/japaniel/lexilookup/pkg/translate"
	"github.com/japaniel/lexilookup/pkg/vocab"
)

// Parts of speech that carry no lookup value on their own.
var skippedPOS = map[string]bool{
	"助詞":   true,
	"助動詞":  true,
	"補助記号": true,
}

// WordGloss is a word of a sentence that the service could translate.
type WordGloss struct {
	Word           string
	SourceLanguage string
	Translations   []vocab.Entry
	Count          int
}

// SentenceGloss holds the glossed words of one sentence in order of first use.
type SentenceGloss struct {
	Index int
	Text  string
	Words []WordGloss
}

// Glosser looks up the words of analyzed sentences concurrently.
type Glosser struct {
	Service translate.Service
	// DB is optional. When set, glosses are stored for the source.
	DB            *sql.DB
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	Logger        *slog.Logger

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) Pool
}

// NewGlosser creates a Glosser with default concurrency settings.
func NewGlosser(svc translate.Service, conn *sql.DB, logger *slog.Logger) *Glosser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Glosser{
		Service:       svc,
		DB:            conn,
		Workers:       4,
		BatchSize:     50,
		FlushInterval: 100 * time.Millisecond,
		Logger:        logger.With("component", "glosser"),
	}
}

type glossResult struct {
	gloss SentenceGloss
	err   error
}

// Gloss looks up every sentence and returns the glosses in sentence order.
// Words the service does not know are skipped; any other lookup error or a
// failed database write aborts the run. With a database attached the stored
// glosses of sourceID are replaced by this run's.
func (g *Glosser) Gloss(ctx context.Context, sourceID int64, sentences []analyzer.Sentence) ([]SentenceGloss, error) {
	if err := g.Service.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize service: %w", err)
	}
	if len(sentences) == 0 {
		return []SentenceGloss{}, nil
	}
	start := time.Now()

	workers := g.Workers
	if workers <= 0 {
		workers = 1
	}
	var pool Pool
	if g.PoolFactory != nil {
		pool = g.PoolFactory(workers, workers*2)
	} else {
		pool = NewWorkerPool(workers, workers*2)
	}

	var bw *BatchWriter
	if g.DB != nil && sourceID > 0 {
		bw = NewBatchWriter(g.DB, g.BatchSize, g.FlushInterval, g.logger())
		// Batches commit in submission order, so a re-run starts from a clean
		// slate instead of adding to the previous counts.
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return db.DeleteGlossesBySource(tx, sourceID)
		}); err != nil {
			pool.Close()
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	resultCh := make(chan glossResult, workers*2)
	out := make([]SentenceGloss, 0, len(sentences))
	consumerDone := make(chan struct{})

	// Consumer: reorders results and hands them to the writer in sentence order.
	go func() {
		defer close(consumerDone)
		pending := make(map[int]SentenceGloss)
		next := 0
		for res := range resultCh {
			if res.err != nil {
				fail(res.err)
				continue
			}
			pending[res.gloss.Index] = res.gloss
			for {
				item, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				out = append(out, item)
				if bw != nil {
					if err := bw.Submit(persist(sourceID, item)); err != nil {
						fail(err)
					}
				}
				next++
			}
		}
	}()

	pool.Start(ctx)
	cache := newLookupCache()
	for i, s := range sentences {
		idx, sent := i, s
		job := func(ctx context.Context) error {
			sg, err := g.glossSentence(ctx, cache, idx, sent)
			select {
			case resultCh <- glossResult{gloss: sg, err: err}:
			case <-ctx.Done():
			}
			return nil
		}
		if err := pool.SubmitCtx(ctx, job); err != nil {
			fail(err)
			break
		}
	}

	// No worker sends after Close returns, so resultCh can be closed.
	pool.Close()
	close(resultCh)
	<-consumerDone

	if bw != nil {
		if err := bw.Close(); err != nil {
			fail(fmt.Errorf("persist glosses: %w", err))
		}
	}
	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	g.logger().Info("glossed document",
		"source_id", sourceID,
		"sentences", len(out),
		"took", time.Since(start))
	return out, nil
}

func (g *Glosser) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// glossSentence looks up each token through its candidate forms; the first
// form the service knows is the one counted.
func (g *Glosser) glossSentence(ctx context.Context, cache *lookupCache, index int, s analyzer.Sentence) (SentenceGloss, error) {
	sg := SentenceGloss{Index: index, Text: s.Text}
	seen := make(map[string]int)

	for _, tok := range s.Tokens {
		if skippedPOS[tok.PrimaryPOS] {
			continue
		}
		for _, cand := range analyzer.Candidates(tok) {
			res, err := cache.lookup(ctx, g.Service, cand)
			if err != nil {
				return sg, fmt.Errorf("sentence %d: translate %q: %w", index, cand, err)
			}
			if res == nil {
				continue
			}
			if i, ok := seen[cand]; ok {
				sg.Words[i].Count++
				break
			}
			lang, _ := res.Language()
			seen[cand] = len(sg.Words)
			sg.Words = append(sg.Words, WordGloss{
				Word:           cand,
				SourceLanguage: lang,
				Translations:   res.Results,
				Count:          1,
			})
			break
		}
	}
	return sg, nil
}

// lookupCache remembers translations for the duration of one Gloss call.
// A nil result records a word the service does not know.
type lookupCache struct {
	mu sync.Mutex
	m  map[string]*translate.Result
}

func newLookupCache() *lookupCache {
	return &lookupCache{m: make(map[string]*translate.Result)}
}

func (c *lookupCache) lookup(ctx context.Context, svc translate.Service, word string) (*translate.Result, error) {
	c.mu.Lock()
	res, ok := c.m[word]
	c.mu.Unlock()
	if ok {
		return res, nil
	}

	res, err := svc.Translate(ctx, word)
	if errors.Is(err, vocab.ErrNotFound) {
		res, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.m[word] = res
	c.mu.Unlock()
	return res, nil
}

type storedEntry struct {
	Word    string `json:"word"`
	Culture string `json:"culture"`
}

func persist(sourceID int64, sg SentenceGloss) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, w := range sg.Words {
			entries := make([]storedEntry, 0, len(w.Translations))
			for _, e := range w.Translations {
				entries = append(entries, storedEntry{Word: e.Word, Culture: e.Culture})
			}
			payload, err := json.Marshal(entries)
			if err != nil {
				return fmt.Errorf("encode translations for %s: %w", w.Word, err)
			}
			if err := db.SaveGloss(tx, sourceID, sg.Index, w.Word, w.SourceLanguage, string(payload), w.Count); err != nil {
				return fmt.Errorf("failed to persist gloss %s: %w", w.Word, err)
			}
		}
		return nil
	}
}
