package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/japaniel/lexilookup/pkg/analyzer"
	"github.com/japaniel/lexilookup/pkg/config"
	"github.com/japaniel/lexilookup/pkg/db"
	"github.com/japaniel/lexilookup/pkg/dictionary"
	"github.com/japaniel/lexilookup/pkg/gloss"
	"github.com/japaniel/lexilookup/pkg/translate"
	"github.com/japaniel/lexilookup/pkg/vocab"

	_ "github.com/mattn/go-sqlite3"
)

// errNoMatch makes the process exit non-zero after a "not found" line was printed.
var errNoMatch = errors.New("no match")

type options struct {
	translate   string
	synonyms    string
	suggest     string
	lookup      string
	detect      string
	url         string
	importVocab string
	db          string
	vocab       string
	online      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.translate, "translate", "", "Word to translate")
	flag.StringVar(&opts.synonyms, "synonyms", "", "Word to find synonyms for")
	flag.StringVar(&opts.suggest, "suggest", "", "Prefix to autocomplete")
	flag.StringVar(&opts.lookup, "lookup", "", "Word to translate and find synonyms for")
	flag.StringVar(&opts.detect, "detect", "", "Text to detect the language of (online only)")
	flag.StringVar(&opts.url, "url", "", "URL of an article to gloss")
	flag.StringVar(&opts.importVocab, "import-vocab", "", "Path to a translations XML file to import into the database")
	flag.StringVar(&opts.db, "db", "", "Path to SQLite database (overrides config)")
	flag.StringVar(&opts.vocab, "vocab", "", "Path to translations XML file (overrides config)")
	flag.BoolVar(&opts.online, "online", false, "Use the online translation backend")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Log)

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		if !errors.Is(err, errNoMatch) {
			logger.Error("lexilookup failed", "error", err)
		}
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer, logger *slog.Logger) error {
	if opts.db != "" {
		cfg.Vocabulary.DBPath = opts.db
	}
	if opts.vocab != "" {
		cfg.Vocabulary.XMLPath = opts.vocab
		cfg.Vocabulary.Source = config.SourceXML
	}
	if opts.online {
		cfg.Online.Enabled = true
	}

	if opts.importVocab != "" {
		return importVocabulary(ctx, cfg, opts.importVocab, out)
	}

	if opts.detect != "" {
		online, err := newOnline(cfg, logger)
		if err != nil {
			return err
		}
		lang, err := online.DetectLanguage(ctx, opts.detect)
		if err != nil {
			return fmt.Errorf("detect language: %w", err)
		}
		fmt.Fprintln(out, lang)
		return nil
	}

	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	switch {
	case opts.translate != "":
		res, err := svc.Translate(ctx, opts.translate)
		if err != nil {
			return reportNotFound(out, opts.translate, err)
		}
		printResult(out, opts.translate, res)
	case opts.synonyms != "":
		res, err := svc.FindSynonyms(ctx, opts.synonyms)
		if err != nil {
			return reportNotFound(out, opts.synonyms, err)
		}
		printEntries(out, res.Results)
	case opts.suggest != "":
		for _, w := range svc.FindAutocompleteSuggestions(ctx, opts.suggest) {
			fmt.Fprintln(out, w)
		}
	case opts.lookup != "":
		res, err := translate.Lookup(ctx, svc, opts.lookup)
		if err != nil {
			return reportNotFound(out, opts.lookup, err)
		}
		printResult(out, opts.lookup, &translate.Result{SourceLanguage: res.SourceLanguage, Results: res.Translations})
		if len(res.Synonyms) > 0 {
			fmt.Fprintln(out, "Synonyms:")
			printEntries(out, res.Synonyms)
		}
	case opts.url != "":
		return glossArticle(ctx, cfg, svc, opts.url, out, logger)
	default:
		return errors.New("please provide one of -translate, -synonyms, -suggest, -lookup, -detect, -url or -import-vocab")
	}
	return nil
}

func reportNotFound(out io.Writer, word string, err error) error {
	if errors.Is(err, vocab.ErrNotFound) {
		fmt.Fprintf(out, "'%s' not found\n", word)
		return errNoMatch
	}
	return err
}

func printResult(out io.Writer, word string, res *translate.Result) {
	if lang, ok := res.Language(); ok {
		fmt.Fprintf(out, "%s (%s):\n", word, lang)
	} else {
		fmt.Fprintf(out, "%s:\n", word)
	}
	printEntries(out, res.Results)
}

func printEntries(out io.Writer, entries []vocab.Entry) {
	for _, e := range entries {
		fmt.Fprintf(out, "  %s\n", e)
	}
}

func newOnline(cfg *config.Config, logger *slog.Logger) (*translate.Online, error) {
	if !cfg.Online.Enabled {
		return nil, errors.New("the online backend is disabled; pass -online or set online.enabled")
	}
	if cfg.Online.APIKey == "" {
		return nil, errors.New("online.api_key is required for the online backend")
	}
	return translate.NewOnline(cfg.Online.BaseURL, cfg.Online.APIKey, cfg.Online.TargetLanguage, cfg.Online.Timeout, logger), nil
}

func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (translate.Service, error) {
	if cfg.Online.Enabled {
		online, err := newOnline(cfg, logger)
		if err != nil {
			return nil, err
		}
		return online, nil
	}

	var loader translate.Loader
	switch cfg.Vocabulary.Source {
	case config.SourceSQLite:
		loader = dictionary.SQLLoader{Path: cfg.Vocabulary.DBPath}
	default:
		if cfg.Vocabulary.DownloadURL != "" {
			if err := dictionary.EnsureVocabulary(ctx, cfg.Vocabulary.XMLPath, cfg.Vocabulary.DownloadURL); err != nil {
				return nil, fmt.Errorf("ensure vocabulary: %w", err)
			}
		}
		loader = dictionary.XMLLoader{Path: cfg.Vocabulary.XMLPath}
	}
	return translate.NewEngine(loader, logger), nil
}

func openDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.InitDB(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return conn, nil
}

func importVocabulary(ctx context.Context, cfg *config.Config, xmlPath string, out io.Writer) error {
	g, err := dictionary.XMLLoader{Path: xmlPath}.Load(ctx)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	conn, err := openDB(cfg.Vocabulary.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	n, err := dictionary.ImportGraph(ctx, conn, g)
	if err != nil {
		return fmt.Errorf("import vocabulary: %w", err)
	}
	fmt.Fprintf(out, "Imported %d records into %s\n", n, cfg.Vocabulary.DBPath)
	return nil
}

func glossArticle(ctx context.Context, cfg *config.Config, svc translate.Service, pageURL string, out io.Writer, logger *slog.Logger) error {
	conn, err := openDB(cfg.Vocabulary.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	article, err := analyzer.FetchArticle(ctx, nil, pageURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Title: %s\n", article.Title)

	sourceID, err := db.CreateOrGetSource(conn, "website_article", article.Title, article.Byline, article.SiteName, article.URL, "")
	if err != nil {
		return fmt.Errorf("persist source: %w", err)
	}

	a, err := analyzer.New()
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}
	sentences := a.AnalyzeDocument(article.Text)

	g := gloss.NewGlosser(svc, conn, logger)
	g.Workers = cfg.Gloss.Workers
	g.BatchSize = cfg.Gloss.BatchSize
	g.FlushInterval = cfg.Gloss.FlushInterval

	glossed, err := g.Gloss(ctx, sourceID, sentences)
	if err != nil {
		return fmt.Errorf("gloss article: %w", err)
	}

	words := 0
	for _, s := range glossed {
		for _, w := range s.Words {
			words++
			translations := make([]string, 0, len(w.Translations))
			for _, e := range w.Translations {
				translations = append(translations, e.String())
			}
			fmt.Fprintf(out, "[%d] %s: %s\n", s.Index, w.Word, strings.Join(translations, ", "))
		}
	}
	fmt.Fprintf(out, "Glossed %d words in %d sentences.\n", words, len(glossed))
	return nil
}
