package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/lexilookup/pkg/config"
)

const testVocabulary = `<?xml version="1.0" encoding="utf-8"?>
<TRANSLATIONS>
  <RECORD word="success" culture="en-US">
    <LINK word="Erfolg" culture="de-DE"/>
    <LINK word="Gelingen" culture="de-DE"/>
  </RECORD>
  <RECORD word="episode" culture="en-US">
    <LINK word="Folge" culture="de-DE"/>
  </RECORD>
  <RECORD word="sequence" culture="en-US">
    <LINK word="Folge" culture="de-DE"/>
    <LINK word="Reihenfolge" culture="de-DE"/>
  </RECORD>
</TRANSLATIONS>`

func testSetup(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "translations.xml")
	if err := os.WriteFile(xmlPath, []byte(testVocabulary), 0o644); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}
	return &config.Config{
		Vocabulary: config.VocabularyConfig{
			Source:  config.SourceXML,
			XMLPath: xmlPath,
			DBPath:  filepath.Join(dir, "lexilookup.db"),
		},
		Gloss: config.GlossConfig{Workers: 2, BatchSize: 10},
		Log:   config.LogConfig{Level: "info", Format: "text"},
	}
}

func runCLI(t *testing.T, cfg *config.Config, opts options) (string, error) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), cfg, opts, &out, logger)
	return out.String(), err
}

func TestCLI_Translate(t *testing.T) {
	out, err := runCLI(t, testSetup(t), options{translate: "SUCCESS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "SUCCESS (en-US):\n  Erfolg (de-DE)\n  Gelingen (de-DE)\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestCLI_NotFound(t *testing.T) {
	out, err := runCLI(t, testSetup(t), options{translate: "xyz"})
	if !errors.Is(err, errNoMatch) {
		t.Fatalf("expected errNoMatch, got %v", err)
	}
	if out != "'xyz' not found\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCLI_Synonyms(t *testing.T) {
	out, err := runCLI(t, testSetup(t), options{synonyms: "Folge"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "  Reihenfolge (de-DE)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCLI_Suggest(t *testing.T) {
	out, err := runCLI(t, testSetup(t), options{suggest: "e"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "episode\nErfolg\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCLI_Lookup(t *testing.T) {
	out, err := runCLI(t, testSetup(t), options{lookup: "Erfolg"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Erfolg (de-DE):", "  success (en-US)", "Synonyms:", "  Gelingen (de-DE)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_NoCommand(t *testing.T) {
	if _, err := runCLI(t, testSetup(t), options{}); err == nil {
		t.Fatal("expected usage error")
	}
}

func TestCLI_DetectRequiresOnline(t *testing.T) {
	if _, err := runCLI(t, testSetup(t), options{detect: "Hallo"}); err == nil {
		t.Fatal("expected error when the online backend is disabled")
	}
}

func TestCLI_ImportThenQuerySQLite(t *testing.T) {
	cfg := testSetup(t)
	out, err := runCLI(t, cfg, options{importVocab: cfg.Vocabulary.XMLPath})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 8 records") {
		t.Fatalf("unexpected import output %q", out)
	}

	cfg.Vocabulary.Source = config.SourceSQLite
	cfg.Vocabulary.XMLPath = filepath.Join(t.TempDir(), "gone.xml")
	out, err = runCLI(t, cfg, options{translate: "Folge"})
	if err != nil {
		t.Fatalf("translate from sqlite: %v", err)
	}
	want := "Folge (de-DE):\n  episode (en-US)\n  sequence (en-US)\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestCLI_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/detect") {
			_, _ = w.Write([]byte(`{"data":{"detections":[[{"language":"de","confidence":0.9}]]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"success","detectedSourceLanguage":"de"}]}}`))
	}))
	defer srv.Close()

	cfg := testSetup(t)
	cfg.Online = config.OnlineConfig{BaseURL: srv.URL, APIKey: "k", TargetLanguage: "en"}

	out, err := runCLI(t, cfg, options{online: true, translate: "Erfolg"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "Erfolg (de):\n  success (en)\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, cfg, options{online: true, detect: "Hallo Welt"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if out != "de\n" {
		t.Fatalf("unexpected detect output %q", out)
	}
}

const testArticle = `<!DOCTYPE html>
<html><head><title>Der Erfolg der Folge</title></head>
<body>
<article>
<h1>Der Erfolg der Folge</h1>
<p>Der Erfolg dieser Folge war groß. Jede Folge der Reihe erzählt von Gelingen und Gedeihen,
und die Zuschauer sprechen noch lange darüber. Die Reihenfolge der Szenen ist klug gewählt,
und jeder Fehler im Drehbuch wurde vor der Ausstrahlung behoben.</p>
<p>Am Ende bleibt ein Erfolg, der lange nachwirkt. Die Produzenten planen bereits die nächste
Folge, und das Publikum wartet mit Spannung darauf, wie die Geschichte weitergeht. Kritiker
loben die ruhige Erzählweise und die sorgfältige Arbeit des gesamten Teams.</p>
</article>
</body></html>`

func TestCLI_GlossArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testArticle))
	}))
	defer srv.Close()

	cfg := testSetup(t)
	out, err := runCLI(t, cfg, options{url: srv.URL})
	if err != nil {
		t.Fatalf("cli failed: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Title: Der Erfolg der Folge") {
		t.Fatalf("missing title in output:\n%s", out)
	}
	if !strings.Contains(out, "Erfolg: success (en-US)") {
		t.Fatalf("missing Erfolg gloss in output:\n%s", out)
	}

	conn, err := sql.Open("sqlite3", cfg.Vocabulary.DBPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer conn.Close()

	var sources, glosses int
	if err := conn.QueryRow("SELECT COUNT(*) FROM sources").Scan(&sources); err != nil {
		t.Fatalf("failed to query sources: %v", err)
	}
	if sources != 1 {
		t.Fatalf("expected 1 source row, got %d", sources)
	}
	if err := conn.QueryRow("SELECT COUNT(*) FROM glosses WHERE word = 'Folge'").Scan(&glosses); err != nil {
		t.Fatalf("failed to query glosses: %v", err)
	}
	if glosses != 1 {
		t.Fatalf("expected one gloss row for Folge, got %d", glosses)
	}
}
