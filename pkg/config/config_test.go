package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
vocabulary:
  source: "sqlite"
  db_path: "/tmp/vocab.db"
  download_url: "https://example.com/translations.xml.gz"

online:
  enabled: true
  api_key: "key"
  target_language: "de"
  timeout: "3s"

gloss:
  workers: 8
  batch_size: 20
  flush_interval: "250ms"

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Vocabulary.Source != SourceSQLite {
		t.Errorf("vocabulary.source = %q, want %q", cfg.Vocabulary.Source, SourceSQLite)
	}
	if cfg.Vocabulary.DBPath != "/tmp/vocab.db" {
		t.Errorf("vocabulary.db_path = %q", cfg.Vocabulary.DBPath)
	}
	// unset keys keep their defaults
	if cfg.Vocabulary.XMLPath != "translations.xml" {
		t.Errorf("vocabulary.xml_path = %q, want default", cfg.Vocabulary.XMLPath)
	}
	if !cfg.Online.Enabled || cfg.Online.APIKey != "key" || cfg.Online.TargetLanguage != "de" {
		t.Errorf("online = %+v", cfg.Online)
	}
	if cfg.Online.Timeout != 3*time.Second {
		t.Errorf("online.timeout = %v, want 3s", cfg.Online.Timeout)
	}
	if cfg.Online.BaseURL != "https://translation.googleapis.com/language/translate/v2" {
		t.Errorf("online.base_url = %q, want default", cfg.Online.BaseURL)
	}
	if cfg.Gloss.Workers != 8 || cfg.Gloss.BatchSize != 20 || cfg.Gloss.FlushInterval != 250*time.Millisecond {
		t.Errorf("gloss = %+v", cfg.Gloss)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	// No CONFIG_PATH and no ./config.yaml in the test directory.
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vocabulary.Source != SourceXML {
		t.Errorf("vocabulary.source = %q, want %q", cfg.Vocabulary.Source, SourceXML)
	}
	if cfg.Online.Enabled {
		t.Error("online should be disabled by default")
	}
	if cfg.Gloss.Workers != 4 || cfg.Gloss.BatchSize != 50 {
		t.Errorf("gloss defaults = %+v", cfg.Gloss)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))
	t.Setenv("GLOSS_WORKERS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gloss.Workers != 2 {
		t.Errorf("gloss.workers = %d, want 2", cfg.Gloss.Workers)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidSource(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, "vocabulary:\n  source: \"csv\"\n"))
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "source must be") {
		t.Fatalf("expected source validation error, got %v", err)
	}
}

func validConfig() Config {
	return Config{
		Vocabulary: VocabularyConfig{Source: SourceXML, XMLPath: "translations.xml"},
		Gloss:      GlossConfig{Workers: 1, BatchSize: 1},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"sqlite without path", func(c *Config) { c.Vocabulary.Source = SourceSQLite }, "db_path"},
		{"online without key", func(c *Config) {
			c.Online = OnlineConfig{Enabled: true, TargetLanguage: "en", Timeout: time.Second}
		}, "api_key"},
		{"online without timeout", func(c *Config) {
			c.Online = OnlineConfig{Enabled: true, APIKey: "k", TargetLanguage: "en"}
		}, "timeout"},
		{"zero workers", func(c *Config) { c.Gloss.Workers = 0 }, "workers"},
		{"zero batch", func(c *Config) { c.Gloss.BatchSize = 0 }, "batch_size"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(LogConfig{Level: "warn", Format: "json"}, &buf))

	logger.Info("dropped")
	logger.Warn("kept", "word", "Folge")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "kept" || rec["word"] != "Folge" {
		t.Errorf("unexpected record %v", rec)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
}
