package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Vocabulary.validate(); err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}
	if err := c.Online.validate(); err != nil {
		return fmt.Errorf("online: %w", err)
	}
	if err := c.Gloss.validate(); err != nil {
		return fmt.Errorf("gloss: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	return nil
}

func (v *VocabularyConfig) validate() error {
	switch v.Source {
	case SourceXML:
		if v.XMLPath == "" {
			return fmt.Errorf("xml_path is required for source %q", v.Source)
		}
	case SourceSQLite:
		if v.DBPath == "" {
			return fmt.Errorf("db_path is required for source %q", v.Source)
		}
	default:
		return fmt.Errorf("source must be %q or %q (got %q)", SourceXML, SourceSQLite, v.Source)
	}
	return nil
}

func (o *OnlineConfig) validate() error {
	if !o.Enabled {
		return nil
	}
	if o.APIKey == "" {
		return fmt.Errorf("api_key is required when online is enabled")
	}
	if o.TargetLanguage == "" {
		return fmt.Errorf("target_language is required when online is enabled")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", o.Timeout)
	}
	return nil
}

func (g *GlossConfig) validate() error {
	if g.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", g.Workers)
	}
	if g.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1 (got %d)", g.BatchSize)
	}
	if g.FlushInterval < 0 {
		return fmt.Errorf("flush_interval must be >= 0 (got %v)", g.FlushInterval)
	}
	return nil
}
