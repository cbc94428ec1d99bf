package config

import "time"

// Vocabulary source kinds.
const (
	SourceXML    = "xml"
	SourceSQLite = "sqlite"
)

// Config is the root application configuration.
type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Online     OnlineConfig     `yaml:"online"`
	Gloss      GlossConfig      `yaml:"gloss"`
	Log        LogConfig        `yaml:"log"`
}

// VocabularyConfig selects where the offline vocabulary is read from.
type VocabularyConfig struct {
	Source      string `yaml:"source"       env:"VOCAB_SOURCE"       env-default:"xml"`
	XMLPath     string `yaml:"xml_path"     env:"VOCAB_XML_PATH"     env-default:"translations.xml"`
	DBPath      string `yaml:"db_path"      env:"VOCAB_DB_PATH"      env-default:"lexilookup.db"`
	DownloadURL string `yaml:"download_url" env:"VOCAB_DOWNLOAD_URL"`
}

// OnlineConfig holds settings for the Google Translate backend.
type OnlineConfig struct {
	Enabled        bool          `yaml:"enabled"         env:"ONLINE_ENABLED"         env-default:"false"`
	APIKey         string        `yaml:"api_key"         env:"ONLINE_API_KEY"`
	BaseURL        string        `yaml:"base_url"        env:"ONLINE_BASE_URL"        env-default:"https://translation.googleapis.com/language/translate/v2"`
	TargetLanguage string        `yaml:"target_language" env:"ONLINE_TARGET_LANGUAGE" env-default:"en"`
	Timeout        time.Duration `yaml:"timeout"         env:"ONLINE_TIMEOUT"         env-default:"10s"`
}

// GlossConfig tunes the article gloss pipeline.
type GlossConfig struct {
	Workers       int           `yaml:"workers"        env:"GLOSS_WORKERS"        env-default:"4"`
	BatchSize     int           `yaml:"batch_size"     env:"GLOSS_BATCH_SIZE"     env-default:"50"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"GLOSS_FLUSH_INTERVAL" env-default:"100ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
