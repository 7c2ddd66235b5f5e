// Package config loads boardchat configuration from .env, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Corpus source kinds.
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all boardchat configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	LLM      LLMConfig      `yaml:"llm"`
	Timezone string         `yaml:"timezone"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	CORSOrigins    []string `yaml:"cors_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

// CorpusConfig selects where posts and comments come from.
type CorpusConfig struct {
	Source     string `yaml:"source"` // file, http, sqlite
	Dir        string `yaml:"dir"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
}

// LLMConfig configures the answering model.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, ollama
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PipelineConfig bounds the assembled context.
type PipelineConfig struct {
	MaxPosts        int `yaml:"max_posts"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
}

// ImportConfig configures the CSV drop folder.
type ImportConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":5000",
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Corpus: CorpusConfig{
			Source:     SourceFile,
			Dir:        "./data",
			SQLitePath: "./data/board.db",
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Timezone: "Asia/Seoul",
		Pipeline: PipelineConfig{
			MaxPosts:        30,
			MaxContextChars: 3000,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Service: "boardchat",
		},
		Import: ImportConfig{
			Dir: "./import",
		},
	}
}

// Load reads .env (if present), the YAML file at path (if path is set) and
// then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyProviderDefaults()
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %q", key, v)
		}
		*dst = n
		return nil
	}
	float := func(key string, dst *float64) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", key, v)
		}
		*dst = f
		return nil
	}

	str("HTTP_ADDR", &c.HTTP.Addr)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	str("CORPUS_SOURCE", &c.Corpus.Source)
	str("CORPUS_DIR", &c.Corpus.Dir)
	str("CORPUS_URL", &c.Corpus.URL)
	str("CORPUS_SQLITE_PATH", &c.Corpus.SQLitePath)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("OPENAI_API_KEY", &c.LLM.APIKey)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_MODEL", &c.LLM.Model)
	str("TIMEZONE", &c.Timezone)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_SERVICE", &c.Log.Service)
	str("IMPORT_DIR", &c.Import.Dir)

	return errors.Join(
		float("RATE_LIMIT_RPS", &c.HTTP.RateLimitRPS),
		integer("RATE_LIMIT_BURST", &c.HTTP.RateLimitBurst),
		float("LLM_TEMPERATURE", &c.LLM.Temperature),
		integer("LLM_MAX_TOKENS", &c.LLM.MaxTokens),
		integer("MAX_CONTEXT_POSTS", &c.Pipeline.MaxPosts),
		integer("MAX_CONTEXT_CHARS", &c.Pipeline.MaxContextChars),
	)
}

func (c *Config) applyProviderDefaults() {
	c.Corpus.Source = strings.ToLower(strings.TrimSpace(c.Corpus.Source))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Model != "" {
		return
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		c.LLM.Model = "gpt-4"
	case ProviderOllama:
		c.LLM.Model = "llama3.2"
	}
}

// Validate checks the settings needed to answer questions.
func (c *Config) Validate() error {
	var errs []error

	switch c.Corpus.Source {
	case SourceFile:
		if c.Corpus.Dir == "" {
			errs = append(errs, errors.New("corpus.dir is required for the file source"))
		}
	case SourceHTTP:
		if c.Corpus.URL == "" {
			errs = append(errs, errors.New("CORPUS_URL is required for the http source"))
		}
	case SourceSQLite:
		if c.Corpus.SQLitePath == "" {
			errs = append(errs, errors.New("corpus.sqlite_path is required for the sqlite source"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid corpus source: %q (valid: file, http, sqlite)", c.Corpus.Source))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("invalid LLM provider: %q (valid: openai, ollama)", c.LLM.Provider))
	}

	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.Temperature < 0 {
		errs = append(errs, fmt.Errorf("llm.temperature must not be negative, got %v", c.LLM.Temperature))
	}
	if c.Pipeline.MaxPosts <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_posts must be positive, got %d", c.Pipeline.MaxPosts))
	}
	if c.Pipeline.MaxContextChars <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_context_chars must be positive, got %d", c.Pipeline.MaxContextChars))
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("http rate limit rps and burst must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
