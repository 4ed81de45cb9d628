// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (GAMELORE_ prefix)
//  2. Config file (~/.gamelore/config.yaml)
//  3. Default values
//
// Error handling uses sentinel errors so callers can branch with errors.Is()
// and wrap with fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidManifestDir indicates the manifest directory is empty.
	ErrInvalidManifestDir = errors.New("invalid manifest directory")

	// ErrInvalidVectorDBDir indicates the vector database directory is empty.
	ErrInvalidVectorDBDir = errors.New("invalid vector db directory")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidChunkLength indicates the chunk max length is out of range.
	ErrInvalidChunkLength = errors.New("invalid chunk max length")

	// ErrInvalidFetchTimeout indicates the fetch timeout is out of range.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout")

	// ErrInvalidMinContentLength indicates the extraction quality gate is negative.
	ErrInvalidMinContentLength = errors.New("invalid min content length")
)

const (
	// DefaultEmbedderModel is the default Gemini embedder model.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultChunkMaxLength bounds the character length of an embedded chunk.
	DefaultChunkMaxLength = 512

	// DefaultMinContentLength is the extraction quality gate: cleaned page
	// text shorter than this is discarded as not useful.
	DefaultMinContentLength = 50

	// DefaultUserAgent is a browser-like User-Agent; several game wikis
	// reject requests that identify as bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Config stores application configuration.
type Config struct {
	// ManifestDir holds the per-game CSV manifests (<game>.csv).
	ManifestDir string `mapstructure:"manifest_dir"`

	// VectorDBDir holds the embedded vector store's on-disk files.
	VectorDBDir string `mapstructure:"vector_db_dir"`

	// EmbedderModel is the Gemini embedding model identifier.
	EmbedderModel string `mapstructure:"embedder_model"`

	// ChunkMaxLength is the maximum character length of a text chunk.
	ChunkMaxLength int `mapstructure:"chunk_max_length"`

	// MinContentLength is the minimum cleaned text length accepted by the
	// content extractor.
	MinContentLength int `mapstructure:"min_content_length"`

	// FetchTimeoutMS is the per-request timeout for wiki/forum fetches.
	FetchTimeoutMS int `mapstructure:"fetch_timeout_ms"`

	// PoliteDelayMS is the pacing interval between successive remote
	// fetches during ingestion.
	PoliteDelayMS int `mapstructure:"polite_delay_ms"`

	// UserAgent is sent on every outbound fetch.
	UserAgent string `mapstructure:"user_agent"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".gamelore")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)

	v.SetEnvPrefix("GAMELORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("manifest_dir", filepath.Join(configDir, "games_info"))
	v.SetDefault("vector_db_dir", filepath.Join(configDir, "vector_db"))
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("chunk_max_length", DefaultChunkMaxLength)
	v.SetDefault("min_content_length", DefaultMinContentLength)
	v.SetDefault("fetch_timeout_ms", 10000)
	v.SetDefault("polite_delay_ms", 1000)
	v.SetDefault("user_agent", DefaultUserAgent)
}

// Validate checks the configuration for invalid values (fail-fast on load).
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.ManifestDir == "" {
		return fmt.Errorf("%w: manifest_dir must not be empty", ErrInvalidManifestDir)
	}
	if c.VectorDBDir == "" {
		return fmt.Errorf("%w: vector_db_dir must not be empty", ErrInvalidVectorDBDir)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidEmbedderModel)
	}
	if c.ChunkMaxLength < 1 {
		return fmt.Errorf("%w: chunk_max_length must be positive, got %d",
			ErrInvalidChunkLength, c.ChunkMaxLength)
	}
	if c.FetchTimeoutMS < 1 {
		return fmt.Errorf("%w: fetch_timeout_ms must be positive, got %d",
			ErrInvalidFetchTimeout, c.FetchTimeoutMS)
	}
	if c.MinContentLength < 0 {
		return fmt.Errorf("%w: min_content_length must not be negative, got %d",
			ErrInvalidMinContentLength, c.MinContentLength)
	}
	return nil
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// PoliteDelay returns the inter-fetch pacing interval as a duration.
// Zero disables pacing.
func (c *Config) PoliteDelay() time.Duration {
	if c.PoliteDelayMS < 0 {
		return 0
	}
	return time.Duration(c.PoliteDelayMS) * time.Millisecond
}
