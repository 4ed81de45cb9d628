// Package app assembles the application from its components. Commands call
// New (or NewOffline for store-only operations) and use the resulting App
// instead of wiring dependencies themselves.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/gamelore/gamelore/internal/config"
	"github.com/gamelore/gamelore/internal/extract"
	"github.com/gamelore/gamelore/internal/knowledge"
	"github.com/gamelore/gamelore/internal/log"
	"github.com/gamelore/gamelore/internal/manifest"
)

// ErrMissingAPIKey indicates no Gemini API key was found in the environment.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set")

// App bundles the assembled application components.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Knowledge *knowledge.Service
}

// New assembles the full application, including the embedding model. It
// fails fast if no API key is configured, before any network or disk work.
func New(ctx context.Context, logger log.Logger) (*App, error) {
	if err := checkAPIKey(); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := provideEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return assemble(cfg, embedder, logger)
}

// NewOffline assembles the application without an embedding model. Store
// inspection and deletion work; Ingest and Search degrade to their safe
// defaults.
func NewOffline(logger log.Logger) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return assemble(cfg, nil, logger)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// provideEmbedder initializes Genkit with the Google AI plugin and resolves
// the configured embedding model.
func provideEmbedder(ctx context.Context, cfg *config.Config) (ai.Embedder, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel), nil
}

func assemble(cfg *config.Config, embedder ai.Embedder, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	store, err := knowledge.NewStore(cfg.VectorDBDir, knowledge.NewEmbeddingFunc(embedder), logger)
	if err != nil {
		return nil, err
	}

	extractor := extract.New(extract.Config{
		Timeout:          cfg.FetchTimeout(),
		UserAgent:        cfg.UserAgent,
		MinContentLength: cfg.MinContentLength,
	}, logger)

	processor := manifest.NewProcessor(cfg.ManifestDir, extractor, cfg.PoliteDelay(), logger)

	var embeddings knowledge.Embeddings
	if embedder != nil {
		embeddings = knowledge.NewGenkitEmbedder(embedder, logger)
	}

	service := knowledge.NewService(processor, embeddings, store, knowledge.ServiceConfig{
		ChunkMaxLength: cfg.ChunkMaxLength,
		LockPath:       cfg.VectorDBDir + ".lock",
	}, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Knowledge: service,
	}, nil
}

// checkAPIKey verifies a Gemini API key is present. The Google AI plugin
// accepts either variable; GEMINI_API_KEY wins when both are set.
func checkAPIKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return ErrMissingAPIKey
	}
	return nil
}
