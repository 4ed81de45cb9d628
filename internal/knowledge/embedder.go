package knowledge

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"

	"github.com/gamelore/gamelore/internal/log"
)

// Embeddings is the embedding dependency of the Service. Implementations
// must preserve input order and return one fixed-dimension vector per input.
type Embeddings interface {
	// EmbedDocuments embeds a batch of chunk texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// GenkitEmbedder implements Embeddings on top of a Genkit ai.Embedder.
type GenkitEmbedder struct {
	embedder ai.Embedder
	logger   log.Logger
}

// NewGenkitEmbedder creates a GenkitEmbedder. A nil ai.Embedder is allowed;
// every call then fails with ErrEmbedderUnavailable, which the Service maps
// to its safe default.
func NewGenkitEmbedder(embedder ai.Embedder, logger log.Logger) *GenkitEmbedder {
	if logger == nil {
		logger = log.NewNop()
	}
	return &GenkitEmbedder{embedder: embedder, logger: logger}
}

// EmbedDocuments embeds texts as a single batch, preserving order.
func (g *GenkitEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if g.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]*ai.Document, len(texts))
	for i, text := range texts {
		input[i] = ai.DocumentFromText(text, nil)
	}

	resp, err := g.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs",
			len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrEmbedderUnavailable, i)
		}
		vectors[i] = emb.Embedding
	}

	g.logger.Debug("embedded batch", "texts", len(texts), "dimension", len(vectors[0]))
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (g *GenkitEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", ErrEmbedderUnavailable)
	}
	return vectors[0], nil
}

// NewEmbeddingFunc creates a chromem-go EmbeddingFunc from a Genkit
// ai.Embedder. chromem-go normalizes vectors itself, so no manual
// normalization is needed.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if embedder == nil {
			return nil, ErrEmbedderUnavailable
		}
		resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
			Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		})
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}
		if len(resp.Embeddings) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		return resp.Embeddings[0].Embedding, nil
	}
}
