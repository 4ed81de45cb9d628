package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/gamelore/gamelore/internal/log"
	"github.com/gamelore/gamelore/internal/manifest"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 5

// ManifestSource is the manifest dependency of the Service. Satisfied by
// *manifest.Processor; tests substitute a fake.
type ManifestSource interface {
	// Validate checks the manifest's structure without network calls.
	Validate(game string) (bool, []string)

	// Process produces the knowledge bundle for a game.
	Process(ctx context.Context, game string) manifest.Bundle

	// Available lists games that have a manifest on disk.
	Available() []string
}

// ServiceConfig holds Service settings.
type ServiceConfig struct {
	// ChunkMaxLength bounds chunk length. Default DefaultChunkMaxLength.
	ChunkMaxLength int

	// LockPath, when set, names a lock file used to serialize ingestion
	// across processes sharing the same vector store.
	LockPath string
}

// Service orchestrates the knowledge pipeline. Every public operation
// swallows internal failures, logs them, and returns its documented safe
// default: the consuming chat flow must degrade gracefully rather than fail.
//
// Ingestions are serialized: concurrently requested ingests queue behind an
// in-process mutex and, when a lock path is configured, a cross-process file
// lock.
type Service struct {
	manifests ManifestSource
	embedder  Embeddings
	store     *Store
	logger    log.Logger

	chunkMax int
	ingestMu sync.Mutex
	lock     *flock.Flock
}

// NewService creates a Service from its collaborators.
func NewService(manifests ManifestSource, embedder Embeddings, store *Store, cfg ServiceConfig, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.ChunkMaxLength <= 0 {
		cfg.ChunkMaxLength = DefaultChunkMaxLength
	}

	var lock *flock.Flock
	if cfg.LockPath != "" {
		lock = flock.New(cfg.LockPath)
	}

	return &Service{
		manifests: manifests,
		embedder:  embedder,
		store:     store,
		logger:    logger,
		chunkMax:  cfg.ChunkMaxLength,
		lock:      lock,
	}
}

// ValidateManifest checks the structure of a game's manifest. It performs no
// network calls and never fails hard.
func (s *Service) ValidateManifest(game string) (bool, []string) {
	if s.manifests == nil {
		return false, []string{"CSV file not found"}
	}
	return s.manifests.Validate(game)
}

// Ingest rebuilds the stored knowledge for a game from its manifest. The
// previous collections are dropped first, so repeated ingestion refreshes
// rather than accumulates. Individual extraction failures do not fail the
// ingestion; only an unavailable embedder or store does.
//
// Ingest blocks for the duration of the pipeline, which is minutes-scale for
// manifests with many URLs. Callers wanting responsiveness dispatch it off
// their interaction path.
func (s *Service) Ingest(ctx context.Context, game string) bool {
	if err := s.ingest(ctx, game); err != nil {
		s.logger.Error("ingest failed", "game", game, "error", err)
		return false
	}
	return true
}

func (s *Service) ingest(ctx context.Context, game string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	if s.embedder == nil {
		return ErrEmbedderUnavailable
	}
	if s.manifests == nil {
		return fmt.Errorf("no manifest source configured")
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("acquiring ingest lock: %w", err)
		}
		defer func() { _ = s.lock.Unlock() }()
	}

	// Refresh semantics: drop existing collections so a re-ingest replaces
	// stale documents instead of appending duplicates.
	for _, contentType := range ContentTypes() {
		if err := s.store.DeleteCollection(game, contentType); err != nil {
			return err
		}
	}

	bundle := s.manifests.Process(ctx, game)

	for _, contentType := range ContentTypes() {
		entries := bundle.Entries(contentType)
		if len(entries) == 0 {
			continue
		}

		docs := buildDocuments(game, contentType, entries, s.chunkMax)
		if len(docs) == 0 {
			continue
		}

		texts := make([]string, len(docs))
		for i, doc := range docs {
			texts[i] = doc.Content
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding %s chunks: %w", contentType, err)
		}
		if len(embeddings) != len(docs) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(docs))
		}
		for i := range docs {
			docs[i].Embedding = embeddings[i]
		}

		if err := s.store.Add(ctx, game, contentType, docs); err != nil {
			return err
		}

		s.logger.Info("ingested chunks",
			"game", game,
			"content_type", contentType,
			"entries", len(entries),
			"chunks", len(docs))
	}

	return nil
}

// Search returns the nearest stored chunks to query, ranked ascending by
// distance and truncated to limit. contentTypes restricts the search to a
// subset of collections; empty means all three. Missing collections are
// skipped. Failures yield an empty result, indistinguishable from "no
// relevant knowledge".
func (s *Service) Search(ctx context.Context, game, query string, contentTypes []string, limit int) []SearchHit {
	hits, err := s.search(ctx, game, query, contentTypes, limit)
	if err != nil {
		s.logger.Error("search failed", "game", game, "error", err)
		return nil
	}
	return hits
}

func (s *Service) search(ctx context.Context, game, query string, contentTypes []string, limit int) ([]SearchHit, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	if s.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if len(contentTypes) == 0 {
		contentTypes = ContentTypes()
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var all []SearchHit
	for _, contentType := range contentTypes {
		hits, err := s.store.Query(ctx, game, contentType, queryEmbedding, limit)
		if err != nil {
			s.logger.Warn("collection query failed",
				"game", game, "content_type", contentType, "error", err)
			continue
		}
		all = append(all, hits...)
	}

	// Per-type winners compete globally: one content type may dominate the
	// final ranking if its matches are closest.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Stats reports the stored document count per content type for a game,
// zero-filled for absent collections. It never fails.
func (s *Service) Stats(game string) map[string]int {
	stats := make(map[string]int, len(ContentTypes()))
	for _, contentType := range ContentTypes() {
		stats[contentType] = 0
		if s.store != nil {
			stats[contentType] = s.store.Count(game, contentType)
		}
	}
	return stats
}

// DeleteGame removes all stored knowledge for a game. Each of the three
// collections is deleted independently; absence is not an error. Returns
// false only if the store itself failed.
func (s *Service) DeleteGame(game string) bool {
	if s.store == nil {
		return false
	}

	ok := true
	for _, contentType := range ContentTypes() {
		if err := s.store.DeleteCollection(game, contentType); err != nil {
			s.logger.Error("deleting collection failed",
				"game", game, "content_type", contentType, "error", err)
			ok = false
		}
	}
	return ok
}

// ListAvailableGames enumerates games with stored knowledge, derived from
// collection names.
func (s *Service) ListAvailableGames() []string {
	if s.store == nil {
		return nil
	}
	return s.store.ListGames()
}

// AvailableManifests lists games that have a manifest file, whether or not
// they have been ingested.
func (s *Service) AvailableManifests() []string {
	if s.manifests == nil {
		return nil
	}
	return s.manifests.Available()
}

// buildDocuments chunks each entry's content (falling back to its
// description when no content was extracted) and tags every chunk with its
// provenance metadata.
func buildDocuments(game, contentType string, entries []manifest.Entry, chunkMax int) []Document {
	var docs []Document
	for _, entry := range entries {
		content := entry.Content
		if content == "" {
			content = entry.Description
		}

		chunks := Chunk(content, chunkMax)
		for i, chunk := range chunks {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			docs = append(docs, Document{
				ID:      chunkID(game, contentType, i),
				Content: chunk,
				Metadata: map[string]string{
					"game":         game,
					"content_type": contentType,
					"url":          entry.URL,
					"title":        entry.Title,
					"description":  entry.Description,
					"chunk_index":  fmt.Sprintf("%d", i),
					"total_chunks": fmt.Sprintf("%d", len(chunks)),
				},
			})
		}
	}
	return docs
}

// chunkID builds a globally unique document ID. The random component keeps
// IDs from colliding across entries and ingestion runs.
func chunkID(game, contentType string, chunkIndex int) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s_%d", game, contentType, random, chunkIndex)
}
