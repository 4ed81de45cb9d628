package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/gamelore/gamelore/internal/log"
)

// collectionCacheSize bounds the collection-handle cache. Three collections
// per game means room for a few dozen games before eviction.
const collectionCacheSize = 64

// CollectionName derives the store collection name for a game and content
// type. The name is the sole identity mechanism: there is no separate
// registry of games.
func CollectionName(game, contentType string) string {
	return game + "_" + contentType
}

// Store adapts the embedded chromem-go vector database to the knowledge
// pipeline: one collection per (game, content type) pair, identified purely
// by name.
//
// Collection handles are kept in a bounded LRU cache; DeleteCollection
// invalidates them so a deleted-then-recreated collection never serves a
// stale handle.
type Store struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
	handles   *lru.Cache[string, *chromem.Collection]
	logger    log.Logger
}

// NewStore opens (or creates) a persistent store under path. embedFunc is
// attached to collections for completeness; the pipeline always supplies
// embeddings explicitly, so it is only exercised if a collection is queried
// by raw text.
func NewStore(path string, embedFunc chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: opening vector db at %s: %v", ErrStoreUnavailable, path, err)
	}
	return newStore(db, embedFunc, logger), nil
}

// NewStoreInMemory creates a non-persistent store. Test use only.
func NewStoreInMemory(embedFunc chromem.EmbeddingFunc, logger log.Logger) *Store {
	return newStore(chromem.NewDB(), embedFunc, logger)
}

func newStore(db *chromem.DB, embedFunc chromem.EmbeddingFunc, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	handles, _ := lru.New[string, *chromem.Collection](collectionCacheSize)
	return &Store{
		db:        db,
		embedFunc: embedFunc,
		handles:   handles,
		logger:    logger,
	}
}

// Add stores documents in the collection for (game, contentType), creating
// the collection on first use.
func (s *Store) Add(ctx context.Context, game, contentType string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := s.getOrCreate(game, contentType)
	if err != nil {
		return err
	}

	cdocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		cdocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
		}
	}

	if err := col.AddDocuments(ctx, cdocs, 1); err != nil {
		return fmt.Errorf("%w: adding %d documents to %s: %v",
			ErrStoreUnavailable, len(docs), CollectionName(game, contentType), err)
	}
	return nil
}

// Query returns up to k nearest neighbors of embedding from the collection
// for (game, contentType), ranked ascending by distance. A missing or empty
// collection yields no hits, not an error.
func (s *Store) Query(ctx context.Context, game, contentType string, embedding []float32, k int) ([]SearchHit, error) {
	col := s.lookup(game, contentType)
	if col == nil {
		return nil, nil
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v",
			ErrStoreUnavailable, CollectionName(game, contentType), err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		// chromem reports cosine similarity in [0,1] for normalized
		// vectors; distance is its complement.
		distance := 1 - r.Similarity
		if distance < 0 {
			distance = 0
		}
		hits = append(hits, SearchHit{
			Content:     r.Content,
			Metadata:    r.Metadata,
			Distance:    distance,
			ContentType: contentType,
		})
	}
	return hits, nil
}

// Count returns the number of documents stored for (game, contentType).
// A missing collection counts as zero.
func (s *Store) Count(game, contentType string) int {
	col := s.lookup(game, contentType)
	if col == nil {
		return 0
	}
	return col.Count()
}

// DeleteCollection removes the collection for (game, contentType) and evicts
// its cached handle. Deleting a collection that does not exist is not an
// error.
func (s *Store) DeleteCollection(game, contentType string) error {
	name := CollectionName(game, contentType)
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", ErrStoreUnavailable, name, err)
	}
	s.handles.Remove(name)
	return nil
}

// ListGames enumerates the games that have at least one collection, derived
// from collection names. Names without a recognized content-type suffix are
// ignored.
func (s *Store) ListGames() []string {
	seen := make(map[string]struct{})
	for name := range s.db.ListCollections() {
		for _, contentType := range ContentTypes() {
			suffix := "_" + contentType
			if strings.HasSuffix(name, suffix) {
				seen[strings.TrimSuffix(name, suffix)] = struct{}{}
				break
			}
		}
	}

	games := make([]string, 0, len(seen))
	for game := range seen {
		games = append(games, game)
	}
	sort.Strings(games)
	return games
}

// getOrCreate resolves the collection for (game, contentType), creating it
// lazily on first ingestion.
func (s *Store) getOrCreate(game, contentType string) (*chromem.Collection, error) {
	name := CollectionName(game, contentType)
	if col, ok := s.handles.Get(name); ok {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(name, map[string]string{
		"game":         game,
		"content_type": contentType,
	}, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: creating collection %s: %v", ErrStoreUnavailable, name, err)
	}

	s.handles.Add(name, col)
	return col, nil
}

// lookup resolves an existing collection or nil, caching the handle.
func (s *Store) lookup(game, contentType string) *chromem.Collection {
	name := CollectionName(game, contentType)
	if col, ok := s.handles.Get(name); ok {
		return col
	}

	col := s.db.GetCollection(name, s.embedFunc)
	if col != nil {
		s.handles.Add(name, col)
	}
	return col
}
