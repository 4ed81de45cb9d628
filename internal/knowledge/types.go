package knowledge

import "errors"

// Content type constants. They partition both manifest columns and vector
// store collections.
const (
	// ContentTypeWiki is extracted wiki article text.
	ContentTypeWiki = "wiki"

	// ContentTypeYouTube is video link descriptions (never fetched).
	ContentTypeYouTube = "youtube"

	// ContentTypeForum is extracted forum thread text.
	ContentTypeForum = "forum"
)

// ContentTypes returns all content types in their canonical order.
func ContentTypes() []string {
	return []string{ContentTypeWiki, ContentTypeYouTube, ContentTypeForum}
}

var (
	// ErrEmbedderUnavailable indicates the embedding model is not
	// configured or failed to produce vectors.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")

	// ErrStoreUnavailable indicates the vector store is not configured or
	// a store operation failed.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// SearchHit is one ranked search result. Distance is a non-negative
// dissimilarity score; lower is better, 0 means identical.
type SearchHit struct {
	Content     string
	Metadata    map[string]string
	Distance    float32
	ContentType string
}

// Document is one embedded chunk ready for storage.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}
