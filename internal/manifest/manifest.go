// Package manifest reads per-game CSV manifests of external knowledge
// sources and turns them into bundles of extracted entries.
//
// A manifest is a CSV file named <game>.csv with six required columns:
// wiki, wiki_desc, youtube, yt_desc, forum, forum_desc. Each row names up to
// three sources. Wiki and forum URLs are fetched and extracted; YouTube rows
// carry only their description and are never fetched.
package manifest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gamelore/gamelore/internal/extract"
	"github.com/gamelore/gamelore/internal/log"
)

// RequiredColumns are the six columns every manifest must declare by name.
var RequiredColumns = []string{"wiki", "wiki_desc", "youtube", "yt_desc", "forum", "forum_desc"}

// ErrNotFound indicates no readable manifest exists for the requested game.
var ErrNotFound = errors.New("manifest not found")

// MissingColumnsError reports required columns absent from a manifest header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("manifest missing columns: %v", e.Columns)
}

// Row is one manifest row. All fields are optional; a row naming no source
// at all is a validation error.
type Row struct {
	Wiki      string
	WikiDesc  string
	YouTube   string
	YTDesc    string
	Forum     string
	ForumDesc string
}

// IsEmpty reports whether the row carries no values in any column.
func (r Row) IsEmpty() bool {
	return strings.TrimSpace(r.Wiki) == "" &&
		strings.TrimSpace(r.WikiDesc) == "" &&
		strings.TrimSpace(r.YouTube) == "" &&
		strings.TrimSpace(r.YTDesc) == "" &&
		strings.TrimSpace(r.Forum) == "" &&
		strings.TrimSpace(r.ForumDesc) == ""
}

// Entry is one processed knowledge source. Content is empty for YouTube
// entries, which are never fetched.
type Entry struct {
	URL         string
	Description string
	Title       string
	Content     string
}

// Bundle groups processed entries by content type. It is produced fresh per
// ingestion and never persisted on its own.
type Bundle struct {
	Wiki    []Entry
	YouTube []Entry
	Forum   []Entry
}

// Entries returns the bucket for the given content type, or nil for an
// unknown type.
func (b Bundle) Entries(contentType string) []Entry {
	switch contentType {
	case "wiki":
		return b.Wiki
	case "youtube":
		return b.YouTube
	case "forum":
		return b.Forum
	}
	return nil
}

// Extractor is the page-extraction dependency of the Processor. Satisfied by
// *extract.Extractor; tests substitute a stub.
type Extractor interface {
	Extract(ctx context.Context, rawURL string, kind extract.Kind) *extract.Content
}

// Processor loads, validates, and processes per-game manifests.
type Processor struct {
	dir       string
	extractor Extractor
	limiter   *rate.Limiter
	logger    log.Logger
}

// NewProcessor creates a Processor reading manifests from dir. politeDelay
// paces successive remote fetches during Process; zero disables pacing.
func NewProcessor(dir string, extractor Extractor, politeDelay time.Duration, logger log.Logger) *Processor {
	if logger == nil {
		logger = log.NewNop()
	}

	var limiter *rate.Limiter
	if politeDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(politeDelay), 1)
	}

	return &Processor{
		dir:       dir,
		extractor: extractor,
		limiter:   limiter,
		logger:    logger,
	}
}

// Available lists the games that have a manifest file on disk.
func (p *Processor) Available() []string {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		p.logger.Warn("reading manifest directory failed", "dir", p.dir, "error", err)
		return nil
	}

	var games []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		games = append(games, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(games)
	return games
}

// Load reads and parses the manifest for game. It returns ErrNotFound if the
// file is absent or unreadable, and a MissingColumnsError if the header lacks
// any required column.
func (p *Processor) Load(game string) ([]Row, error) {
	path := filepath.Join(p.dir, game+".csv")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // header defines the shape; rows may be ragged
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, path)
	}

	index, missing := columnIndex(records[0])
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, Row{
			Wiki:      field(record, index["wiki"]),
			WikiDesc:  field(record, index["wiki_desc"]),
			YouTube:   field(record, index["youtube"]),
			YTDesc:    field(record, index["yt_desc"]),
			Forum:     field(record, index["forum"]),
			ForumDesc: field(record, index["forum_desc"]),
		})
	}
	return rows, nil
}

// Validate checks the manifest's structure. It reports (true, nil) for a
// well-formed manifest, and (false, messages) otherwise. It performs no
// network calls.
func (p *Processor) Validate(game string) (bool, []string) {
	rows, err := p.Load(game)
	if err != nil {
		var missing *MissingColumnsError
		if errors.As(err, &missing) {
			return false, []string{fmt.Sprintf("Missing columns: %v", missing.Columns)}
		}
		return false, []string{"CSV file not found"}
	}

	emptyRows := 0
	for _, row := range rows {
		if row.IsEmpty() {
			emptyRows++
		}
	}
	if emptyRows > 0 {
		return false, []string{fmt.Sprintf("Found %d completely empty rows", emptyRows)}
	}

	return true, nil
}

// Process loads the manifest for game and produces its knowledge bundle.
// Wiki and forum URLs are fetched through the extractor, paced by the polite
// delay; extraction failures skip the entry. YouTube rows are passed through
// without any network call. A missing manifest yields the zero bundle.
func (p *Processor) Process(ctx context.Context, game string) Bundle {
	rows, err := p.Load(game)
	if err != nil {
		p.logger.Warn("manifest unavailable", "game", game, "error", err)
		return Bundle{}
	}

	var bundle Bundle

	for _, row := range rows {
		u := strings.TrimSpace(row.Wiki)
		if u == "" {
			continue
		}
		p.pace(ctx)
		if c := p.extractor.Extract(ctx, u, extract.KindWiki); c != nil {
			bundle.Wiki = append(bundle.Wiki, Entry{
				URL:         u,
				Description: strings.TrimSpace(row.WikiDesc),
				Title:       c.Title,
				Content:     c.Text,
			})
		}
	}

	for _, row := range rows {
		u := strings.TrimSpace(row.YouTube)
		if u == "" {
			continue
		}
		desc := strings.TrimSpace(row.YTDesc)
		title := "YouTube Video: Unknown"
		if desc != "" {
			title = "YouTube Video: " + desc
		}
		bundle.YouTube = append(bundle.YouTube, Entry{
			URL:         u,
			Description: desc,
			Title:       title,
		})
	}

	for _, row := range rows {
		u := strings.TrimSpace(row.Forum)
		if u == "" {
			continue
		}
		p.pace(ctx)
		if c := p.extractor.Extract(ctx, u, extract.KindForum); c != nil {
			bundle.Forum = append(bundle.Forum, Entry{
				URL:         u,
				Description: strings.TrimSpace(row.ForumDesc),
				Title:       c.Title,
				Content:     c.Text,
			})
		}
	}

	p.logger.Info("manifest processed",
		"game", game,
		"wiki", len(bundle.Wiki),
		"youtube", len(bundle.YouTube),
		"forum", len(bundle.Forum))

	return bundle
}

// pace waits for the polite-delay limiter before a remote fetch.
func (p *Processor) pace(ctx context.Context) {
	if p.limiter == nil {
		return
	}
	_ = p.limiter.Wait(ctx)
}

// columnIndex maps required column names to their header positions and
// reports the names that are absent.
func columnIndex(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(RequiredColumns))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return index, missing
}

// field returns record[i], tolerating ragged rows.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
