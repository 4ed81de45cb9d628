// Package extract fetches wiki and forum pages and reduces them to clean
// text suitable for chunking and embedding.
//
// Extraction is best-effort by contract: every failure mode (bad URL, network
// error, non-2xx status, unparseable HTML, sub-threshold content) yields nil
// rather than an error, so a single dead link never aborts an ingestion batch.
package extract

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"

	"github.com/gamelore/gamelore/internal/log"
)

// Kind selects the selector set used to locate the content region of a page.
type Kind string

const (
	// KindWiki targets MediaWiki-style article layouts.
	KindWiki Kind = "wiki"

	// KindForum targets thread/post layouts.
	KindForum Kind = "forum"
)

// UnknownTitle is reported when a page has no <title> element.
const UnknownTitle = "Unknown Title"

// wikiSelectors are tried in order; the first match wins.
var wikiSelectors = []string{
	"div.mw-content-ltr",
	"div.content",
	"div.main-content",
	"article",
	"div#content",
	"div#mw-content-text",
}

// forumSelectors are tried in order; all matches of the first matching
// selector are concatenated, since a thread spreads across many posts.
var forumSelectors = []string{
	"div.post-content",
	"div.entry-content",
	"div.content",
	"div.post",
	"article",
	`div[class*="post"]`,
	`div[class*="content"]`,
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	boilerplateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Advertisement\s*`),
		regexp.MustCompile(`(?i)Cookie\s*Policy\s*`),
		regexp.MustCompile(`(?i)Privacy\s*Policy\s*`),
		regexp.MustCompile(`(?i)Terms\s*of\s*Service\s*`),
	}

	breadcrumbRes = []*regexp.Regexp{
		regexp.MustCompile(`Home\s*>\s*.*?>\s*`),
		regexp.MustCompile(`You are here:\s*.*?>\s*`),
	}
)

// Content is the cleaned result of extracting a single page.
type Content struct {
	URL   string
	Title string
	Text  string
}

// Config holds extractor settings.
type Config struct {
	// Timeout bounds each outbound fetch. Default 10s.
	Timeout time.Duration

	// UserAgent is sent on every request. Default is a browser UA.
	UserAgent string

	// MinContentLength is the quality gate: cleaned text shorter than this
	// is discarded. Default 50.
	MinContentLength int
}

// Extractor fetches pages and extracts cleaned text from them.
type Extractor struct {
	timeout   time.Duration
	userAgent string
	minLength int
	logger    log.Logger
}

// New creates an Extractor. Zero-valued Config fields fall back to defaults.
func New(cfg Config, logger log.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = 50
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Extractor{
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		minLength: cfg.MinContentLength,
		logger:    logger,
	}
}

// Extract fetches rawURL and returns its title and cleaned text, or nil if
// the URL is empty or invalid, the fetch fails, or the cleaned content is
// below the quality gate. An empty or malformed URL performs no network call.
func (e *Extractor) Extract(ctx context.Context, rawURL string, kind Kind) *Content {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Host == "" {
		e.logger.Debug("skipping malformed url", "url", rawURL)
		return nil
	}

	if ctx.Err() != nil {
		return nil
	}

	body, err := e.fetch(rawURL)
	if err != nil {
		e.logger.Warn("fetch failed", "url", rawURL, "kind", kind, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("parse failed", "url", rawURL, "error", err)
		return nil
	}

	doc.Find("script, style").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = UnknownTitle
	}

	text := selectContent(doc, kind)
	if text == "" {
		text = e.fallbackContent(body, parsed, doc)
	}

	text = CleanText(text)
	if len(text) < e.minLength {
		e.logger.Debug("content below quality gate",
			"url", rawURL, "length", len(text), "min", e.minLength)
		return nil
	}

	return &Content{URL: rawURL, Title: title, Text: text}
}

// fetch performs a single GET with the configured timeout and user agent.
func (e *Extractor) fetch(rawURL string) ([]byte, error) {
	c := colly.NewCollector(colly.UserAgent(e.userAgent))
	c.SetRequestTimeout(e.timeout)
	// Manifest URLs are user-curated single pages, not a crawl; one GET
	// per URL, no robots.txt round trip.
	c.IgnoreRobotsTxt = true

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, err
	}
	return body, nil
}

// selectContent tries the kind-specific selector list against the document.
// Wiki pages take the first matching region; forum pages concatenate all
// matches of the first matching selector.
func selectContent(doc *goquery.Document, kind Kind) string {
	switch kind {
	case KindForum:
		for _, sel := range forumSelectors {
			nodes := doc.Find(sel)
			if nodes.Length() == 0 {
				continue
			}
			parts := make([]string, 0, nodes.Length())
			nodes.Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, s.Text())
			})
			return strings.Join(parts, " ")
		}
	default:
		for _, sel := range wikiSelectors {
			if node := doc.Find(sel).First(); node.Length() > 0 {
				return node.Text()
			}
		}
	}
	return ""
}

// fallbackContent is used when no selector matches: readability strips the
// page down to its main article text; if even that fails, the raw body text
// is used.
func (e *Extractor) fallbackContent(body []byte, pageURL *url.URL, doc *goquery.Document) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent
	}
	return doc.Find("body").Text()
}

// CleanText collapses whitespace runs and strips common boilerplate phrases
// and breadcrumb navigation prefixes from extracted text.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = whitespaceRe.ReplaceAllString(text, " ")

	for _, re := range boilerplateRes {
		text = re.ReplaceAllString(text, "")
	}
	for _, re := range breadcrumbRes {
		text = re.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}
