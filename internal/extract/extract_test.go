package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gamelore/gamelore/internal/log"
)

func newTestExtractor() *Extractor {
	return New(Config{Timeout: 5 * time.Second}, log.NewNop())
}

// spyServer counts requests so tests can assert that no network call happened.
func spyServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestExtractRejectsEmptyURLWithoutFetch(t *testing.T) {
	_, calls := spyServer(t, func(w http.ResponseWriter, r *http.Request) {})
	e := newTestExtractor()

	for _, u := range []string{"", "   ", "not a url", "/relative/only"} {
		if got := e.Extract(context.Background(), u, KindWiki); got != nil {
			t.Errorf("Extract(%q) = %+v, want nil", u, got)
		}
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no HTTP calls, got %d", n)
	}
}

func TestExtractReturnsNilOnHTTPError(t *testing.T) {
	srv, _ := spyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	e := newTestExtractor()

	if got := e.Extract(context.Background(), srv.URL, KindForum); got != nil {
		t.Errorf("Extract on 404 = %+v, want nil", got)
	}
}

func TestExtractWikiFirstSelectorWins(t *testing.T) {
	page := `<html><head><title>  Boss Guide - Wiki  </title></head><body>
		<script>var tracking = true;</script>
		<style>.x{color:red}</style>
		<div class="mw-content-ltr">The boss has three phases and each phase changes its attack pattern. Dodge toward the left claw during phase one to stay safe.</div>
		<div class="content">This secondary region must not be picked up by the extractor.</div>
	</body></html>`
	srv, _ := spyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	e := newTestExtractor()

	got := e.Extract(context.Background(), srv.URL, KindWiki)
	if got == nil {
		t.Fatal("Extract returned nil for a valid wiki page")
	}
	if got.Title != "Boss Guide - Wiki" {
		t.Errorf("Title = %q, want trimmed page title", got.Title)
	}
	if !strings.Contains(got.Text, "three phases") {
		t.Errorf("Text missing main region content: %q", got.Text)
	}
	if strings.Contains(got.Text, "secondary region") {
		t.Errorf("Text contains later selector's content: %q", got.Text)
	}
	if strings.Contains(got.Text, "tracking") {
		t.Errorf("script content leaked into text: %q", got.Text)
	}
	if got.URL != srv.URL {
		t.Errorf("URL = %q, want %q", got.URL, srv.URL)
	}
}

func TestExtractForumConcatenatesAllPosts(t *testing.T) {
	page := `<html><head><title>Thread</title></head><body>
		<div class="post-content">First reply explains the quest trigger in the northern camp area of the map.</div>
		<div class="post-content">Second reply adds that you must finish the shrine puzzle beforehand.</div>
	</body></html>`
	srv, _ := spyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	e := newTestExtractor()

	got := e.Extract(context.Background(), srv.URL, KindForum)
	if got == nil {
		t.Fatal("Extract returned nil for a valid forum page")
	}
	if !strings.Contains(got.Text, "First reply") || !strings.Contains(got.Text, "Second reply") {
		t.Errorf("forum extraction should join all matching posts, got %q", got.Text)
	}
}

func TestExtractFallsBackToBody(t *testing.T) {
	page := `<html><body><p>` + strings.Repeat("No known selector matches this page layout. ", 5) + `</p></body></html>`
	srv, _ := spyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	e := newTestExtractor()

	got := e.Extract(context.Background(), srv.URL, KindWiki)
	if got == nil {
		t.Fatal("Extract returned nil, fallback path should have produced content")
	}
	if got.Title != UnknownTitle {
		t.Errorf("Title = %q, want %q for a page without <title>", got.Title, UnknownTitle)
	}
	if !strings.Contains(got.Text, "No known selector") {
		t.Errorf("fallback text missing body content: %q", got.Text)
	}
}

func TestExtractRejectsShortContent(t *testing.T) {
	srv, _ := spyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Stub</title></head><body><article>Too short.</article></body></html>`))
	})
	e := newTestExtractor()

	if got := e.Extract(context.Background(), srv.URL, KindWiki); got != nil {
		t.Errorf("Extract on sub-threshold content = %+v, want nil", got)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "collapses whitespace",
			in:   "spaced \n\t  out   text",
			want: "spaced out text",
		},
		{
			name: "strips boilerplate case-insensitively",
			in:   "ADVERTISEMENT The guide. cookie policy Privacy Policy terms of service End.",
			want: "The guide. End.",
		},
		{
			name: "strips breadcrumbs",
			in:   "Home > Games > The actual content starts here.",
			want: "The actual content starts here.",
		},
		{
			name: "strips you-are-here navigation",
			in:   "You are here: Forum > Useful reply text.",
			want: "Useful reply text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
