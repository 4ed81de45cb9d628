package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gamelore/gamelore/internal/extract"
	"github.com/gamelore/gamelore/internal/log"
)

// stubExtractor returns canned content per URL; nil entries simulate
// extraction failures.
type stubExtractor struct {
	contents map[string]*extract.Content
	calls    []string
	kinds    []extract.Kind
}

func (s *stubExtractor) Extract(_ context.Context, rawURL string, kind extract.Kind) *extract.Content {
	s.calls = append(s.calls, rawURL)
	s.kinds = append(s.kinds, kind)
	return s.contents[rawURL]
}

func writeManifest(t *testing.T, dir, game, content string) {
	t.Helper()
	path := filepath.Join(dir, game+".csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
}

const validHeader = "wiki,wiki_desc,youtube,yt_desc,forum,forum_desc\n"

func newTestProcessor(t *testing.T, stub *stubExtractor) (*Processor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewProcessor(dir, stub, 0, log.NewNop()), dir
}

func TestValidateWellFormed(t *testing.T) {
	p, dir := newTestProcessor(t, &stubExtractor{})
	writeManifest(t, dir, "hollow_knight", validHeader+
		"https://wiki.example/hk,Main wiki,https://youtu.be/abc,Boss guide,https://forum.example/hk,Tips thread\n")

	ok, errs := p.Validate("hollow_knight")
	if !ok || len(errs) != 0 {
		t.Fatalf("Validate() = (%v, %v), want (true, [])", ok, errs)
	}
}

func TestValidateMissingFile(t *testing.T) {
	p, _ := newTestProcessor(t, &stubExtractor{})

	ok, errs := p.Validate("no_such_game")
	if ok {
		t.Fatal("Validate() = true for a missing manifest")
	}
	if len(errs) != 1 || errs[0] != "CSV file not found" {
		t.Fatalf("errs = %v, want [CSV file not found]", errs)
	}
}

func TestValidateMissingColumns(t *testing.T) {
	p, dir := newTestProcessor(t, &stubExtractor{})
	writeManifest(t, dir, "celeste", "wiki,wiki_desc,youtube\nurl,desc,url2\n")

	ok, errs := p.Validate("celeste")
	if ok {
		t.Fatal("Validate() = true for a manifest with missing columns")
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one message", errs)
	}
	for _, col := range []string{"yt_desc", "forum", "forum_desc"} {
		if !strings.Contains(errs[0], col) {
			t.Errorf("error %q does not mention missing column %q", errs[0], col)
		}
	}
}

func TestValidateEmptyRows(t *testing.T) {
	p, dir := newTestProcessor(t, &stubExtractor{})
	writeManifest(t, dir, "stardew", validHeader+
		"https://wiki.example/sv,desc,,,,\n"+
		",,,,,\n"+
		",,,,,\n")

	ok, errs := p.Validate("stardew")
	if ok {
		t.Fatal("Validate() = true for a manifest with empty rows")
	}
	if len(errs) != 1 || errs[0] != "Found 2 completely empty rows" {
		t.Fatalf("errs = %v, want [Found 2 completely empty rows]", errs)
	}
}

func TestLoadMissingColumnsAlsoFailsLoad(t *testing.T) {
	p, dir := newTestProcessor(t, &stubExtractor{})
	writeManifest(t, dir, "hades", "wiki,forum\na,b\n")

	_, err := p.Load("hades")
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("Load() error = %v, want MissingColumnsError", err)
	}
}

func TestLoadNotFound(t *testing.T) {
	p, _ := newTestProcessor(t, &stubExtractor{})
	if _, err := p.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestProcessBuildsBundle(t *testing.T) {
	stub := &stubExtractor{contents: map[string]*extract.Content{
		"https://wiki.example/page": {
			URL:   "https://wiki.example/page",
			Title: "Walkthrough",
			Text:  "A long walkthrough of the opening area with detailed boss advice.",
		},
		// forum URL absent from the map: extraction failure, skipped
	}}
	p, dir := newTestProcessor(t, stub)
	writeManifest(t, dir, "er", validHeader+
		"https://wiki.example/page,Opening guide,https://youtu.be/xyz,Speedrun route,https://forum.example/dead,Build thread\n")

	bundle := p.Process(context.Background(), "er")

	if len(bundle.Wiki) != 1 {
		t.Fatalf("wiki entries = %d, want 1", len(bundle.Wiki))
	}
	wiki := bundle.Wiki[0]
	if wiki.Title != "Walkthrough" || wiki.Description != "Opening guide" || wiki.Content == "" {
		t.Errorf("unexpected wiki entry: %+v", wiki)
	}

	if len(bundle.YouTube) != 1 {
		t.Fatalf("youtube entries = %d, want 1", len(bundle.YouTube))
	}
	yt := bundle.YouTube[0]
	if yt.Title != "YouTube Video: Speedrun route" {
		t.Errorf("youtube title = %q", yt.Title)
	}
	if yt.Content != "" {
		t.Errorf("youtube entry must not carry content, got %q", yt.Content)
	}

	if len(bundle.Forum) != 0 {
		t.Errorf("forum entries = %d, want 0 for a failed extraction", len(bundle.Forum))
	}

	// YouTube rows never hit the extractor.
	wantCalls := []string{"https://wiki.example/page", "https://forum.example/dead"}
	if !reflect.DeepEqual(stub.calls, wantCalls) {
		t.Errorf("extractor calls = %v, want %v", stub.calls, wantCalls)
	}
	wantKinds := []extract.Kind{extract.KindWiki, extract.KindForum}
	if !reflect.DeepEqual(stub.kinds, wantKinds) {
		t.Errorf("extractor kinds = %v, want %v", stub.kinds, wantKinds)
	}
}

func TestProcessMissingManifestYieldsZeroBundle(t *testing.T) {
	p, _ := newTestProcessor(t, &stubExtractor{})

	bundle := p.Process(context.Background(), "absent")
	if len(bundle.Wiki)+len(bundle.YouTube)+len(bundle.Forum) != 0 {
		t.Errorf("bundle for missing manifest = %+v, want zero bundle", bundle)
	}
}

func TestAvailable(t *testing.T) {
	p, dir := newTestProcessor(t, &stubExtractor{})
	writeManifest(t, dir, "zelda", validHeader)
	writeManifest(t, dir, "doom", validHeader)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := p.Available()
	want := []string{"doom", "zelda"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestBundleEntries(t *testing.T) {
	b := Bundle{
		Wiki:    []Entry{{URL: "w"}},
		YouTube: []Entry{{URL: "y"}},
		Forum:   []Entry{{URL: "f"}},
	}
	if got := b.Entries("wiki"); len(got) != 1 || got[0].URL != "w" {
		t.Errorf("Entries(wiki) = %v", got)
	}
	if got := b.Entries("youtube"); len(got) != 1 || got[0].URL != "y" {
		t.Errorf("Entries(youtube) = %v", got)
	}
	if got := b.Entries("forum"); len(got) != 1 || got[0].URL != "f" {
		t.Errorf("Entries(forum) = %v", got)
	}
	if got := b.Entries("podcast"); got != nil {
		t.Errorf("Entries(podcast) = %v, want nil", got)
	}
}
