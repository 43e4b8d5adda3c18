package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"football-pulse/internal/model"
	"football-pulse/internal/scores"
)

func TestReadArticlesMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "data"))
	got, err := s.ReadArticles()
	if err != nil {
		t.Fatalf("ReadArticles error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestWriteThenReadArticles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewJSONStore(dir)
	in := []model.Article{
		{ID: "a", Title: "Derbi", Summary: "Derbi...", URL: "https://x/1"},
		{ID: "b", Title: "Transfer", URL: "https://x/2"},
	}
	if err := s.WriteArticles(in); err != nil {
		t.Fatalf("WriteArticles error: %v", err)
	}
	got, err := s.ReadArticles()
	if err != nil {
		t.Fatalf("ReadArticles error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Title != "Transfer" {
		t.Fatalf("unexpected round trip: %#v", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteMatchesFileNames(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir)
	for _, k := range scores.Kinds {
		if err := s.WriteMatches(k, nil); err != nil {
			t.Fatalf("WriteMatches(%s) error: %v", k, err)
		}
	}
	for _, name := range []string{"live-matches.json", "today-matches.json", "upcoming-matches.json"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if strings.TrimSpace(string(b)) != "[]" {
			t.Errorf("%s = %q, want []", name, b)
		}
	}
}

func TestWriteMatchesKeepsLogoNull(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir)
	ms := []model.Match{{ID: "1", HomeTeam: model.Team{Name: "A"}, AwayTeam: model.Team{Name: "B"}}}
	if err := s.WriteMatches(scores.KindLive, ms); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "live-matches.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"logo": null`) {
		t.Errorf("expected logo null in output, got %s", b)
	}
	got, err := s.ReadMatches(scores.KindLive)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].HomeTeam.Logo != nil {
		t.Errorf("unexpected read back: %#v", got)
	}
}

func TestReadArticlesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "articles.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(dir).ReadArticles(); err == nil {
		t.Fatal("expected decode error")
	}
}
