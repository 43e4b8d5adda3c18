package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"football-pulse/internal/model"
	"football-pulse/internal/scores"
)

const articlesFile = "articles.json"

// JSONStore reads and writes the static data files served to the frontend.
// Writes go through a temp file and a rename so readers never see a partial file.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

// Dir returns the data directory.
func (s *JSONStore) Dir() string { return s.dir }

func matchesFile(kind scores.Kind) string {
	return fmt.Sprintf("%s-matches.json", kind)
}

// ReadArticles returns the stored articles. A missing file yields an empty list.
func (s *JSONStore) ReadArticles() ([]model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Article
	if err := s.read(articlesFile, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Article{}
	}
	return out, nil
}

// WriteArticles replaces articles.json.
func (s *JSONStore) WriteArticles(articles []model.Article) error {
	if articles == nil {
		articles = []model.Article{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(articlesFile, articles)
}

// ReadMatches returns a stored view. A missing file yields an empty list.
func (s *JSONStore) ReadMatches(kind scores.Kind) ([]model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Match
	if err := s.read(matchesFile(kind), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Match{}
	}
	return out, nil
}

// WriteMatches replaces <kind>-matches.json.
func (s *JSONStore) WriteMatches(kind scores.Kind, matches []model.Match) error {
	if matches == nil {
		matches = []model.Match{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(matchesFile(kind), matches)
}

func (s *JSONStore) read(name string, v any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *JSONStore) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
