package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/scoreboard"
	"football-pulse/internal/scores"

	"github.com/gorilla/websocket"
)

type memArticles struct {
	list []model.Article
	err  error
}

func (m memArticles) ReadArticles() ([]model.Article, error) { return m.list, m.err }

type fakeScores struct {
	mu    sync.Mutex
	calls map[scores.Kind]int
}

func (f *fakeScores) FetchFootballScores(_ context.Context, kind scores.Kind) []model.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[scores.Kind]int{}
	}
	f.calls[kind]++
	return []model.Match{{ID: string(kind) + "-1", Phase: model.PhaseLive}}
}

func sampleArticles(n int) []model.Article {
	out := make([]model.Article, n)
	for i := range out {
		out[i] = model.Article{
			ID:      fmt.Sprintf("a%d", i+1),
			Title:   fmt.Sprintf("Haber %d", i+1),
			Content: "Galatasaray maçı",
			Summary: "Özet",
		}
	}
	return out
}

func newTestServer(t *testing.T, src ArticleSource) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "articles.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewServer(Options{
		PublicDir:    dir,
		SiteName:     "FootballPulse",
		SiteURL:      "https://pulse.example.com",
		PollInterval: 20 * time.Millisecond,
	}, src, &fakeScores{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, memArticles{})
	var body map[string]any
	if code := getJSON(t, ts.URL+"/api/health", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestArticlesPagination(t *testing.T) {
	ts := newTestServer(t, memArticles{list: sampleArticles(6)})
	cases := []struct {
		query string
		code  int
		n     int
		first string
	}{
		{"", http.StatusOK, 4, "a1"},
		{"?page=2", http.StatusOK, 2, "a5"},
		{"?page=9", http.StatusOK, 0, ""},
		{"?page=x", http.StatusBadRequest, 0, ""},
	}
	for _, tc := range cases {
		var body struct {
			Articles   []model.Article `json:"articles"`
			TotalPages int             `json:"totalPages"`
		}
		code := getJSON(t, ts.URL+"/api/articles"+tc.query, &body)
		if code != tc.code {
			t.Errorf("%q: status %d, want %d", tc.query, code, tc.code)
			continue
		}
		if code != http.StatusOK {
			continue
		}
		if len(body.Articles) != tc.n || body.TotalPages != 2 {
			t.Errorf("%q: %d articles, %d pages", tc.query, len(body.Articles), body.TotalPages)
		}
		if tc.n > 0 && body.Articles[0].ID != tc.first {
			t.Errorf("%q: first = %s", tc.query, body.Articles[0].ID)
		}
	}
}

func TestArticleByID(t *testing.T) {
	ts := newTestServer(t, memArticles{list: sampleArticles(2)})
	var a model.Article
	if code := getJSON(t, ts.URL+"/api/articles/a2", &a); code != http.StatusOK || a.Title != "Haber 2" {
		t.Errorf("a2 = %d %+v", code, a)
	}
	if code := getJSON(t, ts.URL+"/api/articles/nope", nil); code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", code)
	}
}

func TestArticlesReadError(t *testing.T) {
	ts := newTestServer(t, memArticles{err: errors.New("disk")})
	if code := getJSON(t, ts.URL+"/api/articles", nil); code != http.StatusInternalServerError {
		t.Errorf("status = %d", code)
	}
}

func TestSearch(t *testing.T) {
	list := sampleArticles(2)
	list[1].Content = "Fenerbahçe transferi"
	ts := newTestServer(t, memArticles{list: list})
	var body struct {
		Articles []model.Article `json:"articles"`
	}
	getJSON(t, ts.URL+"/api/search?q=galatasaray", &body)
	if len(body.Articles) != 1 || body.Articles[0].ID != "a1" {
		t.Errorf("search = %+v", body.Articles)
	}
	getJSON(t, ts.URL+"/api/search?q=", &body)
	if len(body.Articles) != 0 {
		t.Errorf("empty query should match nothing, got %d", len(body.Articles))
	}
}

func TestScoresEndpoint(t *testing.T) {
	ts := newTestServer(t, memArticles{})
	var ms []model.Match
	if code := getJSON(t, ts.URL+"/api/scores/today", &ms); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(ms) != 1 || ms[0].ID != "today-1" {
		t.Errorf("matches = %+v", ms)
	}
	if code := getJSON(t, ts.URL+"/api/scores/yesterday", nil); code != http.StatusNotFound {
		t.Errorf("unknown view status = %d", code)
	}
}

func TestStaticDataFile(t *testing.T) {
	ts := newTestServer(t, memArticles{})
	resp, err := http.Get(ts.URL + "/data/articles.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("static = %d %q", resp.StatusCode, b)
	}
}

func TestArticlePageMeta(t *testing.T) {
	list := sampleArticles(1)
	list[0].Title = `Derbi "özel"`
	list[0].ImageURL = "/data/images/a1.webp"
	ts := newTestServer(t, memArticles{list: list})

	resp, err := http.Get(ts.URL + "/article/a1")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	page := string(b)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	for _, want := range []string{
		`<meta property="og:title" content="Derbi &#34;özel&#34;">`,
		`<meta name="description" content="Özet">`,
		`<meta property="og:image" content="https://pulse.example.com/data/images/a1.webp">`,
		`<meta property="og:url" content="https://pulse.example.com/article/a1">`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}

	resp, err = http.Get(ts.URL + "/article/missing")
	if err != nil {
		t.Fatal(err)
	}
	b, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(b), defaultTitle) {
		t.Errorf("unknown article should render defaults with 404, got %d", resp.StatusCode)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// waitFrame reads until a frame satisfies ok.
func waitFrame(t *testing.T, conn *websocket.Conn, ok func(Frame) bool) Frame {
	t.Helper()
	for i := 0; i < 50; i++ {
		if f := readFrame(t, conn); ok(f) {
			return f
		}
	}
	t.Fatal("expected frame never arrived")
	return Frame{}
}

func TestWebSocketTabs(t *testing.T) {
	ts := newTestServer(t, memArticles{})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readFrame(t, conn)
	if first.Type != "scores" || first.State != scoreboard.StateIdle {
		t.Fatalf("initial frame = %+v", first)
	}

	if err := conn.WriteJSON(ClientMessage{Tab: "upcoming"}); err != nil {
		t.Fatal(err)
	}
	f := waitFrame(t, conn, func(f Frame) bool {
		return f.Tab == scores.KindUpcoming && f.State == scoreboard.StateRendered
	})
	if len(f.Matches) != 1 || f.Matches[0].ID != "upcoming-1" {
		t.Errorf("upcoming matches = %+v", f.Matches)
	}

	if err := conn.WriteJSON(ClientMessage{Tab: "live"}); err != nil {
		t.Fatal(err)
	}
	live := waitFrame(t, conn, func(f Frame) bool {
		return f.Tab == scores.KindLive && f.State == scoreboard.StateRendered
	})
	if live.Seq <= f.Seq {
		t.Errorf("seq did not advance: %d then %d", f.Seq, live.Seq)
	}
	// the live tab keeps refreshing
	waitFrame(t, conn, func(x Frame) bool {
		return x.Tab == scores.KindLive && x.State == scoreboard.StateRendered && x.UpdatedAt.After(live.UpdatedAt)
	})
}

func TestWebSocketInitialTabQuery(t *testing.T) {
	ts := newTestServer(t, memArticles{})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?tab=today"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFrame(t, conn, func(f Frame) bool {
		return f.Tab == scores.KindToday && f.State == scoreboard.StateRendered
	})
}
