package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"football-pulse/internal/model"
)

// fakeGetter serves canned records per league_id (or "" for unpartitioned calls).
type fakeGetter struct {
	byLeague map[string][]string
	calls    []url.Values
	err      error
}

func (f *fakeGetter) Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	out := []json.RawMessage{}
	for _, r := range f.byLeague[params.Get("league_id")] {
		out = append(out, json.RawMessage(r))
	}
	return out, nil
}

func event(id, status, date string) string {
	return fmt.Sprintf(`{"match_id":%q,"match_status":%q,"match_date":%q,"match_time":"12:00"}`, id, status, date)
}

func newTestService(g Getter, leagues ...string) *Service {
	s := NewService(&APIFootball{Leagues: leagues}, g)
	s.Now = func() time.Time { return testNow }
	return s
}

func TestFetchLiveFiltersInPlay(t *testing.T) {
	g := &fakeGetter{byLeague: map[string][]string{"": {
		event("1", "LIVE", "2025-05-16"),
		event("2", "FT", "2025-05-16"),
		event("3", "HT", "2025-05-16"),
		event("4", "", "2025-05-16"),
	}}}
	got := newTestService(g).FetchFootballScores(context.Background(), KindLive)
	if ids := ids(got); fmt.Sprint(ids) != "[1 3]" {
		t.Fatalf("live ids = %v, want [1 3]", ids)
	}
	if g.calls[0].Get("action") != "get_live_scores" {
		t.Errorf("live action = %q", g.calls[0].Get("action"))
	}
}

func TestFetchTodayKeepsNotStartedAndLive(t *testing.T) {
	g := &fakeGetter{byLeague: map[string][]string{"": {
		event("1", "LIVE", "2025-05-16"),
		event("2", "Finished", "2025-05-16"),
		event("3", "", "2025-05-16"),
	}}}
	got := newTestService(g).FetchFootballScores(context.Background(), KindToday)
	if ids := ids(got); fmt.Sprint(ids) != "[1 3]" {
		t.Fatalf("today ids = %v, want [1 3]", ids)
	}
	q := g.calls[0]
	if q.Get("from") != "2025-05-16" || q.Get("to") != "2025-05-16" {
		t.Errorf("today range = %s..%s", q.Get("from"), q.Get("to"))
	}
}

func TestFetchUpcomingSortedCappedNeverFinished(t *testing.T) {
	var recs []string
	for i := 0; i < 15; i++ {
		// descending dates so sorting is observable
		d := testNow.AddDate(0, 0, 6-i%7).Format("2006-01-02")
		recs = append(recs, event(fmt.Sprintf("u%02d", i), "", d))
	}
	recs = append(recs, event("done", "FT", "2025-05-16"), event("live", "LIVE", "2025-05-16"))
	g := &fakeGetter{byLeague: map[string][]string{"": recs}}

	got := newTestService(g).FetchFootballScores(context.Background(), KindUpcoming)
	if len(got) != MaxUpcoming {
		t.Fatalf("len = %d, want %d", len(got), MaxUpcoming)
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Kickoff.Before(got[j].Kickoff) }) {
		t.Errorf("upcoming not sorted by kickoff: %v", ids(got))
	}
	for _, m := range got {
		if m.Phase != model.PhaseNotStarted {
			t.Errorf("upcoming returned %s with phase %s", m.ID, m.Phase)
		}
	}
	q := g.calls[0]
	if q.Get("status") != "NS" || q.Get("to") != "2025-05-23" {
		t.Errorf("upcoming query = %v", q)
	}
}

func TestFetchUpcomingUndatedLast(t *testing.T) {
	g := &fakeGetter{byLeague: map[string][]string{"": {
		`{"match_id":"2","match_status":""}`,
		event("1", "", "2025-05-17"),
		`{"match_id":"3","match_status":"","match_date":"soon"}`,
		event("0", "", "2025-05-16"),
	}}}
	got := newTestService(g).FetchFootballScores(context.Background(), KindUpcoming)
	if ids := ids(got); fmt.Sprint(ids) != "[0 1 2 3]" {
		t.Fatalf("upcoming ids = %v, want [0 1 2 3]", ids)
	}
}

func TestFetchDeduplicatesAcrossLeagues(t *testing.T) {
	g := &fakeGetter{byLeague: map[string][]string{
		"100": {event("1", "LIVE", "2025-05-16"), event("2", "LIVE", "2025-05-16")},
		"200": {`{"match_id":"1","match_status":"LIVE","match_hometeam_score":"3"}`},
	}}
	got := newTestService(g, "100", "200", "100").FetchFootballScores(context.Background(), KindLive)
	if len(g.calls) != 2 {
		t.Errorf("expected one call per distinct league, got %d", len(g.calls))
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 merged matches, got %v", ids(got))
	}
	if got[0].ID != "1" || got[0].HomeTeam.Score != 3 {
		t.Errorf("last write should win for id 1, got %+v", got[0])
	}
}

func TestFetchTransportErrorYieldsEmpty(t *testing.T) {
	g := &fakeGetter{err: errors.New("connection refused")}
	s := newTestService(g)
	got := s.FetchFootballScores(context.Background(), KindToday)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if _, err := s.Fetch(context.Background(), KindToday); err == nil {
		t.Fatal("Fetch should report the transport error")
	}
}

func TestFetchUnknownKind(t *testing.T) {
	g := &fakeGetter{}
	got := newTestService(g).FetchFootballScores(context.Background(), Kind("yesterday"))
	if len(got) != 0 || len(g.calls) != 0 {
		t.Fatalf("unknown kind should not call upstream, got %v calls=%d", got, len(g.calls))
	}
}

func TestFetchTodayRateLimitedEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, QueryKey("APIkey", "k"), BareArray)
	s := newTestService(c)
	got := s.FetchFootballScores(context.Background(), KindToday)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected [], got %#v", got)
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Errorf("json = %s, want []", b)
	}
}

type memCache struct {
	data map[Kind][]model.Match
	sets int
}

func (m *memCache) CachedMatches(ctx context.Context, provider string, kind Kind) ([]model.Match, bool, error) {
	ms, ok := m.data[kind]
	return ms, ok, nil
}

func (m *memCache) CacheMatches(ctx context.Context, provider string, kind Kind, ms []model.Match, ttl time.Duration) error {
	m.data[kind] = ms
	m.sets++
	return nil
}

func TestFetchUsesCache(t *testing.T) {
	g := &fakeGetter{byLeague: map[string][]string{"": {event("1", "LIVE", "2025-05-16")}}}
	s := newTestService(g)
	cache := &memCache{data: map[Kind][]model.Match{}}
	s.Cache = cache
	s.CacheTTL = time.Minute

	for i := 0; i < 3; i++ {
		if got := s.FetchFootballScores(context.Background(), KindLive); len(got) != 1 {
			t.Fatalf("round %d: got %v", i, ids(got))
		}
	}
	if len(g.calls) != 1 || cache.sets != 1 {
		t.Errorf("expected a single upstream call, got calls=%d sets=%d", len(g.calls), cache.sets)
	}
}

func TestFetchDoesNotCacheDegradedAnswers(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusTooManyRequests)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := int(status.Load())
		w.WriteHeader(code)
		if code == http.StatusOK {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	s := newTestService(NewClient(srv.URL, time.Second, nil, BareArray), "100", "200")
	cache := &memCache{data: map[Kind][]model.Match{}}
	s.Cache = cache
	s.CacheTTL = time.Minute

	if got := s.FetchFootballScores(context.Background(), KindLive); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
	if cache.sets != 0 {
		t.Fatalf("degraded view was cached (sets=%d)", cache.sets)
	}

	status.Store(http.StatusOK)
	if got := s.FetchFootballScores(context.Background(), KindLive); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
	if cache.sets != 1 {
		t.Errorf("genuinely empty view should be cached, sets=%d", cache.sets)
	}
}

func TestAPISportsRequestsResolveLeaguesByCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/leagues":
			if r.URL.Query().Get("country") != "Turkey" {
				t.Errorf("country = %q", r.URL.Query().Get("country"))
			}
			w.Write([]byte(`{"response":[{"league":{"id":203}},{"league":{"id":204}}]}`))
		default:
			w.Write([]byte(`{"response":[]}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil, ResponseField("response"))
	p := &APISports{Country: "Turkey", Season: "2025"}

	reqs, err := p.Requests(context.Background(), c, KindToday, testNow)
	if err != nil {
		t.Fatalf("Requests error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected a request per league, got %d", len(reqs))
	}
	if reqs[0].Params.Get("league") != "203" || reqs[0].Params.Get("season") != "2025" || reqs[0].Params.Get("date") != "2025-05-16" {
		t.Errorf("today params = %v", reqs[0].Params)
	}

	live, err := p.Requests(context.Background(), c, KindLive, testNow)
	if err != nil || len(live) != 1 || live[0].Params.Get("live") != "203-204" {
		t.Errorf("live requests = %+v err=%v", live, err)
	}
}

func ids(ms []model.Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}
