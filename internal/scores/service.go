package scores

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"football-pulse/internal/model"
)

// MaxUpcoming caps the upcoming view.
const MaxUpcoming = 10

// Cache stores normalized views for a short time so concurrent viewers share one upstream call.
type Cache interface {
	CachedMatches(ctx context.Context, provider string, kind Kind) ([]model.Match, bool, error)
	CacheMatches(ctx context.Context, provider string, kind Kind, matches []model.Match, ttl time.Duration) error
}

// checkedGetter is implemented by getters that can tell a degraded empty
// answer from a genuinely empty one.
type checkedGetter interface {
	GetChecked(ctx context.Context, path string, params url.Values) ([]json.RawMessage, bool, error)
}

// Service fetches, normalizes, merges and filters one scoreboard view.
type Service struct {
	Client   Getter
	Provider Provider
	Cache    Cache // optional
	CacheTTL time.Duration
	Now      func() time.Time // defaults to time.Now
}

// NewService wires a provider to its client.
func NewService(p Provider, g Getter) *Service {
	return &Service{Client: g, Provider: p}
}

// FetchFootballScores returns the view or, on any failure, an empty slice.
// Callers cannot tell "no matches" from "fetch failed".
func (s *Service) FetchFootballScores(ctx context.Context, kind Kind) []model.Match {
	ms, err := s.Fetch(ctx, kind)
	if err != nil {
		slog.Error("scores: fetch failed", "provider", s.Provider.Name(), "kind", kind, "error", err)
		return []model.Match{}
	}
	return ms
}

// Fetch returns the view, reporting transport failures.
func (s *Service) Fetch(ctx context.Context, kind Kind) ([]model.Match, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return []model.Match{}, nil
	}
	if s.Cache != nil && s.CacheTTL > 0 {
		if ms, ok, err := s.Cache.CachedMatches(ctx, s.Provider.Name(), kind); err != nil {
			slog.Warn("scores: cache read failed", "kind", kind, "error", err)
		} else if ok {
			return ms, nil
		}
	}
	now := s.now()
	reqs, err := s.Provider.Requests(ctx, s.Client, kind, now)
	if err != nil {
		return nil, err
	}
	m := newMerger()
	degraded := 0
	for _, r := range reqs {
		recs, bad, err := s.get(ctx, r)
		if err != nil {
			return nil, err
		}
		if bad {
			degraded++
		}
		for _, raw := range recs {
			match, err := s.Provider.Decode(raw, now)
			if err != nil {
				slog.Warn("scores: skip malformed record", "provider", s.Provider.Name(), "error", err)
				continue
			}
			m.put(match)
		}
	}
	out := Select(kind, m.list())
	// an all-degraded view is an outage, not an empty fixture list
	if len(reqs) > 0 && degraded == len(reqs) {
		slog.Warn("scores: upstream degraded, not caching", "provider", s.Provider.Name(), "kind", kind, "requests", len(reqs))
	} else if s.Cache != nil && s.CacheTTL > 0 {
		if err := s.Cache.CacheMatches(ctx, s.Provider.Name(), kind, out, s.CacheTTL); err != nil {
			slog.Warn("scores: cache write failed", "kind", kind, "error", err)
		}
	}
	slog.Info("scores: fetched", "provider", s.Provider.Name(), "kind", kind, "requests", len(reqs), "matches", len(out))
	return out, nil
}

// FetchAll fetches every view, stopping at the first transport failure.
func (s *Service) FetchAll(ctx context.Context) (map[Kind][]model.Match, error) {
	out := make(map[Kind][]model.Match, len(Kinds))
	for _, k := range Kinds {
		ms, err := s.Fetch(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", k, err)
		}
		out[k] = ms
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, r Request) ([]json.RawMessage, bool, error) {
	if cg, ok := s.Client.(checkedGetter); ok {
		return cg.GetChecked(ctx, r.Path, r.Params)
	}
	recs, err := s.Client.Get(ctx, r.Path, r.Params)
	return recs, false, err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Select applies the per-view filter, ordering and cap.
func Select(kind Kind, in []model.Match) []model.Match {
	out := make([]model.Match, 0, len(in))
	for _, m := range in {
		switch kind {
		case KindLive:
			if m.Phase.InPlay() {
				out = append(out, m)
			}
		case KindToday:
			if m.Phase == model.PhaseNotStarted || m.Phase.InPlay() {
				out = append(out, m)
			}
		case KindUpcoming:
			if m.Phase == model.PhaseNotStarted {
				out = append(out, m)
			}
		}
	}
	if kind == KindUpcoming {
		// fixtures without a parseable kickoff go last
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Kickoff, out[j].Kickoff
			if a.IsZero() || b.IsZero() {
				return !a.IsZero() && b.IsZero()
			}
			return a.Before(b)
		})
		if len(out) > MaxUpcoming {
			out = out[:MaxUpcoming]
		}
	}
	return out
}

// merger keys matches by id; a later duplicate replaces the earlier value in place.
type merger struct {
	index map[string]int
	items []model.Match
}

func newMerger() *merger {
	return &merger{index: map[string]int{}}
}

func (m *merger) put(match model.Match) {
	if i, ok := m.index[match.ID]; ok {
		m.items[i] = match
		return
	}
	m.index[match.ID] = len(m.items)
	m.items = append(m.items, match)
}

func (m *merger) list() []model.Match {
	return m.items
}
