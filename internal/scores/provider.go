package scores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"football-pulse/internal/config"
	"football-pulse/internal/model"
)

// Kind selects a scoreboard view.
type Kind string

const (
	KindLive     Kind = "live"
	KindToday    Kind = "today"
	KindUpcoming Kind = "upcoming"
)

// Kinds lists every view in display order.
var Kinds = []Kind{KindLive, KindToday, KindUpcoming}

// ParseKind validates a view name.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindLive, KindToday, KindUpcoming:
		return k, true
	}
	return "", false
}

// UpcomingWindow is how far ahead the upcoming view looks.
const UpcomingWindow = 7 * 24 * time.Hour

// Request is one upstream query. A view may need several, one per league.
type Request struct {
	Path   string
	Params url.Values
}

// Provider is one sports-data API: how to query it and how to decode its records.
type Provider interface {
	Name() string
	// Requests lists the queries needed for a view on the given day.
	Requests(ctx context.Context, g Getter, kind Kind, now time.Time) ([]Request, error)
	// Decode maps one upstream record to a Match. It never panics on malformed input.
	Decode(raw json.RawMessage, now time.Time) (model.Match, error)
}

// NewFromConfig builds the configured provider and its client.
func NewFromConfig(cfg config.ScoresConfig, logos Logos) (Provider, *Client, error) {
	timeout := config.Duration(cfg.Timeout, 10*time.Second)
	switch cfg.Provider {
	case "apisports":
		auth := HeaderKey("x-apisports-key", cfg.APIKey)
		if cfg.RapidAPI {
			host := cfg.BaseURL
			if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
				host = u.Host
			}
			auth = RapidAPIKey(cfg.APIKey, host)
		}
		p := &APISports{Leagues: cfg.Leagues, Country: cfg.Country, Season: cfg.Season, Logos: logos}
		return p, NewClient(cfg.BaseURL, timeout, auth, ResponseField("response")), nil
	case "apifootball":
		p := &APIFootball{Leagues: cfg.Leagues, Country: cfg.Country, Logos: logos}
		return p, NewClient(cfg.BaseURL, timeout, QueryKey("APIkey", cfg.APIKey), BareArray), nil
	default:
		return nil, nil, fmt.Errorf("unknown scores provider %q", cfg.Provider)
	}
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
