package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"football-pulse/internal/model"
)

// APISports speaks v3.football.api-sports.io: nested fixture/league/teams/goals
// records wrapped in a {"response": [...]} envelope.
type APISports struct {
	Leagues []string // league ids; resolved from Country when empty
	Country string
	Season  string
	Logos   Logos

	mu       sync.Mutex
	resolved []string
}

func (p *APISports) Name() string { return "apisports" }

func (p *APISports) Requests(ctx context.Context, g Getter, kind Kind, now time.Time) ([]Request, error) {
	leagues, err := p.leagues(ctx, g)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLive:
		live := "all"
		if len(leagues) > 0 {
			live = strings.Join(leagues, "-")
		}
		return []Request{{Path: "/fixtures", Params: url.Values{"live": {live}}}}, nil
	case KindToday:
		base := url.Values{"date": {day(now)}}
		return p.perLeague(base, leagues), nil
	case KindUpcoming:
		base := url.Values{"from": {day(now)}, "to": {day(now.Add(UpcomingWindow))}, "status": {"NS"}}
		return p.perLeague(base, leagues), nil
	}
	return nil, nil
}

func (p *APISports) perLeague(base url.Values, leagues []string) []Request {
	if len(leagues) == 0 {
		return []Request{{Path: "/fixtures", Params: base}}
	}
	reqs := make([]Request, 0, len(leagues))
	for _, l := range leagues {
		q := cloneValues(base)
		q.Set("league", l)
		if p.Season != "" {
			q.Set("season", p.Season)
		}
		reqs = append(reqs, Request{Path: "/fixtures", Params: q})
	}
	return reqs
}

// leagues returns the configured league ids, or resolves them once from the
// configured country through /leagues?country=.
func (p *APISports) leagues(ctx context.Context, g Getter) ([]string, error) {
	if ls := cleanList(p.Leagues); len(ls) > 0 {
		return ls, nil
	}
	country := strings.TrimSpace(p.Country)
	if country == "" {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.resolved) > 0 {
		return p.resolved, nil
	}
	recs, err := g.Get(ctx, "/leagues", url.Values{"country": {country}})
	if err != nil {
		return nil, fmt.Errorf("apisports: resolve leagues for %s: %w", country, err)
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		var l struct {
			League struct {
				ID flexString `json:"id"`
			} `json:"league"`
		}
		if err := json.Unmarshal(r, &l); err != nil || l.League.ID == "" {
			continue
		}
		ids = append(ids, string(l.League.ID))
	}
	ids = cleanList(ids)
	slog.Info("apisports: resolved leagues", "country", country, "count", len(ids))
	// an empty resolution is not cached so a later tick can retry
	if len(ids) > 0 {
		p.resolved = ids
	}
	return ids, nil
}

type apiSportsTeam struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	Logo string     `json:"logo"`
}

type apiSportsFixture struct {
	Fixture struct {
		ID     flexString `json:"id"`
		Date   string     `json:"date"`
		Status struct {
			Short   string   `json:"short"`
			Elapsed *flexInt `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home apiSportsTeam `json:"home"`
		Away apiSportsTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home flexInt `json:"home"`
		Away flexInt `json:"away"`
	} `json:"goals"`
}

func (p *APISports) Decode(raw json.RawMessage, now time.Time) (model.Match, error) {
	var f apiSportsFixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.Match{}, err
	}
	if f.Fixture.ID == "" {
		return model.Match{}, errors.New("apisports: record without fixture.id")
	}
	status := strings.ToUpper(strings.TrimSpace(f.Fixture.Status.Short))
	phase := apiSportsPhase(status)
	elapsed, known := 0, f.Fixture.Status.Elapsed != nil
	if known {
		elapsed = int(*f.Fixture.Status.Elapsed)
	}
	kickoff := parseKickoff(f.Fixture.Date)
	date := ""
	if !kickoff.IsZero() {
		date = kickoff.Format("2006-01-02")
	}
	return model.Match{
		ID:       string(f.Fixture.ID),
		Status:   status,
		Phase:    phase,
		Time:     displayTime(phase, elapsed, known, f.Fixture.Date),
		Date:     date,
		Kickoff:  kickoff,
		League:   f.League.Name,
		StartsIn: startsIn(kickoff, phase, now),
		HomeTeam: model.Team{
			ID:    string(f.Teams.Home.ID),
			Name:  f.Teams.Home.Name,
			Logo:  pickLogo(f.Teams.Home.Logo, f.Teams.Home.Name, p.Logos),
			Score: int(f.Goals.Home),
		},
		AwayTeam: model.Team{
			ID:    string(f.Teams.Away.ID),
			Name:  f.Teams.Away.Name,
			Logo:  pickLogo(f.Teams.Away.Logo, f.Teams.Away.Name, p.Logos),
			Score: int(f.Goals.Away),
		},
	}, nil
}

// apiSportsPhase maps fixture.status.short. Fixtures that will not be played
// any further (postponed, cancelled, abandoned) count as finished.
func apiSportsPhase(short string) model.Phase {
	switch short {
	case "1H", "2H", "ET", "BT", "P", "LIVE", "INT", "SUSP":
		return model.PhaseLive
	case "HT":
		return model.PhaseHalfTime
	case "FT", "AET", "PEN", "PST", "CANC", "ABD", "AWD", "WO":
		return model.PhaseFinished
	default: // NS, TBD
		return model.PhaseNotStarted
	}
}
