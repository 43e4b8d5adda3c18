package scores

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"football-pulse/internal/model"
)

// APIFootball speaks apiv3.apifootball.com: flat match_* records, key in the query string.
type APIFootball struct {
	Leagues []string // league_id partitions
	Country string   // country_id used when no leagues are configured
	Logos   Logos
}

func (p *APIFootball) Name() string { return "apifootball" }

func (p *APIFootball) Requests(ctx context.Context, _ Getter, kind Kind, now time.Time) ([]Request, error) {
	var base url.Values
	switch kind {
	case KindLive:
		base = url.Values{"action": {"get_live_scores"}, "live": {"all"}}
	case KindToday:
		base = url.Values{"action": {"get_events"}, "from": {day(now)}, "to": {day(now)}}
	case KindUpcoming:
		base = url.Values{"action": {"get_events"}, "from": {day(now)}, "to": {day(now.Add(UpcomingWindow))}, "status": {"NS"}}
	default:
		return nil, nil
	}
	leagues := cleanList(p.Leagues)
	if len(leagues) == 0 {
		q := cloneValues(base)
		if c := strings.TrimSpace(p.Country); c != "" {
			q.Set("country_id", c)
		}
		return []Request{{Params: q}}, nil
	}
	reqs := make([]Request, 0, len(leagues))
	for _, l := range leagues {
		q := cloneValues(base)
		q.Set("league_id", l)
		reqs = append(reqs, Request{Params: q})
	}
	return reqs, nil
}

type apiFootballEvent struct {
	MatchID            flexString `json:"match_id"`
	MatchDate          string     `json:"match_date"`
	MatchTime          string     `json:"match_time"`
	MatchStatus        string     `json:"match_status"`
	MatchLive          string     `json:"match_live"`
	LeagueName         string     `json:"league_name"`
	MatchHometeamID    flexString `json:"match_hometeam_id"`
	MatchHometeamName  string     `json:"match_hometeam_name"`
	MatchHometeamScore flexInt    `json:"match_hometeam_score"`
	MatchHometeamLogo  string     `json:"match_hometeam_logo"`
	TeamHomeBadge      string     `json:"team_home_badge"`
	MatchAwayteamID    flexString `json:"match_awayteam_id"`
	MatchAwayteamName  string     `json:"match_awayteam_name"`
	MatchAwayteamScore flexInt    `json:"match_awayteam_score"`
	MatchAwayteamLogo  string     `json:"match_awayteam_logo"`
	TeamAwayBadge      string     `json:"team_away_badge"`
}

func (p *APIFootball) Decode(raw json.RawMessage, now time.Time) (model.Match, error) {
	var e apiFootballEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.Match{}, err
	}
	if e.MatchID == "" {
		return model.Match{}, errors.New("apifootball: record without match_id")
	}
	phase, elapsed, known := apiFootballPhase(e.MatchStatus, e.MatchLive)
	kickoffRaw := strings.TrimSpace(e.MatchDate + " " + e.MatchTime)
	kickoff := parseKickoff(kickoffRaw)
	return model.Match{
		ID:       string(e.MatchID),
		Status:   strings.TrimSpace(e.MatchStatus),
		Phase:    phase,
		Time:     displayTime(phase, elapsed, known, kickoffRaw),
		Date:     strings.TrimSpace(e.MatchDate),
		Kickoff:  kickoff,
		League:   e.LeagueName,
		StartsIn: startsIn(kickoff, phase, now),
		HomeTeam: model.Team{
			ID:    string(e.MatchHometeamID),
			Name:  e.MatchHometeamName,
			Logo:  pickLogo(firstNonEmpty(e.MatchHometeamLogo, e.TeamHomeBadge), e.MatchHometeamName, p.Logos),
			Score: int(e.MatchHometeamScore),
		},
		AwayTeam: model.Team{
			ID:    string(e.MatchAwayteamID),
			Name:  e.MatchAwayteamName,
			Logo:  pickLogo(firstNonEmpty(e.MatchAwayteamLogo, e.TeamAwayBadge), e.MatchAwayteamName, p.Logos),
			Score: int(e.MatchAwayteamScore),
		},
	}, nil
}

// apiFootballPhase maps match_status. Live fixtures usually carry the minute
// ("67", "90+3") instead of a code; match_live flags in-play fixtures.
// The bool reports whether a minute was present.
func apiFootballPhase(status, live string) (model.Phase, int, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "ft", "finished", "after et", "after pen.", "aet", "pen.",
		"postponed", "cancelled", "canceled", "awarded", "abandoned":
		return model.PhaseFinished, 0, false
	case "ht", "half time", "half-time":
		return model.PhaseHalfTime, 0, false
	case "live":
		return model.PhaseLive, 0, false
	case "", "ns", "not started":
		if strings.TrimSpace(live) == "1" {
			return model.PhaseLive, 0, false
		}
		return model.PhaseNotStarted, 0, false
	}
	if m, ok := leadingMinutes(s); ok {
		return model.PhaseLive, m, true
	}
	if strings.TrimSpace(live) == "1" {
		return model.PhaseLive, 0, false
	}
	return model.PhaseNotStarted, 0, false
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
