package model

import "time"

// Phase is the canonical lifecycle of a fixture, independent of provider codes.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseLive       Phase = "live"
	PhaseHalfTime   Phase = "half_time"
	PhaseFinished   Phase = "finished"
)

// InPlay reports whether the fixture is currently being played (including the break).
func (p Phase) InPlay() bool {
	return p == PhaseLive || p == PhaseHalfTime
}

// Team is one side of a fixture.
type Team struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Logo  *string `json:"logo"`
	Score int     `json:"score"`
}

// Match is a single fixture normalized from any provider.
type Match struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"` // provider short code, e.g. NS, LIVE, HT, FT
	Phase    Phase     `json:"phase"`
	Time     string    `json:"time"`
	Date     string    `json:"date,omitempty"`
	Kickoff  time.Time `json:"kickoff"`
	League   string    `json:"league"`
	HomeTeam Team      `json:"homeTeam"`
	AwayTeam Team      `json:"awayTeam"`
	StartsIn string    `json:"startsIn,omitempty"`
}
