package scores

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"football-pulse/internal/model"
)

// FullTime is the display time of a finished fixture.
const FullTime = "Full Time"

// maxFlexInt bounds decoded values; anything larger is garbage.
const maxFlexInt = math.MaxInt32

// flexInt decodes a score that may arrive as a number, a numeric string,
// null or garbage. Anything that is not a non-negative integer up to
// maxFlexInt becomes 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	} else {
		s = string(b)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxFlexInt {
		return nil
	}
	*f = flexInt(int(v))
	return nil
}

// flexString decodes an identifier that may arrive as a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// displayTime renders the time column: Full Time, elapsed minutes or the raw kickoff.
// known reports whether the provider sent an elapsed value at all; 0 is a valid minute.
func displayTime(phase model.Phase, elapsed int, known bool, raw string) string {
	switch {
	case phase == model.PhaseFinished:
		return FullTime
	case phase.InPlay() && known:
		return fmt.Sprintf("%d'", elapsed)
	default:
		return raw
	}
}

// startsIn renders a human countdown relative to now.
func startsIn(kickoff time.Time, phase model.Phase, now time.Time) string {
	switch {
	case phase.InPlay():
		return "LIVE"
	case phase == model.PhaseFinished:
		return "Finished"
	case kickoff.IsZero():
		return ""
	}
	diff := kickoff.Sub(now)
	if diff <= 0 {
		return "Starting soon"
	}
	mins := int(diff / time.Minute)
	h, m := mins/60, mins%60
	if h > 0 {
		return fmt.Sprintf("in %dh %dm", h, m)
	}
	return fmt.Sprintf("in %dm", m)
}

// pickLogo applies the logo priority: provider logo, then the lookup map, then none.
func pickLogo(provided, team string, logos Logos) *string {
	if s := strings.TrimSpace(provided); s != "" {
		return &s
	}
	if u, ok := logos.Lookup(team); ok {
		return &u
	}
	return nil
}

var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseKickoff parses provider timestamps; naive values are taken as UTC.
func parseKickoff(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range kickoffLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// leadingMinutes extracts 67 from "67", "67'" or "90+3".
func leadingMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
