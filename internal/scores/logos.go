package scores

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Logos maps a team name to a logo URL. Keys are matched case-insensitively.
type Logos map[string]string

// LoadLogos reads a YAML mapping of team name to logo URL.
// An empty path yields an empty lookup.
func LoadLogos(path string) (Logos, error) {
	if strings.TrimSpace(path) == "" {
		return Logos{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logos file: %w", err)
	}
	raw := map[string]string{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse logos file: %w", err)
	}
	out := make(Logos, len(raw))
	for name, u := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		u = strings.TrimSpace(u)
		if name == "" || u == "" {
			continue
		}
		out[name] = u
	}
	return out, nil
}

// Lookup returns the logo for a team name.
func (l Logos) Lookup(team string) (string, bool) {
	if len(l) == 0 {
		return "", false
	}
	u, ok := l[strings.ToLower(strings.TrimSpace(team))]
	return u, ok
}
