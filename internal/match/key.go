package match

import (
	"regexp"
	"strings"
	"time"
)

// Key kinds. A key derived from a source match id is a stronger identity
// signal than the content fallback, and the two never compare equal.
const (
	KeyKindID       = "id"
	KeyKindFallback = "fallback"
)

// Key is the canonical identity of a match. Two records represent the same
// real-world match iff their Keys are equal. Distinct from the UID, which is
// the externally published token.
type Key struct {
	Kind   string
	League string
	Ident  string
}

var (
	liveURLPattern  = regexp.MustCompile(`/live/[^/]+/(\d+)/?$`)
	matchURLPattern = regexp.MustCompile(`/match(?:es)?/(\d+)/?$`)
)

// IDFromURL recovers a source match id from a match URL, e.g. the trailing
// numeric segment of .../live/lec/999 or .../match/110852. Returns "" when
// no id is derivable.
func IDFromURL(url string) string {
	if m := liveURLPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := matchURLPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// DeriveKey computes the canonical key from whatever identity fields are
// available. A source match id (given directly or recovered from the URL)
// wins; otherwise the key degrades to start time plus team names.
//
// The same derivation is applied to live matches and to persisted history
// records, so it must only depend on fields both representations carry.
func DeriveKey(leagueSlug, matchID, url string, startISO, team1, team2 string) Key {
	if matchID == "" {
		matchID = IDFromURL(url)
	}
	if matchID != "" {
		return Key{Kind: KeyKindID, League: leagueSlug, Ident: matchID}
	}
	ident := startISO + "|" + strings.TrimSpace(team1) + "|" + strings.TrimSpace(team2)
	return Key{Kind: KeyKindFallback, League: leagueSlug, Ident: ident}
}

// Key returns the canonical key of the match.
func (m Match) Key() Key {
	return DeriveKey(m.LeagueSlug, m.MatchID, m.URL, FormatInstant(m.StartUTC), m.Team1, m.Team2)
}

// ParseInstant parses a persisted ISO-8601 instant. It accepts both the
// canonical "Z" form and offset forms, so hand-edited history files load.
func ParseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}
