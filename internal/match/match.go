package match

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// UIDSuffix is the namespace tag appended to every stable UID.
const UIDSuffix = "@lolesports"

// State is the lifecycle state of a match as reported by the source.
// Unknown source values are preserved verbatim rather than rejected.
type State string

const (
	StateUnstarted  State = "unstarted"
	StateInProgress State = "inProgress"
	StateCompleted  State = "completed"
)

// Match represents one scheduled or completed game series.
type Match struct {
	LeagueSlug string    `json:"league_slug"`
	LeagueName string    `json:"league_name"`
	MatchID    string    `json:"match_id,omitempty"`
	StartUTC   time.Time `json:"start_utc"`
	BestOf     string    `json:"best_of,omitempty"` // "Bo1", "Bo3", "Bo5"
	Team1      string    `json:"team1"`
	Team2      string    `json:"team2"`
	Team1Code  string    `json:"team1_code,omitempty"` // short code like "FNC", "G2"
	Team2Code  string    `json:"team2_code,omitempty"`
	Stage      string    `json:"stage,omitempty"`
	URL        string    `json:"match_url"`
	UID        string    `json:"stable_uid"`
	State      State     `json:"state,omitempty"`
	Team1Score *int      `json:"team1_score,omitempty"`
	Team2Score *int      `json:"team2_score,omitempty"`
	Winner     string    `json:"winner,omitempty"`
}

// UID computes the stable, content-derived identifier for a match.
// Equal inputs always produce the same UID; changing any field changes it.
// Once a UID has been published it must not be recomputed from fresher
// fields -- the reconciler carries the historical UID forward instead.
func UID(leagueSlug string, startUTC time.Time, team1, team2, stage, url string) string {
	base := strings.Join([]string{
		leagueSlug,
		FormatInstant(startUTC),
		strings.TrimSpace(team1),
		strings.TrimSpace(team2),
		strings.TrimSpace(stage),
		strings.TrimSpace(url),
	}, "|")
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])[:32] + UIDSuffix
}

// FormatInstant renders an instant as a second-precision UTC ISO-8601 string.
// This is the canonical textual form used in UIDs and fallback keys.
func FormatInstant(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// Completed reports whether the match has finished.
func (m Match) Completed() bool {
	return m.State == StateCompleted
}

// HasScores reports whether both team scores are present.
func (m Match) HasScores() bool {
	return m.Team1Score != nil && m.Team2Score != nil
}

// DisplayTeam1 returns the short code when known, falling back to the full name.
func (m Match) DisplayTeam1() string {
	if m.Team1Code != "" {
		return m.Team1Code
	}
	return m.Team1
}

// DisplayTeam2 returns the short code when known, falling back to the full name.
func (m Match) DisplayTeam2() string {
	if m.Team2Code != "" {
		return m.Team2Code
	}
	return m.Team2
}
