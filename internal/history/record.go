package history

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// Record is the serialized form of a match as stored in the history file.
// Fields map 1:1 to match.Match with instants encoded as ISO-8601 strings,
// so the file round-trips through load/merge/save without loss.
type Record struct {
	LeagueSlug string `json:"league_slug"`
	LeagueName string `json:"league_name"`
	MatchID    string `json:"match_id,omitempty"`
	StartUTC   string `json:"start_utc"`
	BestOf     string `json:"best_of,omitempty"`
	Team1      string `json:"team1"`
	Team2      string `json:"team2"`
	Team1Code  string `json:"team1_code,omitempty"`
	Team2Code  string `json:"team2_code,omitempty"`
	Stage      string `json:"stage,omitempty"`
	URL        string `json:"match_url"`
	UID        string `json:"stable_uid"`
	State      string `json:"state,omitempty"`
	Team1Score *int   `json:"team1_score,omitempty"`
	Team2Score *int   `json:"team2_score,omitempty"`
	Winner     string `json:"winner,omitempty"`
}

// FromMatch converts a match into its persisted form.
func FromMatch(m match.Match) Record {
	return Record{
		LeagueSlug: m.LeagueSlug,
		LeagueName: m.LeagueName,
		MatchID:    m.MatchID,
		StartUTC:   match.FormatInstant(m.StartUTC),
		BestOf:     m.BestOf,
		Team1:      m.Team1,
		Team2:      m.Team2,
		Team1Code:  m.Team1Code,
		Team2Code:  m.Team2Code,
		Stage:      m.Stage,
		URL:        m.URL,
		UID:        m.UID,
		State:      string(m.State),
		Team1Score: m.Team1Score,
		Team2Score: m.Team2Score,
		Winner:     m.Winner,
	}
}

// Key derives the canonical key of the persisted record, using the same
// derivation a live match uses. An unparseable start instant falls back to
// the raw string so the key stays deterministic either way.
func (r Record) Key() match.Key {
	startISO := strings.TrimSpace(r.StartUTC)
	if t, err := match.ParseInstant(r.StartUTC); err == nil {
		startISO = match.FormatInstant(t)
	}
	return match.DeriveKey(r.LeagueSlug, r.MatchID, r.URL, startISO, r.Team1, r.Team2)
}

// Materialize rebuilds the live match from the persisted record, backfilling
// the source match id from the URL when derivable but absent. A record whose
// start instant no longer parses cannot be materialized.
func (r Record) Materialize() (match.Match, error) {
	start, err := match.ParseInstant(r.StartUTC)
	if err != nil {
		return match.Match{}, fmt.Errorf("parsing start instant %q: %w", r.StartUTC, err)
	}

	matchID := r.MatchID
	if matchID == "" {
		matchID = match.IDFromURL(r.URL)
	}

	return match.Match{
		LeagueSlug: r.LeagueSlug,
		LeagueName: r.LeagueName,
		MatchID:    matchID,
		StartUTC:   start.UTC(),
		BestOf:     r.BestOf,
		Team1:      r.Team1,
		Team2:      r.Team2,
		Team1Code:  r.Team1Code,
		Team2Code:  r.Team2Code,
		Stage:      r.Stage,
		URL:        r.URL,
		UID:        r.UID,
		State:      match.State(r.State),
		Team1Score: r.Team1Score,
		Team2Score: r.Team2Score,
		Winner:     r.Winner,
	}, nil
}

// rank scores a record for deduplication when multiple persisted records
// share a canonical key (possible when older UID-assignment logic differed).
// Higher is better; ties keep the first-seen record.
func rank(r Record) int {
	score := 0
	if r.MatchID != "" || match.IDFromURL(r.URL) != "" {
		score += 16
	}
	if strings.Contains(r.URL, "/live/") {
		score += 8
	}
	if r.State == string(match.StateCompleted) {
		score += 4
	}
	if r.Team1Score != nil || r.Team2Score != nil {
		score += 2
	}
	if r.Team1Code != "" || r.Team2Code != "" {
		score++
	}
	return score
}
