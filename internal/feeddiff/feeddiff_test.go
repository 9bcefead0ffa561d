package feeddiff

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/lolesports-ical/internal/calendar"
	"github.com/pfrederiksen/lolesports-ical/internal/history"
	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

func mkMatch(id string, start time.Time, state match.State) match.Match {
	url := "https://lolesports.com/live/lec/" + id
	return match.Match{
		LeagueSlug: "lec",
		LeagueName: "LEC",
		MatchID:    id,
		StartUTC:   start,
		Team1:      "Fnatic",
		Team2:      "G2 Esports",
		URL:        url,
		UID:        id + "@lolesports",
		State:      state,
	}
}

func TestDiffDetectsAddedAndCompleted(t *testing.T) {
	start := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)

	known := mkMatch("1", start, match.StateUnstarted)
	previous := map[match.Key]history.Record{
		known.Key(): history.FromMatch(known),
	}

	nowCompleted := known
	nowCompleted.State = match.StateCompleted
	added := mkMatch("2", start.Add(24*time.Hour), match.StateUnstarted)

	changes := Diff(previous, []match.Match{nowCompleted, added})

	if len(changes.Added) != 1 || changes.Added[0].MatchID != "2" {
		t.Errorf("added = %+v", changes.Added)
	}
	if len(changes.Completed) != 1 || changes.Completed[0].MatchID != "1" {
		t.Errorf("completed = %+v", changes.Completed)
	}
	if changes.Empty() {
		t.Error("changes should not be empty")
	}
}

func TestDiffNoChanges(t *testing.T) {
	start := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	done := mkMatch("1", start, match.StateCompleted)
	previous := map[match.Key]history.Record{done.Key(): history.FromMatch(done)}

	changes := Diff(previous, []match.Match{done})
	if !changes.Empty() {
		t.Errorf("already-completed match should not re-report: %+v", changes)
	}
}

func TestDiffSortsByStartTime(t *testing.T) {
	later := mkMatch("2", time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC), match.StateUnstarted)
	earlier := mkMatch("1", time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC), match.StateUnstarted)

	changes := Diff(nil, []match.Match{later, earlier})
	if len(changes.Added) != 2 || changes.Added[0].MatchID != "1" {
		t.Errorf("added matches not sorted: %+v", changes.Added)
	}
}

func TestNormalizeFeedStripsDTSTAMP(t *testing.T) {
	m := mkMatch("1", time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC), match.StateUnstarted)

	feed := calendar.Render([]match.Match{m}, time.Now().UTC())
	if !strings.Contains(feed, "DTSTAMP:") {
		t.Fatal("rendered feed should carry DTSTAMP")
	}
	if strings.Contains(NormalizeFeed(feed), "DTSTAMP:") {
		t.Error("normalized feed should not carry DTSTAMP")
	}
}

func TestFeedsEqualIgnoresTimestamp(t *testing.T) {
	m := mkMatch("1", time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC), match.StateUnstarted)
	matches := []match.Match{m}

	feed1 := calendar.Render(matches, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	feed2 := calendar.Render(matches, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if !FeedsEqual(feed1, feed2) {
		t.Error("feeds with identical data should compare equal")
	}

	scored := m
	s1, s2 := 2, 1
	scored.State = match.StateCompleted
	scored.Team1Score = &s1
	scored.Team2Score = &s2
	feed3 := calendar.Render([]match.Match{scored}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if FeedsEqual(feed1, feed3) {
		t.Error("feeds with different scores should not compare equal")
	}
}
