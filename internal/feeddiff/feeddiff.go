// Package feeddiff compares runs: which matches are newly scheduled, which
// newly completed, and whether two rendered feeds differ in actual data.
package feeddiff

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/lolesports-ical/internal/history"
	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// Changes lists what moved between the previous history and the current
// reconciled match set.
type Changes struct {
	// Added matches were not present in the previous history.
	Added []match.Match `json:"added"`
	// Completed matches transitioned to the completed state this run.
	Completed []match.Match `json:"completed"`
}

// Empty reports whether nothing changed.
func (c *Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Completed) == 0
}

// Diff compares the current reconciled matches against the previous history.
func Diff(previous map[match.Key]history.Record, current []match.Match) *Changes {
	changes := &Changes{
		Added:     make([]match.Match, 0),
		Completed: make([]match.Match, 0),
	}

	for _, m := range current {
		prev, existed := previous[m.Key()]
		if !existed {
			changes.Added = append(changes.Added, m)
			continue
		}
		if m.Completed() && prev.State != string(match.StateCompleted) {
			changes.Completed = append(changes.Completed, m)
		}
	}

	sortMatches(changes.Added)
	sortMatches(changes.Completed)
	return changes
}

func sortMatches(matches []match.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].StartUTC.Equal(matches[j].StartUTC) {
			return matches[i].StartUTC.Before(matches[j].StartUTC)
		}
		return matches[i].UID < matches[j].UID
	})
}

// NormalizeFeed strips DTSTAMP lines from a rendered feed. DTSTAMP changes
// on every generation without representing a data change, so consumers must
// remove it before comparing feeds.
func NormalizeFeed(feed string) string {
	lines := strings.Split(feed, "\r\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "DTSTAMP:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\r\n")
}

// FeedsEqual reports whether two rendered feeds carry the same data,
// ignoring generation timestamps.
func FeedsEqual(a, b string) bool {
	return NormalizeFeed(a) == NormalizeFeed(b)
}
