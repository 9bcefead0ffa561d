package history

import (
	"sort"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// Merge reconciles a fresh scrape with persisted history and returns one
// match per canonical key.
//
// Fresh data wins for every mutable field (scores, state, stage text, team
// codes), but a previously assigned UID is carried forward so the published
// calendar identifier never changes for a known match. Historical matches
// whose key is not covered by the fresh batch are retained as-is: a match
// that fell out of the scrape window, or was removed after completion, keeps
// its place in the feed. Historical records that no longer materialize are
// dropped silently.
//
// Known gap, kept as specified: a match first seen without a source id is
// keyed by its fallback composite, and if a later scrape learns the id the
// two keys do not merge. The intended key migration is unspecified upstream,
// so the duplication is tolerated rather than silently patched.
func Merge(fresh []match.Match, hist map[match.Key]Record) []match.Match {
	result := make([]match.Match, 0, len(fresh)+len(hist))
	covered := make(map[match.Key]bool, len(fresh))

	for _, m := range fresh {
		key := m.Key()
		if covered[key] {
			continue
		}
		covered[key] = true
		if rec, ok := hist[key]; ok && rec.UID != "" {
			m.UID = rec.UID
		}
		result = append(result, m)
	}

	retained := make([]match.Match, 0, len(hist))
	for key, rec := range hist {
		if covered[key] {
			continue
		}
		m, err := rec.Materialize()
		if err != nil {
			continue
		}
		retained = append(retained, m)
	}
	sort.Slice(retained, func(i, j int) bool {
		if !retained[i].StartUTC.Equal(retained[j].StartUTC) {
			return retained[i].StartUTC.Before(retained[j].StartUTC)
		}
		return retained[i].UID < retained[j].UID
	})

	return append(result, retained...)
}
