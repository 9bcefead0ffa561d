package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pfrederiksen/lolesports-ical/internal/fetch"
	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// BaseURL is the schedule site root.
const BaseURL = "https://lolesports.com"

// DefaultLeagues are the league slugs scraped when none are selected.
var DefaultLeagues = []string{
	"emea_masters",
	"first_stand",
	"lck",
	"lcs",
	"lec",
	"lpl",
	"msi",
	"worlds",
}

// Config controls a scrape run.
type Config struct {
	// Days bounds the lookahead window; matches starting further out are
	// dropped from the fresh batch. <= 0 disables the bound.
	Days int
	// HTMLOnly skips the structured SSR payload and forces HTML heuristics.
	HTMLOnly bool
}

// Scraper fetches and parses the schedule page.
type Scraper struct {
	fetcher *fetch.Fetcher
	baseURL string
	log     *logrus.Entry
}

// New creates a Scraper on top of the given fetcher.
func New(fetcher *fetch.Fetcher) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		baseURL: BaseURL,
		log:     logrus.WithField("component", "scraper"),
	}
}

// FetchMatches fetches the schedule page for the given leagues and returns
// the extracted matches, bounded by the lookahead window.
func (s *Scraper) FetchMatches(ctx context.Context, leagues []string, cfg Config) ([]match.Match, error) {
	if len(leagues) == 0 {
		leagues = DefaultLeagues
	}
	pageURL := fmt.Sprintf("%s/schedule?leagues=%s", s.baseURL, strings.Join(leagues, ","))

	resp, err := s.fetcher.Get(ctx, pageURL, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	matches := ParseSchedule(string(resp.Body), leagues, pageURL, cfg)
	s.log.WithFields(logrus.Fields{
		"leagues": len(leagues),
		"matches": len(matches),
	}).Debug("parsed schedule page")

	return filterWindow(matches, time.Now(), cfg.Days), nil
}

// ParseSchedule extracts matches from schedule page HTML. The structured
// SSR payload is preferred; HTML heuristics are the fallback.
func ParseSchedule(html string, leagues []string, pageURL string, cfg Config) []match.Match {
	if !cfg.HTMLOnly {
		if matches := parseApolloSSR(html, leagues); len(matches) > 0 {
			return matches
		}
	}
	return parseScheduleHTML(html, leagues, pageURL)
}

// filterWindow drops matches starting beyond the lookahead horizon. Past
// matches stay: the page lists recent results, and history retention is the
// reconciler's concern, not the scraper's.
func filterWindow(matches []match.Match, now time.Time, days int) []match.Match {
	if days <= 0 {
		return matches
	}
	horizon := now.AddDate(0, 0, days)
	kept := matches[:0]
	for _, m := range matches {
		if m.StartUTC.Before(horizon) {
			kept = append(kept, m)
		}
	}
	return kept
}

// dedupeByUID keeps the first match seen for each UID.
func dedupeByUID(matches []match.Match) []match.Match {
	seen := make(map[string]bool, len(matches))
	unique := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if seen[m.UID] {
			continue
		}
		seen[m.UID] = true
		unique = append(unique, m)
	}
	return unique
}
