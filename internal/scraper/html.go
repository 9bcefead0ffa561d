package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// maxContainerDepth bounds the walk from a <time> element up to the match
// card that contains it.
const maxContainerDepth = 12

var stageLabels = map[string]bool{
	"playoffs":     true,
	"swiss":        true,
	"groups":       true,
	"group stage":  true,
	"final":        true,
	"semifinal":    true,
	"quarterfinal": true,
}

// parseScheduleHTML extracts matches with best-effort HTML heuristics:
// anchor on <time datetime> elements, walk up to a container that links to
// one of our leagues, then pull teams and context out of whatever markup is
// there. HTML-only scrapes carry no team codes or scores.
func parseScheduleHTML(html string, leagues []string, pageURL string) []match.Match {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var matches []match.Match
	doc.Find("time").Each(func(_ int, timeEl *goquery.Selection) {
		dtRaw, ok := timeEl.Attr("datetime")
		if !ok || dtRaw == "" {
			return
		}
		startUTC, ok := parseDatetime(dtRaw)
		if !ok {
			return
		}

		container := findMatchContainer(timeEl, leagues)
		if container == nil {
			return
		}

		slug, leagueName := leagueFromContainer(container, leagues)
		if slug == "" {
			// Can't assign a league; the feed is per-league, so skip.
			return
		}
		if leagueName == "" {
			leagueName = slug
		}

		team1, team2 := teamsFromContainer(container)

		text := container.Text()
		var bestOf string
		switch {
		case strings.Contains(text, "Bo5"):
			bestOf = "Bo5"
		case strings.Contains(text, "Bo3"):
			bestOf = "Bo3"
		case strings.Contains(text, "Bo1"):
			bestOf = "Bo1"
		}

		stage := stageFromContainer(container)
		matchURL := matchURLFromContainer(container, pageURL)

		matches = append(matches, match.Match{
			LeagueSlug: slug,
			LeagueName: leagueName,
			MatchID:    match.IDFromURL(matchURL),
			StartUTC:   startUTC,
			BestOf:     bestOf,
			Team1:      team1,
			Team2:      team2,
			Stage:      stage,
			URL:        matchURL,
			UID:        match.UID(slug, startUTC, team1, team2, stage, matchURL),
		})
	})

	return dedupeByUID(matches)
}

// parseDatetime parses a machine-readable datetime attribute. A value with
// no zone information is treated as UTC.
func parseDatetime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// findMatchContainer walks ancestors looking for an element that both links
// to one of our leagues and carries a teams marker.
func findMatchContainer(timeEl *goquery.Selection, leagues []string) *goquery.Selection {
	cur := timeEl
	for i := 0; i < maxContainerDepth; i++ {
		cur = cur.Parent()
		if cur.Length() == 0 {
			return nil
		}
		switch goquery.NodeName(cur) {
		case "article", "div", "li", "section":
		default:
			continue
		}
		if !hasLeagueLink(cur, leagues) {
			continue
		}
		if cur.Find(".team").Length() > 0 || hasVsToken(leafTexts(cur)) {
			return cur
		}
	}
	return nil
}

func hasLeagueLink(sel *goquery.Selection, leagues []string) bool {
	found := false
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		for _, slug := range leagues {
			if strings.Contains(href, "/leagues/"+slug) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// leagueFromContainer infers slug and display name from the league link.
func leagueFromContainer(container *goquery.Selection, leagues []string) (slug, name string) {
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		for _, s := range leagues {
			if strings.Contains(href, "/leagues/"+s) {
				slug = s
				name = strings.TrimSpace(a.Text())
				return false
			}
		}
		return true
	})
	return slug, name
}

// teamsFromContainer prefers explicit team elements, falling back to the
// tokens around a "vs" marker. Unknown teams become the TBD placeholder.
func teamsFromContainer(container *goquery.Selection) (string, string) {
	var teamTexts []string
	container.Find(".teams .team, .team").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			teamTexts = append(teamTexts, t)
		}
	})
	if len(teamTexts) >= 2 {
		return teamTexts[0], teamTexts[1]
	}

	team1, team2 := "TBD", "TBD"
	tokens := leafTexts(container)
	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		if lower != "vs" && lower != "v" {
			continue
		}
		if i > 0 && tokens[i-1] != "" {
			team1 = tokens[i-1]
		}
		if i+1 < len(tokens) && tokens[i+1] != "" {
			team2 = tokens[i+1]
		}
		break
	}
	return team1, team2
}

func hasVsToken(tokens []string) bool {
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if lower == "vs" || lower == "v" {
			return true
		}
	}
	return false
}

// leafTexts collects the trimmed text of elements with no child elements,
// in document order.
func leafTexts(container *goquery.Selection) []string {
	var tokens []string
	container.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		if t := strings.TrimSpace(sel.Text()); t != "" {
			tokens = append(tokens, t)
		}
	})
	return tokens
}

func stageFromContainer(container *goquery.Selection) string {
	stage := ""
	container.Find("span, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := strings.TrimSpace(sel.Text())
		if t != "" && stageLabels[strings.ToLower(t)] {
			stage = t
			return false
		}
		return true
	})
	return stage
}

// matchURLFromContainer finds a match-specific link, defaulting to the page
// URL when the card has none.
func matchURLFromContainer(container *goquery.Selection, pageURL string) string {
	matchURL := pageURL
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "/match/") || strings.Contains(href, "/matches/") || strings.Contains(href, "/live/") {
			if strings.HasPrefix(href, "http") {
				matchURL = href
			} else {
				matchURL = BaseURL + href
			}
			return false
		}
		return true
	})
	return matchURL
}
