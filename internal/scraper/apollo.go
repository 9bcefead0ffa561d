package scraper

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// The schedule page embeds its Apollo cache in a script like
// `(window[Symbol.for("ApolloSSRDataTransport")] ??= []).push({...})`.
// The pushed object is almost-JSON but may contain bare `undefined` tokens.
var (
	ssrPushPattern = regexp.MustCompile(`ApolloSSRDataTransport[\s\S]{0,1000}?[\s\S]{0,1000}?\.push\(`)
	undefinedToken = regexp.MustCompile(`\bundefined\b`)
)

// parseApolloSSR extracts matches from the server-rendered Apollo payload.
// Returns nil when the page carries no usable payload.
func parseApolloSSR(html string, leagues []string) []match.Match {
	allowed := make(map[string]bool, len(leagues))
	for _, slug := range leagues {
		allowed[slug] = true
	}

	var matches []match.Match
	for _, payload := range extractSSRPayloads(html) {
		normalized := undefinedToken.ReplaceAllString(payload, "null")
		var data interface{}
		if err := json.Unmarshal([]byte(normalized), &data); err != nil {
			continue
		}
		for _, ev := range findEventMatches(data) {
			if m, ok := eventToMatch(ev, allowed); ok {
				matches = append(matches, m)
			}
		}
	}
	return dedupeByUID(matches)
}

// extractSSRPayloads pulls the argument of each `.push(...)` call out of the
// raw HTML. The closing paren is found by scanning back from the end of the
// enclosing script tag.
func extractSSRPayloads(html string) []string {
	var payloads []string
	for _, loc := range ssrPushPattern.FindAllStringIndex(html, -1) {
		start := loc[1]
		scriptEnd := strings.Index(html[start:], "</script>")
		if scriptEnd < 0 {
			continue
		}
		end := strings.LastIndex(html[start:start+scriptEnd], ")")
		if end < 0 {
			continue
		}
		payloads = append(payloads, html[start:start+end])
	}
	return payloads
}

// findEventMatches walks the decoded payload for objects typed EventMatch.
func findEventMatches(v interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	switch t := v.(type) {
	case map[string]interface{}:
		if t["__typename"] == "EventMatch" {
			out = append(out, t)
		}
		for _, child := range t {
			out = append(out, findEventMatches(child)...)
		}
	case []interface{}:
		for _, child := range t {
			out = append(out, findEventMatches(child)...)
		}
	}
	return out
}

// eventToMatch converts one EventMatch object. Missing optional fields are
// fine; a missing league slug or start time disqualifies the record.
func eventToMatch(ev map[string]interface{}, allowed map[string]bool) (match.Match, bool) {
	league, _ := ev["league"].(map[string]interface{})
	slug := jsonString(league["slug"])
	if slug == "" || !allowed[slug] {
		return match.Match{}, false
	}

	start, err := match.ParseInstant(jsonString(ev["startTime"]))
	if err != nil {
		return match.Match{}, false
	}
	startUTC := start.UTC()

	leagueName := jsonString(league["name"])
	if leagueName == "" {
		leagueName = slug
	}

	teams, _ := ev["matchTeams"].([]interface{})
	var t1Data, t2Data map[string]interface{}
	if len(teams) >= 1 {
		t1Data, _ = teams[0].(map[string]interface{})
	}
	if len(teams) >= 2 {
		t2Data, _ = teams[1].(map[string]interface{})
	}

	team1 := firstNonEmpty(jsonString(t1Data["name"]), jsonString(t1Data["code"]), "TBD")
	team2 := firstNonEmpty(jsonString(t2Data["name"]), jsonString(t2Data["code"]), "TBD")
	team1Code := jsonString(t1Data["code"])
	team2Code := jsonString(t2Data["code"])

	t1Result, _ := t1Data["result"].(map[string]interface{})
	t2Result, _ := t2Data["result"].(map[string]interface{})
	team1Score := jsonInt(t1Result["gameWins"])
	team2Score := jsonInt(t2Result["gameWins"])

	inner, _ := ev["match"].(map[string]interface{})
	var bestOf string
	if strategy, ok := inner["strategy"].(map[string]interface{}); ok {
		if count := jsonInt(strategy["count"]); count != nil {
			bestOf = fmt.Sprintf("Bo%d", *count)
		}
	}

	state := match.State(firstNonEmpty(jsonString(ev["state"]), jsonString(inner["state"])))

	var winner string
	if state == match.StateCompleted {
		switch {
		case jsonString(t1Result["outcome"]) == "win":
			winner = team1
		case jsonString(t2Result["outcome"]) == "win":
			winner = team2
		case team1Score != nil && team2Score != nil && *team1Score > *team2Score:
			winner = team1
		case team1Score != nil && team2Score != nil && *team2Score > *team1Score:
			winner = team2
		}
	}

	stage := jsonString(ev["blockName"])

	matchID := firstNonEmpty(jsonString(inner["id"]), jsonString(ev["id"]))
	var matchURL string
	if matchID != "" {
		matchURL = fmt.Sprintf("%s/live/%s/%s", BaseURL, slug, matchID)
	} else {
		matchURL = fmt.Sprintf("%s/schedule?leagues=%s", BaseURL, slug)
	}

	return match.Match{
		LeagueSlug: slug,
		LeagueName: leagueName,
		MatchID:    matchID,
		StartUTC:   startUTC,
		BestOf:     bestOf,
		Team1:      team1,
		Team2:      team2,
		Team1Code:  team1Code,
		Team2Code:  team2Code,
		Stage:      stage,
		URL:        matchURL,
		UID:        match.UID(slug, startUTC, team1, team2, stage, matchURL),
		State:      state,
		Team1Score: team1Score,
		Team2Score: team2Score,
		Winner:     winner,
	}, true
}

// jsonString renders a decoded JSON scalar as a string. Numeric ids arrive
// as float64 from encoding/json and must not grow a decimal point.
func jsonString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// jsonInt extracts an integer from a decoded JSON value, nil when absent.
func jsonInt(v interface{}) *int {
	if f, ok := v.(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
