package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

const (
	prodID  = "-//lolesports-ical//EN"
	calName = "LoL Esports"
	foldAt  = 75 // octets per physical line, per RFC 5545
	lineBrk = "\r\n"
)

// Render serializes matches into a single iCalendar document, one VEVENT per
// match in ascending start order. The now argument becomes every event's
// DTSTAMP; consumers comparing feeds for real data changes must strip
// DTSTAMP lines first.
func Render(matches []match.Match, now time.Time) string {
	sorted := make([]match.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartUTC.Before(sorted[j].StartUTC)
	})

	var ics strings.Builder
	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "PRODID:"+escapeText(prodID))
	writeLine(&ics, "X-WR-CALNAME:"+calName)

	stamp := formatICSTime(now)
	for _, m := range sorted {
		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, "UID:"+escapeText(m.UID))
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, "DTSTART:"+formatICSTime(m.StartUTC))
		writeLine(&ics, "DTEND:"+formatICSTime(m.StartUTC.Add(estimateDuration(m.BestOf))))
		writeLine(&ics, "SUMMARY:"+escapeText(summary(m)))
		writeLine(&ics, "DESCRIPTION:"+escapeText(description(m)))
		if m.URL != "" {
			writeLine(&ics, "URL:"+m.URL)
		}
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

// summary builds the event title: short team codes when available, and the
// series score for completed matches.
func summary(m match.Match) string {
	t1, t2 := m.DisplayTeam1(), m.DisplayTeam2()
	if m.Completed() && m.HasScores() {
		return fmt.Sprintf("[%s] %s %d-%d %s", m.LeagueName, t1, *m.Team1Score, *m.Team2Score, t2)
	}
	return fmt.Sprintf("[%s] %s vs %s", m.LeagueName, t1, t2)
}

// description builds the event body with full team names and whatever
// context the scrape produced.
func description(m match.Match) string {
	parts := []string{
		"League: " + m.LeagueName,
		fmt.Sprintf("Match: %s vs %s", m.Team1, m.Team2),
	}
	if m.Stage != "" {
		parts = append(parts, "Stage: "+m.Stage)
	}
	if m.BestOf != "" {
		parts = append(parts, "Format: "+m.BestOf)
	}
	switch {
	case m.Completed():
		if m.HasScores() {
			parts = append(parts, fmt.Sprintf("Result: %s %d - %d %s", m.Team1, *m.Team1Score, *m.Team2Score, m.Team2))
		}
		if m.Winner != "" {
			parts = append(parts, "Winner: "+m.Winner)
		}
	case m.State == match.StateInProgress:
		parts = append(parts, "Status: LIVE")
	}
	return strings.Join(parts, "\n")
}

// estimateDuration maps the best-of label to a calendar end marker. This is
// a display estimate, not an authoritative series length.
func estimateDuration(bestOf string) time.Duration {
	switch bestOf {
	case "Bo5":
		return 4 * time.Hour
	case "Bo3":
		return 2*time.Hour + 30*time.Minute
	default: // Bo1 or unknown
		return time.Hour + 30*time.Minute
	}
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string.
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeText escapes special characters for iCalendar text values per RFC 5545.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// foldLine folds a content line at the 75-octet limit with CRLF plus a
// single leading space on each continuation. Folding operates on encoded
// length, after escaping.
func foldLine(line string) string {
	if len(line) <= foldAt {
		return line
	}
	var out []string
	for len(line) > foldAt {
		out = append(out, line[:foldAt])
		line = " " + line[foldAt:]
	}
	out = append(out, line)
	return strings.Join(out, lineBrk)
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(foldLine(line))
	b.WriteString(lineBrk)
}
