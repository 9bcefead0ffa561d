// Package cli implements the lolesports-ical command: scrape the schedule,
// reconcile against history, and write the iCalendar feed.
package cli
