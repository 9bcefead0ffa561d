package notifier

import (
	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// Notifier posts announcements for matches.
type Notifier interface {
	// Notify posts one announcement per match.
	Notify(matches []match.Match) error
}
