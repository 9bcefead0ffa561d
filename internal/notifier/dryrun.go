package notifier

import (
	"fmt"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// DryRunNotifier prints what would be posted without actually posting.
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints the posts that would be made.
func (n *DryRunNotifier) Notify(matches []match.Match) error {
	for i, m := range matches {
		post := formatPost(m)
		fmt.Printf("--- Post %d/%d ---\n", i+1, len(matches))
		fmt.Println(post)
		fmt.Printf("\n(Length: %d characters)\n\n", len(post))
	}
	return nil
}
