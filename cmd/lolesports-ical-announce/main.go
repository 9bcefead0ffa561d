package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/lolesports-ical/internal/feeddiff"
	"github.com/pfrederiksen/lolesports-ical/internal/match"
	"github.com/pfrederiksen/lolesports-ical/internal/notifier"
)

var (
	diffFile     = flag.String("diff-file", "", "Path to diff JSON written by lolesports-ical --diff-out (or read from stdin)")
	dryRun       = flag.Bool("dry-run", false, "Print posts without posting")
	maxPosts     = flag.Int("max-posts", 10, "Maximum number of posts")
	leagueFilter = flag.String("league", "", "Only announce matches for this league slug")
	results      = flag.Bool("results", false, "Announce completed results instead of new matches")
)

func main() {
	flag.Parse()

	// Read the diff from file or stdin
	var reader io.Reader
	if *diffFile != "" {
		f, err := os.Open(*diffFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening diff file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
	} else {
		reader = os.Stdin
	}

	var changes feeddiff.Changes
	if err := json.NewDecoder(reader).Decode(&changes); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing diff JSON: %v\n", err)
		os.Exit(1)
	}

	matches := changes.Added
	if *results {
		matches = changes.Completed
	}
	if len(matches) == 0 {
		fmt.Println("Nothing to announce")
		os.Exit(0)
	}

	if *leagueFilter != "" {
		filtered := make([]match.Match, 0, len(matches))
		for _, m := range matches {
			if m.LeagueSlug == *leagueFilter {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}

	if len(matches) > *maxPosts {
		matches = matches[:*maxPosts]
	}

	if len(matches) == 0 {
		fmt.Println("No matches match criteria")
		os.Exit(0)
	}

	var n notifier.Notifier
	if *dryRun {
		n = notifier.NewDryRunNotifier()
		fmt.Printf("DRY RUN MODE - Would announce %d matches:\n\n", len(matches))
	} else {
		client, err := notifier.NewTwitterNotifier()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing Twitter client: %v\n", err)
			os.Exit(1)
		}
		n = client
	}

	if err := n.Notify(matches); err != nil {
		fmt.Fprintf(os.Stderr, "Error posting announcements: %v\n", err)
		os.Exit(1)
	}

	if !*dryRun {
		fmt.Printf("Successfully announced %d matches\n", len(matches))
	}
}
