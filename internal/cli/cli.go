package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/lolesports-ical/internal/calendar"
	"github.com/pfrederiksen/lolesports-ical/internal/feeddiff"
	"github.com/pfrederiksen/lolesports-ical/internal/fetch"
	"github.com/pfrederiksen/lolesports-ical/internal/history"
	"github.com/pfrederiksen/lolesports-ical/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagOut      string
	flagTZ       string
	flagDays     int
	flagLeagues  string
	flagHTMLOnly bool
	flagCacheDir string
	flagCacheTTL int
	flagHistory  string
	flagDiffOut  string
	flagVerbose  bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lolesports-ical",
		Short: "Scrape LoL Esports schedules and emit an iCalendar feed",
		Long: `Scrapes the public LoL Esports schedule, reconciles matches against
persisted history (keeping published UIDs stable and completed results
visible), and writes a single iCalendar feed.`,
		RunE:          runGenerate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagOut, "out", "feed.ics", "Output .ics path")
	cmd.Flags().StringVar(&flagTZ, "tz", "Europe/Berlin", "Local timezone for match time display")
	cmd.Flags().IntVar(&flagDays, "days", 30, "How many days ahead to include")
	cmd.Flags().StringVar(&flagLeagues, "leagues", strings.Join(scraper.DefaultLeagues, ","), "Comma-separated league slugs")
	cmd.Flags().BoolVar(&flagHTMLOnly, "no-api", false, "Skip structured payload parsing and force HTML heuristics")
	cmd.Flags().StringVar(&flagCacheDir, "cache-dir", filepath.Join(".cache", "lolesports-ical"), "Disk cache directory")
	cmd.Flags().IntVar(&flagCacheTTL, "cache-ttl", 1800, "Cache TTL in seconds")
	cmd.Flags().StringVar(&flagHistory, "history", "~/.local/share/lolesports-ical/history.json", "Match history file path")
	cmd.Flags().StringVar(&flagDiffOut, "diff-out", "", "Write new/completed match diff JSON to this path")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// runGenerate is the main pipeline: fetch, parse, reconcile, persist, render.
func runGenerate(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	leagues := splitLeagues(flagLeagues)
	if len(leagues) == 0 {
		return fmt.Errorf("--leagues must name at least one league slug")
	}

	loc, err := time.LoadLocation(flagTZ)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", flagTZ, err)
	}

	historyPath, err := expandHome(flagHistory)
	if err != nil {
		return fmt.Errorf("resolving history path: %w", err)
	}

	fetcher, err := fetch.New(fetch.DefaultConfig(flagCacheDir, time.Duration(flagCacheTTL)*time.Second))
	if err != nil {
		return fmt.Errorf("initializing fetcher: %w", err)
	}

	sc := scraper.New(fetcher)
	fresh, err := sc.FetchMatches(cmd.Context(), leagues, scraper.Config{
		Days:     flagDays,
		HTMLOnly: flagHTMLOnly,
	})
	if err != nil {
		return fmt.Errorf("scraping schedule: %w", err)
	}

	store := history.NewStore(historyPath)
	hist := store.Load()
	merged := history.Merge(fresh, hist)
	changes := feeddiff.Diff(hist, merged)

	// Re-persist every match, not just the new ones, before emitting the feed.
	if err := store.SaveMatches(merged); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}

	for _, m := range merged {
		logrus.WithFields(logrus.Fields{
			"league": m.LeagueSlug,
			"match":  m.Team1 + " vs " + m.Team2,
			"start":  m.StartUTC.In(loc).Format("Mon, 02 Jan 15:04 MST"),
			"state":  string(m.State),
		}).Debug("feed match")
	}

	ics := calendar.Render(merged, time.Now().UTC())
	if err := writeFileAtomic(flagOut, []byte(ics)); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}

	if flagDiffOut != "" {
		data, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding diff: %w", err)
		}
		if err := writeFileAtomic(flagDiffOut, data); err != nil {
			return fmt.Errorf("writing diff: %w", err)
		}
	}

	leaguesFound := make(map[string]bool)
	for _, m := range fresh {
		leaguesFound[m.LeagueSlug] = true
	}
	fmt.Printf("Fetched %d matches across %d leagues; wrote %s\n", len(fresh), len(leaguesFound), flagOut)

	return nil
}

// splitLeagues parses the comma-separated league selection.
func splitLeagues(raw string) []string {
	var leagues []string
	for _, part := range strings.Split(raw, ",") {
		if slug := strings.TrimSpace(part); slug != "" {
			leagues = append(leagues, slug)
		}
	}
	return leagues
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// writeFileAtomic writes data via a temp file and rename so a failed run
// never clobbers the previous output.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".out-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
