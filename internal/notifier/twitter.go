package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// TwitterNotifier posts match announcements to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables.
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts one tweet per match.
func (n *TwitterNotifier) Notify(matches []match.Match) error {
	for i, m := range matches {
		post := formatPost(m)

		_, _, err := n.client.Statuses.Update(post, nil)
		if err != nil {
			return fmt.Errorf("failed to post announcement for match %s: %w", m.UID, err)
		}

		// Rate limiting: wait between tweets
		if i < len(matches)-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil
}

// formatPost formats a match as an announcement post.
func formatPost(m match.Match) string {
	var post string
	if m.Completed() && m.HasScores() {
		post = "🏆 Result!\n\n"
		post += fmt.Sprintf("[%s] %s %d-%d %s\n", m.LeagueName, m.DisplayTeam1(), *m.Team1Score, *m.Team2Score, m.DisplayTeam2())
		if m.Winner != "" {
			post += fmt.Sprintf("🥇 %s takes the series\n", m.Winner)
		}
	} else {
		post = "🎮 New match scheduled!\n\n"
		post += fmt.Sprintf("[%s] %s vs %s\n", m.LeagueName, m.DisplayTeam1(), m.DisplayTeam2())
		post += fmt.Sprintf("📅 %s\n", m.StartUTC.UTC().Format("Mon, 02 Jan 15:04 MST"))
		if m.BestOf != "" {
			post += fmt.Sprintf("🕹 %s\n", m.BestOf)
		}
	}

	if m.Stage != "" {
		post += fmt.Sprintf("🏟 %s\n", m.Stage)
	}
	if m.URL != "" {
		post += "\n🔗 " + m.URL + "\n"
	}
	post += "\n#LoLEsports"

	// Twitter limit is 280 characters
	if len(post) > 280 {
		post = post[:277] + "..."
	}

	return post
}
