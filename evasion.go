package mangaingest

import (
	"context"
	"strings"
)

// EvasionRunner loads a page in a real browser session and waits out any
// automation challenge the site serves before returning the content.
type EvasionRunner interface {
	// Resolve navigates to url and returns the rendered HTML once the page
	// is no longer a challenge. Returns ETIMEOUT if the challenge does not
	// clear within the runner's attempt budget.
	Resolve(ctx context.Context, url string) (html string, err error)
}

// ChallengeDetector recognises anti-automation interstitials.
type ChallengeDetector interface {
	// IsChallenge reports whether html is a challenge page rather than content.
	IsChallenge(html string) bool
}

// ChallengeTitles are page-title fragments served by anti-bot interstitials.
var ChallengeTitles = []string{
	"Just a moment",
	"Verifying you are human",
	"Checking your browser",
	"Attention Required",
}

// IsChallengeTitle reports whether a page title belongs to a challenge page.
func IsChallengeTitle(title string) bool {
	for _, marker := range ChallengeTitles {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
