package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mangaingest"
)

// Ensure ChallengeDetector implements mangaingest.ChallengeDetector at compile time.
var _ mangaingest.ChallengeDetector = (*ChallengeDetector)(nil)

// challengeSelectors mark interstitials whose title has been customised.
var challengeSelectors = []string{
	"#challenge-form",
	"#challenge-running",
	"#cf-challenge-running",
	".cf-browser-verification",
	"#turnstile-wrapper",
}

// ChallengeDetector identifies anti-bot interstitials from HTML content.
type ChallengeDetector struct{}

// NewChallengeDetector creates a new ChallengeDetector.
func NewChallengeDetector() *ChallengeDetector {
	return &ChallengeDetector{}
}

// IsChallenge reports whether html is an automation challenge page.
func (d *ChallengeDetector) IsChallenge(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	if mangaingest.IsChallengeTitle(doc.Find("title").First().Text()) {
		return true
	}
	for _, sel := range challengeSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
