package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Runner defaults.
const (
	DefaultAttempts      = 6
	DefaultInterval      = 5 * time.Second
	DefaultClickWait     = 3 * time.Second
	DefaultClickSelector = `[type="button"]`
)

// Ensure Runner implements mangaingest.EvasionRunner at compile time.
var _ mangaingest.EvasionRunner = (*Runner)(nil)

// Session is a single isolated browser tab.
type Session interface {
	Navigate(url string) error
	Title() (string, error)
	// Click clicks the first element matching selector and reports whether
	// one was present.
	Click(selector string) (bool, error)
	// Settle waits for content and scrolls to trigger lazy-loaded images.
	Settle() error
	HTML() (string, error)
	Close() error
}

// SessionOpener opens browser sessions.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// Runner waits out anti-bot challenges in a real browser session.
// Runner is safe for concurrent use; concurrency is bounded by the opener.
type Runner struct {
	opener        SessionOpener
	attempts      int
	interval      time.Duration
	clickSelector string
	clickWait     time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithAttempts sets how many times the title is re-checked before giving up.
func WithAttempts(n int) RunnerOption {
	return func(r *Runner) {
		r.attempts = n
	}
}

// WithInterval sets the wait between title checks.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithClickSelector sets the consent element clicked once polling fails.
func WithClickSelector(selector string) RunnerOption {
	return func(r *Runner) {
		r.clickSelector = selector
	}
}

// WithClickWait sets the wait between the click and the final check.
func WithClickWait(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.clickWait = d
	}
}

// NewRunner creates a Runner that opens sessions with opener.
func NewRunner(opener SessionOpener, opts ...RunnerOption) *Runner {
	r := &Runner{
		opener:        opener,
		attempts:      DefaultAttempts,
		interval:      DefaultInterval,
		clickSelector: DefaultClickSelector,
		clickWait:     DefaultClickWait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads url in a fresh session and returns its HTML once the page
// is no longer a challenge. The session is closed on every return path.
func (r *Runner) Resolve(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sess, err := r.opener.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("opening browser session: %w", err)
	}
	defer sess.Close()

	if err := sess.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}

	cleared, err := r.awaitClearance(ctx, sess)
	if err != nil {
		return "", err
	}
	if !cleared {
		return "", mangaingest.Errorf(mangaingest.ETIMEOUT, "challenge at %s did not clear after %d attempts", url, r.attempts)
	}

	if err := sess.Settle(); err != nil {
		return "", fmt.Errorf("waiting for content at %s: %w", url, err)
	}
	return sess.HTML()
}

// awaitClearance polls the page title, then tries a single click.
func (r *Runner) awaitClearance(ctx context.Context, sess Session) (bool, error) {
	challenged, err := r.challenged(sess)
	if err != nil || !challenged {
		return err == nil, err
	}

	for i := 0; i < r.attempts; i++ {
		if err := sleep(ctx, r.interval); err != nil {
			return false, err
		}
		if challenged, err = r.challenged(sess); err != nil {
			return false, err
		}
		if !challenged {
			return true, nil
		}
	}

	clicked, err := sess.Click(r.clickSelector)
	if err != nil {
		return false, fmt.Errorf("clicking %s: %w", r.clickSelector, err)
	}
	if !clicked {
		return false, nil
	}
	if err := sleep(ctx, r.clickWait); err != nil {
		return false, err
	}
	challenged, err = r.challenged(sess)
	if err != nil {
		return false, err
	}
	return !challenged, nil
}

func (r *Runner) challenged(sess Session) (bool, error) {
	title, err := sess.Title()
	if err != nil {
		return false, fmt.Errorf("reading page title: %w", err)
	}
	return mangaingest.IsChallengeTitle(title), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
