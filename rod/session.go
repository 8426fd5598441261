package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultUserAgent is sent by every browser session.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultContentSelector matches the series and chapter markers used by the
// supported WordPress manga themes.
const DefaultContentSelector = ".post-title, .summary_image, .entry-title, .reading-content, #readerarea"

const hideWebdriver = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en', 'ar'] });
window.chrome = window.chrome || { runtime: {} };
`

const scrollToBottom = `() => window.scrollTo(0, document.body.scrollHeight)`

// Ensure BrowserOpener implements SessionOpener at compile time.
var _ SessionOpener = (*BrowserOpener)(nil)

// BrowserOpener opens incognito sessions on a managed browser, holding a
// pool slot for the lifetime of each session.
type BrowserOpener struct {
	manager         *BrowserManager
	pool            *Pool
	userAgent       string
	contentSelector string
	contentWait     time.Duration
}

// OpenerOption configures a BrowserOpener.
type OpenerOption func(*BrowserOpener)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) OpenerOption {
	return func(o *BrowserOpener) {
		o.userAgent = ua
	}
}

// WithContentSelector overrides DefaultContentSelector.
func WithContentSelector(selector string) OpenerOption {
	return func(o *BrowserOpener) {
		o.contentSelector = selector
	}
}

// NewBrowserOpener creates a BrowserOpener.
func NewBrowserOpener(manager *BrowserManager, pool *Pool, opts ...OpenerOption) *BrowserOpener {
	o := &BrowserOpener{
		manager:         manager,
		pool:            pool,
		userAgent:       DefaultUserAgent,
		contentSelector: DefaultContentSelector,
		contentWait:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open checks out a pool slot and creates an isolated tab. Everything
// acquired so far is released if any step fails.
func (o *BrowserOpener) Open(ctx context.Context) (_ Session, err error) {
	release, err := o.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	browser, checkin, err := o.manager.Checkout()
	if err != nil {
		release()
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		checkin()
		release()
		return nil, fmt.Errorf("creating incognito context: %w", err)
	}

	s := &browserSession{
		incognito:       incognito,
		contentSelector: o.contentSelector,
		contentWait:     o.contentWait,
		cleanup: func() {
			checkin()
			release()
		},
	}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	s.page = page.Context(ctx)

	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      o.userAgent,
		AcceptLanguage: "en-US,en;q=0.9,ar;q=0.8",
	}); err != nil {
		return nil, fmt.Errorf("setting user agent: %w", err)
	}
	if _, err := s.page.EvalOnNewDocument(hideWebdriver); err != nil {
		return nil, fmt.Errorf("patching navigator: %w", err)
	}

	return s, nil
}

// browserSession is one tab inside its own incognito context.
type browserSession struct {
	incognito       *rod.Browser
	page            *rod.Page
	contentSelector string
	contentWait     time.Duration
	cleanup         func()
	closeOnce       sync.Once
}

func (s *browserSession) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return err
	}
	return s.page.WaitLoad()
}

func (s *browserSession) Title() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (s *browserSession) Click(selector string) (bool, error) {
	has, el, err := s.page.Has(selector)
	if err != nil || !has {
		return false, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return true, err
	}
	return true, nil
}

// Settle tolerates a missing content marker; extraction decides what counts
// as content.
func (s *browserSession) Settle() error {
	_, _ = s.page.Timeout(s.contentWait).Element(s.contentSelector)
	if _, err := s.page.Eval(scrollToBottom); err != nil {
		return err
	}
	_ = s.page.WaitIdle(2 * time.Second)
	return nil
}

func (s *browserSession) HTML() (string, error) {
	return s.page.HTML()
}

// Close tears down the tab and its context and checks the pool slot back in.
func (s *browserSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.page != nil {
			_ = s.page.Close()
		}
		err = s.incognito.Close()
		s.cleanup()
	})
	return err
}
