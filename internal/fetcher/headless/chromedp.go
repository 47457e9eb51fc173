// Package headless renders search pages with a real browser via chromedp.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Config controls the behavior of the headless renderer.
type Config struct {
	// Headless toggles the browser window; off is useful when debugging
	// selector rot by eye.
	Headless bool
	// UserAgent overrides the browser's default UA.
	UserAgent string
	// NavigationTimeout bounds a single page render.
	NavigationTimeout time.Duration
	// ConsentSelector matches the cookie-consent accept button. The click
	// is attempted once per browser session, best-effort.
	ConsentSelector string
}

// Renderer owns the browser allocator for the duration of a crawl. Acquire
// it before the crawl starts and Close it on every exit path.
type Renderer struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
	consentDone bool
}

// New creates a renderer backed by chromedp.
func New(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close tears down the browser allocator.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Render navigates to rawURL and returns the fully rendered DOM. On the
// first render of a session it also tries to dismiss the cookie-consent
// interstitial; failure there is logged and ignored.
func (r *Renderer) Render(ctx context.Context, rawURL string) ([]byte, error) {
	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.cfg.NavigationTimeout)
	defer cancel()

	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	actions := []chromedp.Action{
		r.networkSetupAction(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	r.maybeClickConsent(taskCtx)

	var page string
	if err := chromedp.Run(taskCtx,
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("chromedp snapshot: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// maybeClickConsent clicks the consent button the first time a page is
// rendered. The attempt is marked done regardless of outcome: the button is
// only present until accepted, and a missing button is the common case on
// every later session.
func (r *Renderer) maybeClickConsent(taskCtx context.Context) {
	if r.consentDone || r.cfg.ConsentSelector == "" {
		return
	}
	r.consentDone = true

	clickCtx, cancel := context.WithTimeout(taskCtx, 10*time.Second)
	defer cancel()

	err := chromedp.Run(clickCtx,
		chromedp.Click(r.cfg.ConsentSelector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		r.logger.Warn("cookie consent click failed", zap.Error(err))
		return
	}
	r.logger.Info("clicked cookie consent button")
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
