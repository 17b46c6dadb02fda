// Package browser owns the Chrome side of the engine: one Session per
// logical browsing session, DOM harvesting into the document model, and the
// action executors the resolution engine dispatches to.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config controls session startup and pacing.
type Config struct {
	Headless          bool          `mapstructure:"headless"`
	UserAgent         string        `mapstructure:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
}

const (
	defaultNavigationTimeout = 60 * time.Second
	defaultSettleDelay       = 500 * time.Millisecond
)

// Session is one Chrome tab plus its lifecycle contexts. Not safe for
// concurrent use; the resolution engine serializes access per session.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         Config
}

// NewSession launches Chrome and opens a tab. Close releases both.
func NewSession(parentCtx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	sessionID := uuid.New().String()
	log := logger.Named("browser").With(zap.String("session_id", sessionID))

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:          sessionID,
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		logger:      log,
		cfg:         cfg,
	}

	// Start the browser eagerly so startup failures surface here rather
	// than on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	log.Info("Session started.")
	return s, nil
}

// ID returns the session identifier, also used as the store scope.
func (s *Session) ID() string { return s.id }

// Run executes chromedp actions under both the caller's context and the
// session lifecycle.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads a URL and waits for the document plus the settle delay.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	s.logger.Info("Navigating.", zap.String("url", url))
	if err := s.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Settle applies the configured post-action delay.
func (s *Session) Settle(ctx context.Context) error {
	return s.Run(ctx, chromedp.Sleep(s.cfg.SettleDelay))
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.logger.Info("Closing session.")
	s.cancel()
	s.allocCancel()
}

// combineContext returns a context cancelled when either input is.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(parentCtx)
	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}
