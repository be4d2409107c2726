package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/rs/zerolog"
)

// ErrSessionStopped is returned by page operations after Stop.
var ErrSessionStopped = errors.New("browser session stopped")

// Options configures one browser session.
type Options struct {
	ChromePath   string
	RemoteURL    string
	Headless     bool
	UserAgent    string
	Proxy        string
	WindowWidth  int
	WindowHeight int
}

// OptionsFromConfig maps application config onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChromePath:   cfg.ChromePath,
		RemoteURL:    cfg.RemoteURL,
		Headless:     cfg.BrowserHeadless,
		UserAgent:    cfg.UserAgent,
		WindowWidth:  1920,
		WindowHeight: 1080,
	}
}

// Session exclusively owns one browser and its single tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

var _ engine.Browser = (*Session)(nil)

// Start launches a browser configured to look like a regular desktop Chrome.
// Any failure leaves nothing running and returns engine.ErrDriverInitialization.
func Start(ctx context.Context, opts Options) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}

	// Session lifetime is governed by Stop, not by the caller's context.
	base := context.WithoutCancel(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		if opts.Proxy != "" {
			logger.Warn().Str("proxy", opts.Proxy).Msg("Proxy is ignored for remote browsers")
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(base, opts.RemoteURL)
	} else {
		execPath, err := resolveExecPath(opts.ChromePath)
		if err != nil {
			return nil, engine.NewEngineError(engine.ErrCodeDriverInit, "cannot locate chrome", err)
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(base, allocatorOptions(execPath, opts)...)
	}

	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			logger.Debug().Msgf(format, args...)
		}),
	)

	// The first Run starts the browser, so it must use browserCtx directly.
	setup := []chromedp.Action{installStealth()}
	if opts.RemoteURL != "" {
		setup = append(setup,
			chromedp.EmulateViewport(int64(opts.WindowWidth), int64(opts.WindowHeight)),
			emulation.SetUserAgentOverride(opts.UserAgent),
		)
	}
	if err := chromedp.Run(browserCtx, setup...); err != nil {
		cancel()
		allocCancel()
		return nil, engine.NewEngineError(engine.ErrCodeDriverInit, "cannot start browser session", err).
			WithDetail("exec_path", opts.ChromePath).
			WithDetail("remote_url", opts.RemoteURL)
	}

	logger.Debug().
		Bool("headless", opts.Headless).
		Str("proxy", opts.Proxy).
		Msg("Browser session started")

	return &Session{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// allocatorOptions builds the exec allocator flags. enable-automation is
// deliberately absent so Chrome shows no automation banner.
func allocatorOptions(execPath string, opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process,Translate"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("deny-permission-prompts", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("disable-save-password-bubble", true),
		chromedp.Flag("log-level", "3"),
	}

	if execPath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(execPath)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return allocOpts
}

// Stop closes the tab and terminates the browser. Safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.cancel()
	s.allocCancel()
}

// Close implements engine.Browser.
func (s *Session) Close() error {
	s.Stop()
	return nil
}

// run executes actions on the session tab, cancelled early if ctx is done.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return ErrSessionStopped
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) CountElements(ctx context.Context, selector string) (int, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(engine.CountScriptTemplate, quoted), &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var src string
	if err := s.run(ctx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return src, nil
}

func (s *Session) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(engine.ScrollToBottomScript, nil))
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Launcher starts a fresh Session per job.
type Launcher struct {
	opts Options
}

// NewLauncher creates a launcher using cfg for every session.
func NewLauncher(cfg *config.Config) *Launcher {
	return &Launcher{opts: OptionsFromConfig(cfg)}
}

// Launch implements engine.Launcher.
func (l *Launcher) Launch(ctx context.Context, proxy string) (engine.Browser, error) {
	opts := l.opts
	opts.Proxy = proxy
	return Start(ctx, opts)
}
