// Package browser drives a Chrome instance with chromedp and exposes it as a
// form.Page for the application engine.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Defaults for Options.
const (
	DefaultActionTimeout = 30 * time.Second
	DefaultSettleDelay   = 2 * time.Second
	DefaultLoginDelay    = 5 * time.Second
	AcceptLanguage       = "en-US,en;q=0.9"
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Options configures the browser session.
type Options struct {
	// Headless hides the window; the show_browser setting turns it off.
	Headless      bool
	ActionTimeout time.Duration
	SettleDelay   time.Duration
	LoginDelay    time.Duration
	UserAgent     string
	// FormScopes bound control discovery; see DefaultFormScopes.
	FormScopes []string
}

// DefaultOptions returns a headless configuration.
func DefaultOptions() Options {
	return Options{
		Headless:      true,
		ActionTimeout: DefaultActionTimeout,
		SettleDelay:   DefaultSettleDelay,
		LoginDelay:    DefaultLoginDelay,
		UserAgent:     DefaultUserAgent,
		FormScopes:    DefaultFormScopes,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = d.ActionTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = d.SettleDelay
	}
	if o.LoginDelay <= 0 {
		o.LoginDelay = d.LoginDelay
	}
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.FormScopes == nil {
		o.FormScopes = d.FormScopes
	}
	return o
}

// AllocatorOptions returns the Chrome flags for opts.
func AllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	opts = opts.withDefaults()
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("start-maximized", true),
		chromedp.UserAgent(opts.UserAgent),
	)
}

// Browser owns one Chrome process and a single tab. Every run uses one browser
// session; callers must Close it.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
	logger  *zap.Logger
}

// New starts Chrome. The returned browser lives until Close or until ctx is done.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Browser, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, AllocatorOptions(opts)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Warnf),
	)

	b := &Browser{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		opts:    opts,
		logger:  logger,
	}

	// discarding a half-filled application raises a "leave page?" prompt
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(browserCtx, page.HandleJavaScriptDialog(true)); err != nil {
					logger.Debug("could not accept dialog", zap.Error(err))
				}
			}()
		}
	})

	logger.Info("starting browser", zap.Bool("headless", opts.Headless))
	// labels are classified by English keywords
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": AcceptLanguage}),
	)
	if err != nil {
		b.Close()
		return nil, &Error{Op: "start", Message: "could not launch chrome", Cause: err}
	}
	return b, nil
}

// Page returns the form.Page view of the browser's tab.
func (b *Browser) Page() *Page {
	return &Page{b: b}
}

// Close shuts down the tab and the Chrome process.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// run executes actions on the tab, bounded by the action timeout and by ctx.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(b.ctx, b.opts.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}
