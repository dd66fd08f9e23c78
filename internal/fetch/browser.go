package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-agent/internal/browser"
)

// MinContentLength is the minimum extracted text length to trust a plain HTTP fetch.
// Shorter pages are usually JavaScript-rendered careers portals.
const MinContentLength = 500

// RenderSettleDelay is how long a rendered careers page gets to load its openings.
const RenderSettleDelay = 3 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the rendered HTML of a page.
type Renderer func(ctx context.Context, url string) (string, error)

// HeadlessRenderer renders every page in its own headless Chrome session, closed
// before returning. timeout bounds the whole render. Requires Chrome or Chromium.
func HeadlessRenderer(timeout time.Duration, logger *zap.Logger) Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, pageURL string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		opts := browser.DefaultOptions()
		opts.ActionTimeout = timeout
		opts.SettleDelay = RenderSettleDelay
		b, err := browser.New(ctx, opts, logger)
		if err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}
		defer b.Close()

		// one scroll pass triggers lazily loaded job lists
		html, err := b.Page().Scroll(ctx, pageURL, 1, time.Second)
		if err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}
		logger.Debug("rendered page", zap.String("url", pageURL), zap.Int("bytes", len(html)))
		return html, nil
	}
}
