package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

const renderTimeout = 45 * time.Second

// Renderer loads a page through headless Chrome. Used as a fallback for
// offer pages that serve an empty shell without JavaScript.
type Renderer struct {
	logger arbor.ILogger
}

// NewRenderer creates a headless-browser page renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	return &Renderer{logger: logger}
}

// Render navigates to the URL and returns the DOM after scripts have run
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(browserCtx, renderTimeout)
	defer timeoutCancel()

	start := time.Now()
	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	r.logger.Debug().
		Str("url", url).
		Int("bytes", len(html)).
		Dur("duration", time.Since(start)).
		Msg("Rendered offer page")

	return html, nil
}
