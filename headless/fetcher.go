// Package headless fetches pages with a headless Chrome instance via
// chromedp, for deployments where the browser binary is unavailable. The
// output contract matches the binary's fetch mode: markdown page content.
package headless

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"weblookup/content"
)

type Fetcher struct {
	logger  *zap.Logger
	options []chromedp.ExecAllocatorOption
}

func NewFetcher(logger *zap.Logger, proxyURL string) *Fetcher {
	options := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.Flag("accept-language", "en-US,en;q=0.9"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", ""),
	)
	if proxyURL != "" {
		options = append(options, chromedp.ProxyServer(proxyURL))
	}
	return &Fetcher{logger: logger, options: options}
}

// Fetch navigates to pageURL, captures the rendered DOM and reduces it to
// markdown. The caller's ctx bounds the whole navigation.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.options...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	f.logger.Info("headless fetch", zap.String("url", pageURL))

	var domHTML string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body"),
		chromedp.OuterHTML("html", &domHTML),
	)
	if err != nil {
		f.logger.Error("headless navigation failed",
			zap.String("url", pageURL),
			zap.Error(err))
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	md, err := content.ReduceToMarkdown(domHTML, pageURL)
	if err != nil {
		return "", err
	}
	f.logger.Info("headless fetch complete",
		zap.String("url", pageURL),
		zap.Int("dom_length", len(domHTML)),
		zap.Int("markdown_length", len(md)))
	return md, nil
}
