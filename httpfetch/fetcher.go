// Package httpfetch fetches pages over plain HTTP with colly, the
// lightest fetch backend. Pages that need JavaScript will come back
// incomplete; the headless or binary backends cover those.
package httpfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"

	"weblookup/content"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Fetcher struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewFetcher builds a colly-backed fetcher. socksProxyURL, when non-empty,
// is a host:port SOCKS5 address all requests are dialed through.
func NewFetcher(socksProxyURL string, logger *zap.Logger) (*Fetcher, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
	)

	if socksProxyURL != "" {
		dialer, err := proxy.SOCKS5("tcp", socksProxyURL, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to build SOCKS5 dialer: %w", err)
		}
		dialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
		c.WithTransport(&http.Transport{DialContext: dialContext, DisableKeepAlives: false})
	}

	return &Fetcher{base: c, logger: logger}, nil
}

// Fetch retrieves one page and reduces it to markdown. Each call clones
// the base collector so concurrent fetches share no state.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	c := f.base.Clone()
	c.Context = ctx

	var body []byte
	var status int
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})

	f.logger.Info("http fetch", zap.String("url", pageURL))
	if err := c.Visit(pageURL); err != nil {
		f.logger.Error("http fetch failed", zap.String("url", pageURL), zap.Error(err))
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	c.Wait()

	if len(body) == 0 {
		return "", fmt.Errorf("fetch of %s returned no body (status %d)", pageURL, status)
	}
	return content.ReduceToMarkdown(string(body), pageURL)
}
