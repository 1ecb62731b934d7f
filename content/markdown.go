// Package content reduces raw page HTML to the markdown shape the lookup
// pipeline expects from the browser binary, so the alternative fetch
// backends stay interchangeable with it.
package content

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ReduceToMarkdown isolates the article content of a page and renders it
// as markdown. Trafilatura is tried first, readability second; when both
// fail the whole cleaned document is converted.
func ReduceToMarkdown(htmlContent, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}

	cleaned, title, err := stripChrome(htmlContent)
	if err != nil {
		return "", err
	}

	contentHTML := extractArticle(cleaned, parsedURL)
	if contentHTML == "" {
		contentHTML = cleaned
	}

	md, err := htmltomarkdown.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	md = strings.TrimSpace(md)

	if title != "" && !strings.HasPrefix(md, "#") {
		md = "# " + title + "\n\n" + md
	}
	return md, nil
}

// stripChrome drops script, style and noscript nodes and returns the
// cleaned document HTML plus the page title.
func stripChrome(htmlContent string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, iframe").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	title := strings.TrimSpace(doc.Find("title").First().Text())
	cleaned, err := doc.Html()
	if err != nil {
		return "", "", fmt.Errorf("failed to render cleaned HTML: %w", err)
	}
	return cleaned, title, nil
}

func extractArticle(cleaned string, pageURL *url.URL) string {
	result, err := trafilatura.Extract(strings.NewReader(cleaned), trafilatura.Options{
		OriginalURL: pageURL,
	})
	if err == nil && result != nil && result.ContentNode != nil {
		if rendered, rerr := renderNode(result.ContentNode); rerr == nil {
			return rendered
		}
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		return article.Content
	}
	return ""
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
