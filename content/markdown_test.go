package content

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Widget Assembly Guide</title>
  <style>body { color: red; }</style>
  <script>trackEverything();</script>
</head>
<body>
  <article>
    <h1>Widget Assembly Guide</h1>
    <p>Widgets are assembled from three parts: the base, the spindle and
    the cap. The base carries the load and must be installed first.</p>
    <p>After the base is seated, the spindle threads in clockwise. Do not
    overtighten; the cap snaps on last and holds the spindle in place.</p>
    <p>A correctly assembled widget spins freely and makes no noise. If it
    wobbles, the spindle was cross-threaded and must be reseated.</p>
  </article>
</body>
</html>`

func TestReduceToMarkdown(t *testing.T) {
	md, err := ReduceToMarkdown(samplePage, "https://example.com/widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "spindle") {
		t.Errorf("markdown lost article text: %q", md)
	}
	if strings.Contains(md, "trackEverything") {
		t.Errorf("markdown leaked script content: %q", md)
	}
	if strings.Contains(md, "color: red") {
		t.Errorf("markdown leaked style content: %q", md)
	}
}

func TestReduceToMarkdownBadURL(t *testing.T) {
	if _, err := ReduceToMarkdown("<p>hi</p>", "://not a url"); err == nil {
		t.Error("expected an error for an unparseable URL")
	}
}

func TestReduceToMarkdownMinimalDocument(t *testing.T) {
	md, err := ReduceToMarkdown("<html><body><p>just one line</p></body></html>",
		"https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "just one line") {
		t.Errorf("minimal document lost its text: %q", md)
	}
}
