package processor

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Processor converts feed and model HTML into text forms the pipeline stores or renders.
type Processor struct{}

// New creates a new HTML processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	// Clean up excessive whitespace
	markdown = strings.TrimSpace(markdown)
	return markdown, nil
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
// Entities are decoded; script and style contents are dropped.
func (p *Processor) PlainText(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return strings.Join(strings.Fields(htmlContent), " ")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Truncate cuts s to at most n characters (runes). n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
