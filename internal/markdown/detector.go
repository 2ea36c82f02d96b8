package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	listPattern    = regexp.MustCompile(`(?m)^\s*[\-\*]\s+\S`)
	linkPattern    = regexp.MustCompile(`\[.+?\]\(.+?\)`)
	blockTag       = regexp.MustCompile(`(?i)<(p|div|h[1-6]|ul|ol|li|table|br|strong|em|a\s)[\s>/]`)
)

// IsMarkdownFile reports whether name has a markdown extension.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsMarkdownContent uses heuristics to detect if content is markdown.
func IsMarkdownContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}

	// If it looks like HTML, it's not markdown
	if LooksLikeHTML(trimmed) {
		return false
	}

	return headingPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

// LooksLikeHTML reports whether text is an HTML document or fragment rather than
// markdown. Models occasionally answer with markup even when asked for markdown.
func LooksLikeHTML(content string) bool {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body") {
		return true
	}

	// Fragments: opens with a tag and has no markdown headings.
	return strings.HasPrefix(lower, "<") &&
		blockTag.MatchString(lower) &&
		!headingPattern.MatchString(lower)
}
