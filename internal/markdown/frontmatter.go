package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var dateLine = regexp.MustCompile(`(?m)^date:\s*\d{4}-\d{2}-\d{2}`)

// FrontMatter is the header block of a blog post.
type FrontMatter struct {
	Layout     string   `yaml:"layout"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// Split separates a leading "---" delimited header from the body.
// ok is false when doc has no header.
func Split(doc string) (header, body string, ok bool) {
	rest, found := strings.CutPrefix(doc, delimiter+"\n")
	if !found {
		return "", doc, false
	}

	end := -1
	if strings.HasPrefix(rest, delimiter) {
		end = 0
	} else if i := strings.Index(rest, "\n"+delimiter); i >= 0 {
		end = i + 1
	}
	if end < 0 {
		return "", doc, false
	}

	body = strings.TrimPrefix(rest[end+len(delimiter):], "\n")
	return rest[:end], body, true
}

// Parse decodes the header of doc.
func Parse(doc string) (*FrontMatter, error) {
	header, _, ok := Split(doc)
	if !ok {
		return nil, fmt.Errorf("no front matter")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return &fm, nil
}

// SetDate replaces the first "date: YYYY-MM-DD" line in the header with date, keeping
// any time or zone that followed it. changed is false when the header has no date
// line or already carries date.
func SetDate(doc, date string) (updated string, changed bool) {
	header, _, ok := Split(doc)
	if !ok {
		return doc, false
	}

	loc := dateLine.FindStringIndex(header)
	if loc == nil {
		return doc, false
	}

	// Header starts right after the opening delimiter line.
	offset := len(delimiter) + 1
	start, end := offset+loc[0], offset+loc[1]
	replacement := "date: " + date
	if doc[start:end] == replacement {
		return doc, false
	}
	return doc[:start] + replacement + doc[end:], true
}
