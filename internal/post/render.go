// Package post renders weekly digest posts.
package post

import (
	"bufio"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gazxxni/blogpipe/internal/markdown"
	"github.com/gazxxni/blogpipe/internal/processor"
	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/gazxxni/blogpipe/pkg/models"
)

// FallbackHeading opens the body of a post whose digest could not be generated.
const FallbackHeading = "### 요약 생성 실패"

const filenameSuffix = "-weekly-it-news.md"

// Filename returns the post file name for the generation date.
func Filename(date time.Time) string {
	return models.FormatDate(date) + filenameSuffix
}

// Title returns the post title covering the six days before date and date itself.
func Title(date time.Time) string {
	start := date.AddDate(0, 0, -6)
	return fmt.Sprintf("주간 IT 뉴스 요약 (%s - %s)", start.Format("01.02"), date.Format("01.02"))
}

// Fallback is the body used when no digest is available.
func Fallback(articleCount int) string {
	return fmt.Sprintf(`%s

이번 주 수집된 뉴스는 총 %d개입니다.
상세 내용은 수집된 데이터를 확인해주세요.
요약이 생성되지 않은 이유는 실행 로그를 확인해주세요.`, FallbackHeading, articleCount)
}

// Render builds the post document. When ok is false, or summary is blank, the body is
// the fallback notice. HTML digests are converted to markdown first.
func Render(summary string, ok bool, articleCount int, date time.Time) string {
	body := strings.TrimSpace(summary)
	if !ok || body == "" {
		body = Fallback(articleCount)
	} else if markdown.LooksLikeHTML(body) {
		converted, err := processor.New().Convert(body)
		if err != nil || converted == "" {
			slog.Warn("failed to convert HTML digest, embedding as-is", "error", err)
		} else {
			body = converted
		}
	}

	return fmt.Sprintf(`---
layout: post
title: "%s"
date: %s
categories: [IT, News]
tags: [it-news, weekly-summary, tech-trends]
---

## 📰 이번 주 IT 뉴스 요약

%s

---

*이 포스트는 자동으로 수집된 IT 뉴스를 요약한 것입니다.*  
*총 %d개의 기사를 분석했습니다.*
`, Title(date), models.FormatDate(date), body, articleCount)
}

// Writer saves rendered posts into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write saves content as the post for date, replacing any existing file, and returns
// its path.
func (w *Writer) Write(date time.Time, content string) (string, error) {
	path := filepath.Join(w.dir, Filename(date))
	err := store.WriteFile(path, func(bw *bufio.Writer) error {
		_, err := bw.WriteString(content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}
	return path, nil
}
