package summarizer

import (
	"fmt"
	"strings"

	"github.com/gazxxni/blogpipe/internal/processor"
	"github.com/gazxxni/blogpipe/pkg/models"
)

// Partition splits articles into consecutive batches of at most size articles.
// The batches share the backing array of articles. size <= 0 yields a single batch.
func Partition(articles []models.Article, size int) [][]models.Article {
	if len(articles) == 0 {
		return nil
	}
	if size <= 0 || size >= len(articles) {
		return [][]models.Article{articles}
	}

	batches := make([][]models.Article, 0, (len(articles)+size-1)/size)
	for start := 0; start < len(articles); start += size {
		end := min(start+size, len(articles))
		batches = append(batches, articles[start:end:end])
	}
	return batches
}

// BuildBatchPrompt asks for a short summary of one batch. Article summaries are cut to
// summaryChars runes.
func BuildBatchPrompt(batch []models.Article, summaryChars int) string {
	var sb strings.Builder
	for i, a := range batch {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, a.Category, a.Title)
		fmt.Fprintf(&sb, "   출처: %s\n", a.Source)
		if s := processor.Truncate(a.Summary, summaryChars); s != "" {
			fmt.Fprintf(&sb, "   요약: %s\n", s)
		}
		fmt.Fprintf(&sb, "   링크: %s\n\n", a.Link)
	}

	return fmt.Sprintf(`다음은 이번 주 IT 업계 뉴스 %d건입니다.
각 기사의 핵심 내용을 한국어 bullet point로 간결하게 요약해주세요.
중요한 기사는 마크다운 링크를 유지해주세요.

%s`, len(batch), sb.String())
}

// BuildReducePrompt asks for one categorized digest over the joined batch summaries.
func BuildReducePrompt(partials string) string {
	return fmt.Sprintf(`다음은 이번 주 IT 뉴스를 여러 묶음으로 나누어 요약한 내용입니다.
전체를 하나의 주간 요약으로 정리해주세요.

%s

다음 형식으로 요약해주세요:

### 🔥 이번 주 핫이슈

### 💻 개발 트렌드

### 🚀 기술 뉴스

### 📌 주목할 만한 소식

각 섹션마다 3-5개의 핵심 내용을 bullet point로 정리하고,
중요한 기사는 링크를 포함해주세요.
`, partials)
}
