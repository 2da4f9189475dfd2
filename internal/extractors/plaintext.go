package extractors

import (
	"context"
	"strings"

	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

var (
	_ driven.TextExtractor = (*PlaintextExtractor)(nil)
	_ driven.TextExtractor = (*MarkdownExtractor)(nil)
)

// PlaintextExtractor handles plain text content. Form feed characters
// act as page separators; a file without them is a single page.
type PlaintextExtractor struct{}

func (e *PlaintextExtractor) Extract(_ context.Context, data []byte) ([]string, error) {
	content := normaliseNewlines(string(data))
	pages := strings.Split(content, "\f")
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}
	return pages, nil
}

func (e *PlaintextExtractor) SupportedTypes() []string {
	return []string{"text/plain", "*/*"} // Fallback for any type
}

func (e *PlaintextExtractor) Priority() int {
	return 1 // Lowest priority - fallback
}

// MarkdownExtractor handles Markdown content. Top-level headings start
// a new page so citations line up with sections.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(_ context.Context, data []byte) ([]string, error) {
	content := normaliseNewlines(string(data))

	// Remove excessive blank lines (more than 2 consecutive)
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}

	var pages []string
	var current strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") && current.Len() > 0 {
			pages = append(pages, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		pages = append(pages, strings.TrimSpace(current.String()))
	}
	if len(pages) == 0 {
		pages = []string{""}
	}
	return pages, nil
}

func (e *MarkdownExtractor) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (e *MarkdownExtractor) Priority() int {
	return 50 // Format-specific
}

func normaliseNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}
