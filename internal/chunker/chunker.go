package chunker

import (
	"strings"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// Config configures the chunker
type Config struct {
	// TargetSize is the maximum chunk size in characters
	TargetSize int

	// Overlap is the character overlap between consecutive chunks
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TargetSize:         1000,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Chunker splits page text into overlapping chunks that carry their
// source page number for citation.
type Chunker struct {
	config Config
}

// New creates a chunker with the given config. Invalid values fall
// back to defaults so a zero Config is usable.
func New(config Config) *Chunker {
	def := DefaultConfig()
	if config.TargetSize <= 0 {
		config.TargetSize = def.TargetSize
	}
	if config.Overlap < 0 || config.Overlap >= config.TargetSize {
		config.Overlap = def.Overlap
		if config.Overlap >= config.TargetSize {
			config.Overlap = config.TargetSize / 4
		}
	}
	return &Chunker{config: config}
}

// Split chunks a document's pages. Pages are 1-based in the output;
// pages with no usable text produce no chunks. Chunk IDs are assigned
// sequentially across the whole document.
func (c *Chunker) Split(pages []string) []domain.Chunk {
	var chunks []domain.Chunk
	id := 0

	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		for _, text := range c.splitText(page) {
			chunks = append(chunks, domain.Chunk{
				ID:   id,
				Page: i + 1,
				Text: text,
			})
			id++
		}
	}

	return chunks
}

// splitText splits a single page into overlapping windows.
func (c *Chunker) splitText(content string) []string {
	if len(content) <= c.config.TargetSize {
		return []string{content}
	}

	var parts []string
	start := 0

	for start < len(content) {
		end := start + c.config.TargetSize
		if end > len(content) {
			end = len(content)
		}

		// Try to find a good break point
		if end < len(content) && c.config.PreserveSentences {
			breakPoint := c.findBreakPoint(content, start, end)
			if breakPoint > start {
				end = breakPoint
			}
		}

		parts = append(parts, content[start:end])

		if end >= len(content) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := end - c.config.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return parts
}

// findBreakPoint finds a good break point within the last stretch of
// the window.
func (c *Chunker) findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}

	searchContent := content[searchStart:maxEnd]

	// Paragraph boundary first (double newline)
	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(searchContent, "\n\n"); idx != -1 {
			return searchStart + idx + 2
		}
	}

	// Then sentence boundary
	if c.config.PreserveSentences {
		sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
		bestIdx := -1

		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(searchContent, ender); idx != -1 {
				endPos := idx + len(ender)
				if endPos > bestIdx {
					bestIdx = endPos
				}
			}
		}

		if bestIdx > 0 {
			return searchStart + bestIdx
		}
	}

	// Then word boundary
	if idx := strings.LastIndex(searchContent, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}
