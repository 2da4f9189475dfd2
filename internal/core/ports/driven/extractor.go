package driven

import "context"

// TextExtractor turns raw document bytes into an ordered sequence of
// page texts. Extraction of binary formats (PDF etc.) is an external
// capability; this core only consumes the page sequence.
type TextExtractor interface {
	// Extract returns the page texts in document order.
	// Pages may be empty; the caller decides whether the whole
	// extraction is usable.
	Extract(ctx context.Context, data []byte) ([]string, error)

	// SupportedTypes returns MIME types this extractor handles.
	// Can include wildcards like "text/*" or specific types.
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	// Priority ranges:
	//   50-89: Format-specific (PDF, Markdown, HTML)
	//   10-49: Generic text processing
	//   1-9:   Fallback (raw text)
	Priority() int
}

// ExtractorRegistry manages text extractors.
// When multiple extractors match a MIME type, the highest priority one is used.
type ExtractorRegistry interface {
	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if no extractor is registered for the type.
	Get(mimeType string) TextExtractor

	// Register registers an extractor.
	Register(extractor TextExtractor)

	// List returns all registered MIME types.
	List() []string
}
