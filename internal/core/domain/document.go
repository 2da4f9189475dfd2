package domain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Document represents an uploaded document
type Document struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	PageCount int    `json:"page_count"`
	FullText  string `json:"-"` // Concatenated page text, loaded on demand

	// Structured holds the key facts the model pulled out of the
	// document at ingest time, as raw JSON. Nil when extraction was
	// unavailable.
	Structured json.RawMessage `json:"structured,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded, overlapping segment of document text paired with
// its embedding vector. Chunks are immutable after the index is built.
type Chunk struct {
	// ID is the stable, index-assigned position of the chunk
	ID int `json:"id"`

	// Page is the 1-based page the chunk originates from,
	// retained for citation
	Page int `json:"page"`

	// Text is the chunk content
	Text string `json:"text"`

	// Embedding is the dense vector for this chunk.
	// Its length must equal the dimensionality of the owning index.
	Embedding []float32 `json:"embedding,omitempty"`
}

// DocumentWithPages combines a document with its ordered page texts
type DocumentWithPages struct {
	Document *Document `json:"document"`
	Pages    []string  `json:"pages"`
}

// JoinPages concatenates page texts into the document full text.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}

// HasText reports whether any page carries non-whitespace content.
// An all-empty extraction is a fatal ingestion error: no index can be
// built from it.
func HasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
