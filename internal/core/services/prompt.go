package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// Prompt assembly for the answer, summary and suggestion flows. The
// answer prompt always carries all three labelled sections so the model
// sees an explicit marker instead of a silently missing block.

const (
	// noContextMarker replaces the context section when retrieval
	// found nothing usable.
	noContextMarker = "No relevant context was found in the document for this question."

	answerDirective = "Use the document context and chat history to answer clearly. " +
		"Answer only from the provided context. " +
		"If the context does not contain the answer, say so explicitly."
)

// PromptConfig bounds the text fed into each prompt.
type PromptConfig struct {
	// HistoryWindow is the number of recent turns included in prompts
	HistoryWindow int

	// EvalContextLimit caps the retrieved context passed to the judge
	EvalContextLimit int

	// SummaryTextLimit caps the document text passed to summarisation
	SummaryTextLimit int

	// SuggestTextLimit caps the document text passed to suggestion
	SuggestTextLimit int

	// StructuredTextLimit caps the document text passed to structured
	// extraction at ingest
	StructuredTextLimit int
}

// DefaultPromptConfig returns the standard bounds.
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		HistoryWindow:       10,
		EvalContextLimit:    1200,
		SummaryTextLimit:    12000,
		SuggestTextLimit:    8000,
		StructuredTextLimit: 12000,
	}
}

// buildAnswerPrompt assembles the labelled History / Context / Question
// prompt for one ask.
func buildAnswerPrompt(history []domain.ConversationTurn, context, question string) string {
	var sb strings.Builder

	sb.WriteString(answerDirective)
	sb.WriteString("\n\n")

	sb.WriteString("History:\n")
	if len(history) == 0 {
		sb.WriteString("(no previous conversation)\n")
	} else {
		for _, turn := range history {
			fmt.Fprintf(&sb, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
		}
	}

	sb.WriteString("\nContext:\n")
	if strings.TrimSpace(context) == "" {
		sb.WriteString(noContextMarker)
		sb.WriteString("\n")
	} else {
		sb.WriteString(context)
		sb.WriteString("\n")
	}

	sb.WriteString("\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n")

	return sb.String()
}

// buildSummaryPrompt assembles the structured-summary prompt over the
// whole document text.
func buildSummaryPrompt(fullText string, limit int) string {
	return fmt.Sprintf(`Summarize the following document.

Structure the summary as:
## Brief Summary
## Key Points
## Section-by-Section Breakdown

Document:
%s
`, truncate(fullText, limit))
}

// buildStructuredPrompt asks the model to pull key facts out of the
// document as a JSON object.
func buildStructuredPrompt(fullText string, limit int) string {
	return fmt.Sprintf(`Return ONLY valid JSON.

Extract structured information from the text:
%s
`, truncate(fullText, limit))
}

// buildSuggestPrompt asks for likely reader questions as a JSON array.
func buildSuggestPrompt(fullText string, limit int) string {
	return fmt.Sprintf(`Based on the document below, suggest 5 questions a reader would likely ask about it.

Return ONLY a JSON array of 5 question strings. No markdown, no commentary.

Document:
%s
`, truncate(fullText, limit))
}

// truncate bounds text to at most limit bytes, never splitting a rune.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
