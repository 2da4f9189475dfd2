package services

import (
	"context"
	"encoding/json"
)

// structuredRawLimit caps the raw model output carried inside the
// degraded error object.
const structuredRawLimit = 800

// extractStructured asks the model for a JSON digest of the document at
// ingest time. Extraction is best effort: any failure is logged and the
// document ships without it.
func (s *assistantService) extractStructured(ctx context.Context, fullText string) json.RawMessage {
	if s.services.LLMService() == nil {
		return nil
	}

	prompt := buildStructuredPrompt(fullText, s.config.Prompt.StructuredTextLimit)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("structured extraction failed", "error", err)
		return nil
	}

	return parseStructured(raw)
}

// parseStructured validates model output as JSON, salvaging output
// wrapped in prose or code fences. When nothing parses it degrades to
// an error object carrying the raw output, so the stored value is
// always valid JSON.
func parseStructured(raw string) json.RawMessage {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}

	if payload := salvageJSON(raw); payload != "" && json.Valid([]byte(payload)) {
		return json.RawMessage(payload)
	}

	degraded, err := json.Marshal(map[string]string{
		"error":      "Invalid JSON from model",
		"raw_output": truncate(raw, structuredRawLimit),
	})
	if err != nil {
		return nil
	}
	return degraded
}
