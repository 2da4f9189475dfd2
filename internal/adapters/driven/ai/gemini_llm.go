package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Ensure GeminiLLM implements LLMService
var _ driven.LLMService = (*GeminiLLM)(nil)

// GeminiLLM implements LLMService against the Google Generative
// Language REST API.
type GeminiLLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiLLM creates a new Gemini LLM service
func NewGeminiLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiLLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for the given prompt
func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: Gemini generateContent", domain.ErrRateLimited)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.Error != nil {
		if isGeminiRateLimit(genResp.Error.Status, genResp.Error.Message) {
			return "", fmt.Errorf("%w: %s", domain.ErrRateLimited, genResp.Error.Message)
		}
		return "", fmt.Errorf("Gemini API error: %s (status: %s)",
			genResp.Error.Message, genResp.Error.Status)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// isGeminiRateLimit matches the signals Gemini uses for quota pressure.
func isGeminiRateLimit(status, message string) bool {
	if status == "RESOURCE_EXHAUSTED" {
		return true
	}
	lower := strings.ToLower(message)
	for _, marker := range []string{"429", "resource exhausted", "rate limit", "quota"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Model returns the model name being used
func (g *GeminiLLM) Model() string {
	return g.model
}

// Ping verifies the LLM service is available
func (g *GeminiLLM) Ping(ctx context.Context) error {
	_, err := g.Generate(ctx, "ping")
	return err
}

// Close releases resources held by the LLM service
func (g *GeminiLLM) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
