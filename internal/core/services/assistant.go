package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc-core/internal/retry"
	"github.com/veridoc-labs/veridoc-core/internal/runtime"
)

// Ensure assistantService implements AssistantService
var _ driving.AssistantService = (*assistantService)(nil)

// AssistantConfig tunes the pipeline.
type AssistantConfig struct {
	// TopK is the number of chunks retrieved per question
	TopK int

	// Retry is the policy for generation calls
	Retry retry.Policy

	// Prompt bounds the text fed into prompts
	Prompt PromptConfig

	// Rubric instructs the judge
	Rubric domain.EvaluationRubric
}

// DefaultAssistantConfig returns production defaults.
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		TopK: 3,
		Retry: retry.DefaultPolicy(func(err error) bool {
			return errors.Is(err, domain.ErrRateLimited)
		}),
		Prompt: DefaultPromptConfig(),
		Rubric: domain.DefaultRubric(),
	}
}

// assistantService implements the question-answering pipeline.
type assistantService struct {
	docStore   driven.DocumentStore
	chatStore  driven.ChatStore
	extractors driven.ExtractorRegistry
	chunker    Chunker
	builder    driven.VectorIndexBuilder
	services   *runtime.Services
	sessions   *runtime.SessionRegistry
	config     AssistantConfig
	logger     *slog.Logger
}

// Chunker splits page texts into indexable chunks.
type Chunker interface {
	Split(pages []string) []domain.Chunk
}

// NewAssistantService creates the pipeline service.
func NewAssistantService(
	docStore driven.DocumentStore,
	chatStore driven.ChatStore,
	extractors driven.ExtractorRegistry,
	chunker Chunker,
	builder driven.VectorIndexBuilder,
	services *runtime.Services,
	sessions *runtime.SessionRegistry,
	config AssistantConfig,
	logger *slog.Logger,
) driving.AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &assistantService{
		docStore:   docStore,
		chatStore:  chatStore,
		extractors: extractors,
		chunker:    chunker,
		builder:    builder,
		services:   services,
		sessions:   sessions,
		config:     config,
		logger:     logger,
	}
}

// Ingest extracts, chunks, embeds and indexes an uploaded document.
func (s *assistantService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResponse, error) {
	if len(req.Data) == 0 || req.Filename == "" {
		return nil, domain.ErrInvalidInput
	}
	if !s.services.Config().CanIngest() {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}

	extractor := s.extractors.Get(req.MimeType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidInput, req.MimeType)
	}

	pages, err := extractor.Extract(ctx, req.Data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}
	if !domain.HasText(pages) {
		return nil, domain.ErrEmptyDocument
	}

	chunks := s.chunker.Split(pages)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	index, err := s.embedAndIndex(ctx, chunks)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        domain.GenerateID(),
		OwnerID:   req.OwnerID,
		Filename:  req.Filename,
		MimeType:  req.MimeType,
		PageCount: len(pages),
		FullText:  domain.JoinPages(pages),
		CreatedAt: time.Now(),
	}
	doc.Structured = s.extractStructured(ctx, doc.FullText)

	if err := s.docStore.Save(ctx, doc, pages); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.sessions.Put(doc.ID, runtime.NewDocSession(doc, index, nil))

	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"pages", doc.PageCount,
		"chunks", index.Len())

	return &driving.IngestResponse{Document: doc, Chunks: index.Len()}, nil
}

// Ask answers a question against the document's index.
func (s *assistantService) Ask(ctx context.Context, documentID, question string, evaluate bool) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	if !s.services.Config().CanAnswer() {
		return nil, fmt.Errorf("%w: AI services not configured", domain.ErrServiceUnavailable)
	}

	session, err := s.session(ctx, documentID)
	if err != nil {
		return nil, err
	}

	retrieval, err := s.retrieve(ctx, session, question)
	if errors.Is(err, domain.ErrIndexStale) {
		// The embedding provider changed since this index was built.
		// Re-embed the document at the new width and try again.
		s.logger.Info("re-embedding document after provider change", "document_id", documentID)
		s.sessions.Delete(documentID)
		if session, err = s.rebuildSession(ctx, documentID); err != nil {
			return nil, err
		}
		retrieval, err = s.retrieve(ctx, session, question)
	}
	if err != nil {
		return nil, err
	}

	var history []domain.ConversationTurn
	session.WithHistory(func(h *domain.ChatHistory) {
		history = h.Recent(s.config.Prompt.HistoryWindow)
	})

	prompt := buildAnswerPrompt(history, retrieval.Context, question)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// History grows only after a successful generation
	turn := domain.ConversationTurn{
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	session.WithHistory(func(h *domain.ChatHistory) {
		h.Append(turn.Question, turn.Answer)
	})
	if err := s.chatStore.AppendTurn(ctx, documentID, turn); err != nil {
		s.logger.Warn("persist chat turn failed", "document_id", documentID, "error", err)
	}

	result := &domain.Answer{
		Answer:    answer,
		Citations: retrieval.Citations,
	}
	session.WithHistory(func(h *domain.ChatHistory) {
		result.History = h.Recent(s.config.Prompt.HistoryWindow)
	})

	if evaluate {
		judge := NewEvaluator(s.generate, s.config.Rubric, s.config.Prompt.EvalContextLimit)
		result.Evaluation = judge.Evaluate(ctx, question, answer, retrieval.Context)
	}

	return result, nil
}

// Summarize produces a structured summary of the whole document.
func (s *assistantService) Summarize(ctx context.Context, documentID string) (string, error) {
	if s.services.LLMService() == nil {
		return "", fmt.Errorf("%w: no LLM service configured", domain.ErrServiceUnavailable)
	}

	session, err := s.session(ctx, documentID)
	if err != nil {
		return "", err
	}

	prompt := buildSummaryPrompt(session.Document.FullText, s.config.Prompt.SummaryTextLimit)
	return s.generate(ctx, prompt)
}

// Suggest proposes questions a reader would likely ask.
func (s *assistantService) Suggest(ctx context.Context, documentID string) ([]string, error) {
	if s.services.LLMService() == nil {
		return nil, fmt.Errorf("%w: no LLM service configured", domain.ErrServiceUnavailable)
	}

	session, err := s.session(ctx, documentID)
	if err != nil {
		return nil, err
	}

	prompt := buildSuggestPrompt(session.Document.FullText, s.config.Prompt.SuggestTextLimit)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("suggestion generation failed", "document_id", documentID, "error", err)
		return fallbackSuggestions(), nil
	}

	questions := parseSuggestions(raw)
	if len(questions) == 0 {
		return fallbackSuggestions(), nil
	}
	return questions, nil
}

// WarmSession rebuilds the in-memory index and history for a persisted
// document.
func (s *assistantService) WarmSession(ctx context.Context, documentID string) error {
	if !s.services.Config().CanIngest() {
		return fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}
	_, err := s.rebuildSession(ctx, documentID)
	return err
}

// session returns the live session for a document, rebuilding it from
// the store when the process has restarted since ingestion.
func (s *assistantService) session(ctx context.Context, documentID string) (*runtime.DocSession, error) {
	if session := s.sessions.Get(documentID); session != nil {
		return session, nil
	}
	return s.rebuildSession(ctx, documentID)
}

func (s *assistantService) rebuildSession(ctx context.Context, documentID string) (*runtime.DocSession, error) {
	stored, err := s.docStore.GetWithPages(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunks := s.chunker.Split(stored.Pages)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	index, err := s.embedAndIndex(ctx, chunks)
	if err != nil {
		return nil, err
	}

	turns, err := s.chatStore.GetByDocument(ctx, documentID)
	if err != nil {
		s.logger.Warn("load chat history failed", "document_id", documentID, "error", err)
		turns = nil
	}

	doc := stored.Document
	doc.FullText = domain.JoinPages(stored.Pages)

	session := runtime.NewDocSession(doc, index, domain.NewChatHistory(turns))
	s.sessions.Put(documentID, session)

	s.logger.Info("session rebuilt",
		"document_id", documentID,
		"chunks", index.Len(),
		"turns", len(turns))

	return session, nil
}

// embedAndIndex embeds chunk texts in one batch and freezes the index.
func (s *assistantService) embedAndIndex(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingFailure, len(vectors), len(chunks))
	}

	indexed := make([]*domain.Chunk, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		indexed[i] = &chunks[i]
	}

	return s.builder.Build(indexed)
}

// retrieve embeds the question and assembles the top-k context.
func (s *assistantService) retrieve(ctx context.Context, session *runtime.DocSession, question string) (*domain.Retrieval, error) {
	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}

	query, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}

	// A width mismatch means the index was built by a different
	// embedding provider. Searching it would silently return nothing.
	if session.Index.Len() > 0 && len(query) != session.Index.Dimensions() {
		return nil, fmt.Errorf("%w: index built at %d dimensions, query embedded at %d",
			domain.ErrIndexStale, session.Index.Dimensions(), len(query))
	}

	results := session.Index.Search(query, s.config.TopK)

	parts := make([]string, 0, len(results))
	citations := make([]int, 0, len(results))
	seen := make(map[int]bool)
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
		if !seen[r.Chunk.Page] {
			seen[r.Chunk.Page] = true
			citations = append(citations, r.Chunk.Page)
		}
	}

	return &domain.Retrieval{
		Context:   strings.Join(parts, "\n---\n"),
		Citations: citations,
		Results:   results,
	}, nil
}

// generate calls the LLM under the retry policy, translating retry
// outcomes into domain errors.
func (s *assistantService) generate(ctx context.Context, prompt string) (string, error) {
	llm := s.services.LLMService()
	if llm == nil {
		return "", fmt.Errorf("%w: no LLM service configured", domain.ErrServiceUnavailable)
	}

	answer, err := retry.Do(ctx, s.config.Retry, func(ctx context.Context) (string, error) {
		return llm.Generate(ctx, prompt)
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return "", fmt.Errorf("%w: %v", domain.ErrServiceExhausted, exhausted.Last)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrServiceError, err)
	}
	return answer, nil
}

// parseSuggestions decodes a JSON array of questions, salvaging output
// wrapped in prose or code fences.
func parseSuggestions(raw string) []string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
		return nil
	}

	cleaned := questions[:0]
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	return cleaned
}

// fallbackSuggestions is served when the model cannot produce a usable
// list.
func fallbackSuggestions() []string {
	return []string{
		"What is this document about?",
		"What are the key points?",
		"Can you summarize the main sections?",
		"Who is the intended audience?",
		"What conclusions does the document reach?",
	}
}
