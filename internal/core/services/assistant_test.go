package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/adapters/driven/index"
	"github.com/veridoc-labs/veridoc-core/internal/chunker"
	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven/mocks"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc-core/internal/extractors"
	"github.com/veridoc-labs/veridoc-core/internal/runtime"
)

type assistantFixture struct {
	docStore  *mocks.MockDocumentStore
	chatStore *mocks.MockChatStore
	embedding *mocks.MockEmbeddingService
	llm       *mocks.MockLLMService
	sessions  *runtime.SessionRegistry
	services  *runtime.Services
	svc       driving.AssistantService
}

func newAssistantFixture(t *testing.T) *assistantFixture {
	t.Helper()

	f := &assistantFixture{
		docStore:  mocks.NewMockDocumentStore(),
		chatStore: mocks.NewMockChatStore(),
		embedding: mocks.NewMockEmbeddingService(),
		llm:       mocks.NewMockLLMService(),
		sessions:  runtime.NewSessionRegistry(),
		services:  runtime.NewServices(domain.NewRuntimeConfig("postgres", "postgres")),
	}
	f.services.SetEmbeddingService(f.embedding)
	f.services.SetLLMService(f.llm)

	config := DefaultAssistantConfig()
	config.Retry.Sleep = func(context.Context, time.Duration) error { return nil }

	f.svc = NewAssistantService(
		f.docStore,
		f.chatStore,
		extractors.DefaultRegistry(),
		chunker.New(chunker.DefaultConfig()),
		index.NewBuilder(),
		f.services,
		f.sessions,
		config,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *assistantFixture) ingest(t *testing.T, text string) *domain.Document {
	t.Helper()
	resp, err := f.svc.Ingest(context.Background(), driving.IngestRequest{
		Filename: "doc.txt",
		MimeType: "text/plain",
		Data:     []byte(text),
		OwnerID:  "user-1",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return resp.Document
}

const contractText = `This agreement is between the employer and the employee.
The salary is reviewed annually in January.
` + "\f" + `The notice period is 4 weeks for both parties.
Either party may terminate with written notice.
` + "\f" + `Holiday entitlement is 25 days per year.`

func TestIngest(t *testing.T) {
	f := newAssistantFixture(t)

	resp, err := f.svc.Ingest(context.Background(), driving.IngestRequest{
		Filename: "contract.txt",
		MimeType: "text/plain",
		Data:     []byte(contractText),
		OwnerID:  "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Document.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", resp.Document.PageCount)
	}
	if resp.Chunks == 0 {
		t.Error("expected chunks to be indexed")
	}

	// Document persisted
	if _, err := f.docStore.Get(context.Background(), resp.Document.ID); err != nil {
		t.Errorf("document not persisted: %v", err)
	}

	// Session registered
	if f.sessions.Get(resp.Document.ID) == nil {
		t.Error("expected a live session after ingest")
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	f := newAssistantFixture(t)

	_, err := f.svc.Ingest(context.Background(), driving.IngestRequest{
		Filename: "blank.txt",
		MimeType: "text/plain",
		Data:     []byte("   \n\f  \t"),
		OwnerID:  "user-1",
	})
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}

	// Nothing persisted
	docs, _ := f.docStore.List(context.Background())
	if len(docs) != 0 {
		t.Errorf("expected no persisted documents, got %d", len(docs))
	}
}

func TestIngestWithoutEmbeddingService(t *testing.T) {
	f := newAssistantFixture(t)
	f.services.SetEmbeddingService(nil)

	_, err := f.svc.Ingest(context.Background(), driving.IngestRequest{
		Filename: "doc.txt",
		MimeType: "text/plain",
		Data:     []byte("content"),
		OwnerID:  "user-1",
	})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestIngestExtractsStructuredInfo(t *testing.T) {
	f := newAssistantFixture(t)

	f.llm.QueueResponse(`{"parties": ["employer", "employee"], "notice_period": "4 weeks"}`)
	doc := f.ingest(t, contractText)

	if !strings.Contains(string(doc.Structured), `"notice_period"`) {
		t.Errorf("Structured = %s", doc.Structured)
	}
	if !strings.Contains(f.llm.LastPrompt(), "Extract structured information") {
		t.Error("prompt missing the extraction directive")
	}

	// Persisted with the document
	stored, err := f.docStore.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if string(stored.Structured) != string(doc.Structured) {
		t.Errorf("stored Structured = %s", stored.Structured)
	}
}

func TestIngestSalvagesFencedStructuredInfo(t *testing.T) {
	f := newAssistantFixture(t)

	f.llm.QueueResponse("Here you go:\n```json\n{\"topic\": \"employment\"}\n```")
	doc := f.ingest(t, contractText)

	if string(doc.Structured) != `{"topic": "employment"}` {
		t.Errorf("Structured = %s", doc.Structured)
	}
}

func TestIngestDegradesUnparseableStructuredInfo(t *testing.T) {
	f := newAssistantFixture(t)

	f.llm.QueueResponse("I cannot produce JSON for this document.")
	doc := f.ingest(t, contractText)

	var degraded struct {
		Error     string `json:"error"`
		RawOutput string `json:"raw_output"`
	}
	if err := json.Unmarshal(doc.Structured, &degraded); err != nil {
		t.Fatalf("Structured is not valid JSON: %v", err)
	}
	if degraded.Error != "Invalid JSON from model" {
		t.Errorf("error = %q", degraded.Error)
	}
	if degraded.RawOutput != "I cannot produce JSON for this document." {
		t.Errorf("raw_output = %q", degraded.RawOutput)
	}
}

func TestIngestSurvivesStructuredExtractionFailure(t *testing.T) {
	f := newAssistantFixture(t)

	f.llm.QueueError(errors.New("model offline"))
	doc := f.ingest(t, contractText)

	if doc.Structured != nil {
		t.Errorf("Structured = %s, want none", doc.Structured)
	}
	if f.sessions.Get(doc.ID) == nil {
		t.Error("expected a live session despite the extraction failure")
	}
}

func TestIngestWithoutLLMSkipsStructuredInfo(t *testing.T) {
	f := newAssistantFixture(t)
	f.services.SetLLMService(nil)

	doc := f.ingest(t, contractText)

	if doc.Structured != nil {
		t.Errorf("Structured = %s, want none", doc.Structured)
	}
}

func TestAsk(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("The notice period is 4 weeks.")

	answer, err := f.svc.Ask(context.Background(), doc.ID, "What is the notice period?", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "The notice period is 4 weeks." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Citations) == 0 {
		t.Error("expected page citations")
	}
	if len(answer.History) != 1 {
		t.Errorf("history has %d turns, want 1", len(answer.History))
	}

	// The prompt carries the labelled sections and the question
	prompt := f.llm.LastPrompt()
	for _, want := range []string{"History:", "Context:", "Question:", "What is the notice period?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Turn persisted
	turns, _ := f.chatStore.GetByDocument(context.Background(), doc.ID)
	if len(turns) != 1 {
		t.Errorf("persisted %d turns, want 1", len(turns))
	}
}

func TestAskRetriesRateLimits(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueRateLimits(2)
	f.llm.QueueResponse("eventually")

	answer, err := f.svc.Ask(context.Background(), doc.ID, "q?", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "eventually" {
		t.Errorf("answer = %q", answer.Answer)
	}
}

func TestAskExhaustsRetries(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueRateLimits(5)

	_, err := f.svc.Ask(context.Background(), doc.ID, "q?", false)
	if !errors.Is(err, domain.ErrServiceExhausted) {
		t.Fatalf("expected ErrServiceExhausted, got %v", err)
	}

	// Failed generation must not grow the history
	turns, _ := f.chatStore.GetByDocument(context.Background(), doc.ID)
	if len(turns) != 0 {
		t.Errorf("history grew on failure: %d turns", len(turns))
	}
}

func TestAskNonRetryableFailure(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueError(errors.New("invalid request"))

	_, err := f.svc.Ask(context.Background(), doc.ID, "q?", false)
	if !errors.Is(err, domain.ErrServiceError) {
		t.Fatalf("expected ErrServiceError, got %v", err)
	}
}

func TestAskUnknownDocument(t *testing.T) {
	f := newAssistantFixture(t)

	_, err := f.svc.Ask(context.Background(), "no-such-doc", "q?", false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAskWithEvaluation(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("The notice period is 4 weeks.")
	f.llm.QueueResponse(`{"helpfulness": 5, "completeness": 4, "relevance": 5, "reasoning": "direct quote"}`)

	answer, err := f.svc.Ask(context.Background(), doc.ID, "What is the notice period?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}
	if answer.Evaluation.IsNull() {
		t.Fatalf("expected scores, got null: %s", answer.Evaluation.Reasoning)
	}
	if *answer.Evaluation.Helpfulness != 5 {
		t.Errorf("helpfulness = %d", *answer.Evaluation.Helpfulness)
	}
}

func TestAskEvaluationDegradesGracefully(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("the answer")
	f.llm.QueueResponse("not json at all")
	f.llm.QueueResponse("still not json")

	answer, err := f.svc.Ask(context.Background(), doc.ID, "q?", true)
	if err != nil {
		t.Fatalf("the answer must survive a failed evaluation: %v", err)
	}
	if answer.Answer != "the answer" {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Evaluation == nil || !answer.Evaluation.IsNull() {
		t.Error("expected a null evaluation")
	}
}

func TestAskConversationContext(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("4 weeks")
	if _, err := f.svc.Ask(context.Background(), doc.ID, "What is the notice period?", false); err != nil {
		t.Fatalf("first ask: %v", err)
	}

	f.llm.QueueResponse("Yes, for both parties.")
	answer, err := f.svc.Ask(context.Background(), doc.ID, "Does it apply to both?", false)
	if err != nil {
		t.Fatalf("second ask: %v", err)
	}

	// The second prompt carries the first turn
	if !strings.Contains(f.llm.LastPrompt(), "What is the notice period?") {
		t.Error("second prompt missing earlier turn")
	}
	if len(answer.History) != 2 {
		t.Errorf("history has %d turns, want 2", len(answer.History))
	}
}

func TestAskAfterEmbeddingProviderSwap(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	// An admin swaps to a provider with a different vector width. The
	// live session still holds the old-width index.
	swapped := mocks.NewMockEmbeddingService()
	swapped.SetDimensions(64)
	f.services.SetEmbeddingService(swapped)

	f.llm.QueueResponse("The notice period is 4 weeks.")
	answer, err := f.svc.Ask(context.Background(), doc.ID, "What is the notice period?", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "The notice period is 4 weeks." {
		t.Errorf("answer = %q", answer.Answer)
	}

	// The document was re-embedded at the new width and retrieval
	// still found the matching chunk.
	session := f.sessions.Get(doc.ID)
	if session == nil {
		t.Fatal("expected a live session after the rebuild")
	}
	if got := session.Index.Dimensions(); got != 64 {
		t.Errorf("index dimensions = %d, want 64", got)
	}
	if !strings.Contains(f.llm.LastPrompt(), "notice period is 4 weeks") {
		t.Error("prompt missing the retrieved chunk after re-embedding")
	}
	if strings.Contains(f.llm.LastPrompt(), noContextMarker) {
		t.Error("prompt fell back to the no-context marker")
	}
}

func TestAskRebuildsSessionAfterRestart(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	// Simulate restart: live session lost, store keeps the document
	f.sessions.Delete(doc.ID)

	f.llm.QueueResponse("rebuilt and answered")
	answer, err := f.svc.Ask(context.Background(), doc.ID, "What is the notice period?", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "rebuilt and answered" {
		t.Errorf("answer = %q", answer.Answer)
	}
	if f.sessions.Get(doc.ID) == nil {
		t.Error("expected the session to be re-registered")
	}
}

func TestSummarize(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("## Brief Summary\nA contract.")

	summary, err := f.svc.Summarize(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(summary, "Brief Summary") {
		t.Errorf("summary = %q", summary)
	}

	// Whole document text went into the prompt, not retrieval output
	if !strings.Contains(f.llm.LastPrompt(), "Holiday entitlement") {
		t.Error("summary prompt missing later pages")
	}
}

func TestSuggest(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse(`["What is the notice period?", "How many holidays?", "When is salary reviewed?", "Who can terminate?", "What is the scope?"]`)

	questions, err := f.svc.Suggest(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 5 {
		t.Errorf("got %d questions, want 5", len(questions))
	}
}

func TestSuggestFallsBack(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("I cannot produce JSON today.")

	questions, err := f.svc.Suggest(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if len(questions) == 0 {
		t.Fatal("expected the static fallback list")
	}
	if questions[0] != "What is this document about?" {
		t.Errorf("unexpected fallback: %q", questions[0])
	}
}

func TestWarmSession(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)
	f.sessions.Delete(doc.ID)

	if err := f.svc.WarmSession(context.Background(), doc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sessions.Get(doc.ID) == nil {
		t.Error("expected a live session after warm-up")
	}
}

func TestRetrievalFindsRelevantChunk(t *testing.T) {
	f := newAssistantFixture(t)
	doc := f.ingest(t, contractText)

	f.llm.QueueResponse("answer")
	if _, err := f.svc.Ask(context.Background(), doc.ID, "The notice period is 4 weeks", false); err != nil {
		t.Fatalf("ask: %v", err)
	}

	// The deterministic mock embedder maps identical text to identical
	// vectors, so the chunk containing the question text must be in
	// the retrieved context.
	if !strings.Contains(f.llm.LastPrompt(), "notice period is 4 weeks") {
		t.Error("retrieval missed the matching chunk")
	}
}
