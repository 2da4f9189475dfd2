package domain

import "errors"

// Sentinel errors shared across all layers. Adapters wrap these with
// context; callers branch on them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown AI provider name.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrEmptyDocument indicates extraction produced no usable text.
	// Ingestion aborts and nothing is persisted.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrEmbeddingFailure indicates the embedding capability failed.
	// Surfaced to the caller; this core does not retry embeddings.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrIndexStale indicates a session index whose dimensionality no
	// longer matches the active embedding service, usually after an
	// admin swapped providers. The session must be re-embedded before
	// it can be searched.
	ErrIndexStale = errors.New("session index stale")

	// ErrRateLimited indicates the AI service reported a quota/rate-limit
	// condition. Recoverable: the generation wrapper retries these.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceExhausted indicates the AI service stayed rate-limited
	// through every retry. Callers should offer retry-later guidance.
	ErrServiceExhausted = errors.New("service exhausted")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrServiceError indicates the AI service returned a hard,
	// non-recoverable error (bad request, auth failure)
	ErrServiceError = errors.New("service error")

	// ErrEvaluationUnparseable indicates the grader output could not be
	// parsed even after a repair pass. Degrades to a null evaluation,
	// never fails the ask call.
	ErrEvaluationUnparseable = errors.New("evaluation output unparseable")
)
