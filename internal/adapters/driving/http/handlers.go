package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

// ErrorResponse wraps an API error message
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse carries a bare status string
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse reports the running API version
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// AskRequest carries a question about a document
// @Description Question about an ingested document
type AskRequest struct {
	Question string `json:"question" example:"What is the notice period?"`
	Evaluate bool   `json:"evaluate" example:"false"`
}

// SummaryResponse wraps a generated document summary
// @Description Generated document summary
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// SuggestionsResponse wraps suggested questions for a document
// @Description Suggested questions for a document
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// DocumentResponse combines a document with its conversation history
// @Description Document with conversation history
type DocumentResponse struct {
	Document *domain.Document          `json:"document"`
	History  []domain.ConversationTurn `json:"history"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness of the API and its backing services
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing service is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Reports the running API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Exchange email and password for a JWT token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		// Credential and account problems both map to 401.
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Rotate a refresh token into a new JWT token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Every refresh failure reads the same to the client.
	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  End the session behind the presented token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogoutAll godoc
// @Summary      Logout everywhere
// @Description  Invalidate all sessions for the authenticated user
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /auth/logout-all [post]
func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	authCtx := currentUser(w, r)
	if authCtx == nil {
		return
	}

	if err := s.authService.LogoutAll(r.Context(), authCtx.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChangePassword godoc
// @Summary      Change password
// @Description  Change the authenticated user's password. All other sessions are invalidated.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Wrong current password"
// @Router       /auth/change-password [post]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	authCtx := currentUser(w, r)
	if authCtx == nil {
		return
	}

	var req domain.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.authService.ChangePassword(r.Context(), authCtx.UserID, req); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "wrong current password")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid new password")
		default:
			writeError(w, http.StatusInternalServerError, "password change failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Setup endpoint (no auth required, one-time use)

// handleSetup godoc
// @Summary      Initial setup
// @Description  Create the initial admin user. This endpoint can only be called once when no users exist.
// @Tags         Setup
// @Accept       json
// @Produce      json
// @Param        request  body      driving.SetupRequest  true  "Admin user details"
// @Success      201      {object}  driving.SetupResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      403      {object}  ErrorResponse  "Setup already complete"
// @Failure      500      {object}  ErrorResponse  "Setup failed"
// @Router       /setup [post]
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req driving.SetupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.userService.Setup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "setup already complete")
		default:
			writeError(w, http.StatusInternalServerError, "setup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// User endpoints

// handleGetMe godoc
// @Summary      Get current user
// @Description  Returns the authenticated user's profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := currentUser(w, r)
	if authCtx == nil {
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleListUsers godoc
// @Summary      List users
// @Description  List all users (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.UserSummary
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /users [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	summaries := make([]*domain.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.ToSummary())
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleCreateUser godoc
// @Summary      Create user
// @Description  Create a new user account (admin only)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateUserRequest  true  "User details"
// @Success      201      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Email already in use"
// @Router       /users [post]
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already in use")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToSummary())
}

// handleDeleteUser godoc
// @Summary      Delete user
// @Description  Delete a user account (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /users/{id} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.userService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Document endpoints

// handleUploadDocument godoc
// @Summary      Upload document
// @Description  Upload a document for ingestion. The file is extracted, chunked, embedded and indexed; questions can be asked immediately after.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Document file"
// @Success      201   {object}  driving.IngestResponse
// @Failure      400   {object}  ErrorResponse  "Missing file, unsupported type or no extractable text"
// @Failure      429   {object}  ErrorResponse  "Embedding service rate limited"
// @Failure      503   {object}  ErrorResponse  "Ingestion not available"
// @Router       /documents [post]
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	authCtx := currentUser(w, r)
	if authCtx == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	resp, err := s.assistantService.Ingest(r.Context(), driving.IngestRequest{
		Filename: header.Filename,
		MimeType: mimeType,
		Data:     data,
		OwnerID:  authCtx.UserID,
	})
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  List all ingested documents, newest first
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Document
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	if docs == nil {
		docs = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleGetDocument godoc
// @Summary      Get document
// @Description  Get a document and its conversation history
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  DocumentResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, history, err := s.docService.GetWithHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}

	if history == nil {
		history = []domain.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Document: doc, History: history})
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Delete a document, its pages, conversation history and live session
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.docService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Assistant endpoints

// handleAsk godoc
// @Summary      Ask a question
// @Description  Answer a question against the document using retrieval-augmented generation. Set evaluate=true to have the answer graded.
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string      true  "Document ID"
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  domain.Answer
// @Failure      400      {object}  ErrorResponse  "Empty question"
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Failure      429      {object}  ErrorResponse  "AI service exhausted after retries"
// @Failure      503      {object}  ErrorResponse  "AI service unavailable"
// @Router       /documents/{id}/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.assistantService.Ask(r.Context(), id, req.Question, req.Evaluate)
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleSummarize godoc
// @Summary      Summarize document
// @Description  Generate a structured summary of the whole document
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  SummaryResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      429  {object}  ErrorResponse  "AI service exhausted after retries"
// @Failure      503  {object}  ErrorResponse  "AI service unavailable"
// @Router       /documents/{id}/summarize [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	summary, err := s.assistantService.Summarize(r.Context(), id)
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

// handleSuggestions godoc
// @Summary      Suggest questions
// @Description  Suggest questions a reader would likely ask about the document
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  SuggestionsResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      503  {object}  ErrorResponse  "AI service unavailable"
// @Router       /documents/{id}/suggestions [get]
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	suggestions, err := s.assistantService.Suggest(r.Context(), id)
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// handleWarmSession godoc
// @Summary      Warm document session
// @Description  Rebuild the in-memory index and history for a persisted document
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      503  {object}  ErrorResponse  "Embedding service unavailable"
// @Router       /documents/{id}/warm [post]
func (s *Server) handleWarmSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.assistantService.WarmSession(r.Context(), id); err != nil {
		writeAssistantError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "warmed"})
}

// AI settings endpoints

// handleGetAISettings godoc
// @Summary      Get AI settings
// @Description  Get the current AI configuration (admin only). API keys are never returned.
// @Tags         AI Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AISettings
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /settings/ai [get]
func (s *Server) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsService.GetAISettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get AI settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateAISettings godoc
// @Summary      Update AI settings
// @Description  Update AI configuration and hot-reload services (admin only)
// @Tags         AI Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.UpdateAISettingsRequest  true  "AI configuration"
// @Success      200      {object}  driving.AISettingsStatus
// @Failure      400      {object}  ErrorResponse  "Invalid configuration"
// @Failure      403      {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /settings/ai [put]
func (s *Server) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateAISettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := s.settingsService.UpdateAISettings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid AI configuration")
		case errors.Is(err, domain.ErrInvalidProvider):
			writeError(w, http.StatusBadRequest, "unsupported AI provider")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleGetAIStatus godoc
// @Summary      Get AI status
// @Description  Get the current availability of the embedding and LLM services
// @Tags         AI Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.AISettingsStatus
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /settings/ai/status [get]
func (s *Server) handleGetAIStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.settingsService.GetAIStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get AI status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Helper functions

// decodeJSON reads the request body into v, writing a 400 and
// returning false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// currentUser returns the request's auth context, writing a 401 when
// the middleware did not attach one.
func currentUser(w http.ResponseWriter, r *http.Request) *domain.AuthContext {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return authCtx
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAssistantError maps pipeline errors onto HTTP statuses
func writeAssistantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, domain.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "document contains no extractable text")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceExhausted):
		w.Header().Set("Retry-After", "10")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":       "rate_limit",
			"retry_after": 10,
		})
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI service not configured or unreachable")
	case errors.Is(err, domain.ErrEmbeddingFailure), errors.Is(err, domain.ErrServiceError), errors.Is(err, domain.ErrIndexStale):
		writeError(w, http.StatusServiceUnavailable, "AI service error")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
