package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService      driving.AuthService
	userService      driving.UserService
	assistantService driving.AssistantService
	docService       driving.DocumentService
	settingsService  driving.SettingsService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)

	maxUploadBytes int64
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// MaxUploadBytes caps document upload size
	MaxUploadBytes int64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		MaxUploadBytes: 32 << 20, // 32 MiB
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	assistantService driving.AssistantService,
	docService driving.DocumentService,
	settingsService driving.SettingsService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		authService:      authService,
		userService:      userService,
		assistantService: assistantService,
		docService:       docService,
		settingsService:  settingsService,
		taskQueue:        taskQueue,
		db:               db,
		redisClient:      redisClient,
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	s.maxUploadBytes = cfg.MaxUploadBytes

	var handler http.Handler = s.router
	handler = CORS([]string{"*"})(handler)
	handler = Logging(handler)
	handler = Recovery(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Setup endpoint (public, one-time use)
	s.router.HandleFunc("POST /api/v1/setup", s.handleSetup)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("POST /api/v1/auth/logout-all",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogoutAll)))
	s.router.Handle("POST /api/v1/auth/change-password",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChangePassword)))

	// User endpoints
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Admin-only user management
	s.router.Handle("GET /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListUsers))))
	s.router.Handle("POST /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateUser))))
	s.router.Handle("DELETE /api/v1/users/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteUser))))

	// Document endpoints (authenticated)
	s.router.Handle("POST /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUploadDocument)))
	s.router.Handle("GET /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("GET /api/v1/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("DELETE /api/v1/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteDocument)))

	// Assistant endpoints (authenticated)
	s.router.Handle("POST /api/v1/documents/{id}/ask",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAsk)))
	s.router.Handle("POST /api/v1/documents/{id}/summarize",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSummarize)))
	s.router.Handle("GET /api/v1/documents/{id}/suggestions",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSuggestions)))
	s.router.Handle("POST /api/v1/documents/{id}/warm",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleWarmSession)))

	// AI settings endpoints
	s.router.Handle("GET /api/v1/settings/ai",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleGetAISettings))))
	s.router.Handle("PUT /api/v1/settings/ai",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleUpdateAISettings))))
	s.router.Handle("GET /api/v1/settings/ai/status",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetAIStatus)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
