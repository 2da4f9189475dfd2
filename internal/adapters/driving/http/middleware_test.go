package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			if token != "good-token" {
				return nil, domain.ErrTokenInvalid
			}
			return &domain.AuthContext{UserID: "user-1", Role: domain.RoleMember}, nil
		},
	}
	m := NewAuthMiddleware(auth)

	var gotCtx *domain.AuthContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if gotCtx == nil || gotCtx.UserID != "user-1" {
		t.Errorf("auth context = %+v", gotCtx)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		err        error
	}{
		{"no header", "", nil},
		{"not bearer", "Basic dXNlcjpwdw==", nil},
		{"invalid token", "Bearer bad", domain.ErrTokenInvalid},
		{"expired token", "Bearer old", domain.ErrTokenExpired},
		{"logged out", "Bearer gone", domain.ErrSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
					return nil, tt.err
				},
			}
			m := NewAuthMiddleware(auth)

			called := false
			req := httptest.NewRequest("GET", "/api/v1/documents", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			m.Authenticate(okHandler(&called)).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if called {
				t.Error("handler ran despite rejection")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})

	tests := []struct {
		name       string
		authCtx    *domain.AuthContext
		wantStatus int
	}{
		{"admin", &domain.AuthContext{UserID: "u", Role: domain.RoleAdmin}, http.StatusOK},
		{"member", &domain.AuthContext{UserID: "u", Role: domain.RoleMember}, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest("GET", "/api/v1/users", nil)
			if tt.authCtx != nil {
				req = req.WithContext(context.WithValue(req.Context(), authContextKey, tt.authCtx))
			}
			rr := httptest.NewRecorder()
			m.RequireAdmin(okHandler(&called)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("called = %t", called)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	guard := m.RequireRole(domain.RoleAdmin, domain.RoleMember)

	called := false
	req := httptest.NewRequest("GET", "/x", nil)
	req = req.WithContext(context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u", Role: domain.RoleMember}))
	rr := httptest.NewRecorder()
	guard(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !called {
		t.Errorf("status = %d, called = %t", rr.Code, called)
	}

	// A role outside the list is rejected
	called = false
	req = httptest.NewRequest("GET", "/x", nil)
	req = req.WithContext(context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u", Role: domain.Role("viewer")}))
	rr = httptest.NewRecorder()
	guard(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden || called {
		t.Errorf("status = %d, called = %t", rr.Code, called)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"Token abc123", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := extractBearerToken(req); got != tt.want {
			t.Errorf("header %q: got %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestGetAuthContextNilSafety(t *testing.T) {
	if GetAuthContext(nil) != nil {
		t.Error("nil context should yield nil")
	}
	if GetAuthContext(context.Background()) != nil {
		t.Error("empty context should yield nil")
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestLoggingPreservesStatus(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS([]string{"https://app.example.com"})(okHandler(&called))

	// Allowed origin gets the headers
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if !called {
		t.Error("handler not called")
	}

	// Unknown origin gets no headers
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected allow-origin for unknown origin")
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := CORS([]string{"*"})(okHandler(&called))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
}
