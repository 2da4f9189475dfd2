package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven/mocks"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

type authFixture struct {
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	svc      driving.AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    mocks.NewMockUserStore(),
		sessions: mocks.NewMockSessionStore(),
	}
	f.svc = NewAuthService(f.users, f.sessions, mocks.NewMockAuthAdapter())
	return f
}

// seedUser stores a user whose password equals its hash (the mock
// adapter compares them directly).
func (f *authFixture) seedUser(t *testing.T, email, password string, active bool) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: password,
		Name:         "Test User",
		Role:         domain.RoleMember,
		Active:       active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := f.users.Save(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *authFixture) login(t *testing.T, email, password string) *domain.LoginResponse {
	t.Helper()
	resp, err := f.svc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "alice@example.com", "s3cret-pw", true)

	resp := f.login(t, "alice@example.com", "s3cret-pw")

	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if resp.User.Email != user.Email {
		t.Errorf("user = %q", resp.User.Email)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Error("token already expired")
	}

	// Login updates the last-login timestamp
	stored, _ := f.users.Get(context.Background(), user.ID)
	if stored.LastLoginAt == nil {
		t.Error("LastLoginAt not set")
	}
}

func TestAuthenticateFailures(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "alice@example.com", "s3cret-pw", true)
	f.seedUser(t, "gone@example.com", "whatever", false)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"wrong password", "alice@example.com", "nope", domain.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "s3cret-pw", domain.ErrInvalidCredentials},
		{"deactivated user", "gone@example.com", "whatever", domain.ErrUnauthorized},
		{"empty email", "", "pw", domain.ErrInvalidInput},
		{"empty password", "alice@example.com", "", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Authenticate(context.Background(), domain.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "alice@example.com", "pw-123456", true)
	resp := f.login(t, "alice@example.com", "pw-123456")

	authCtx, err := f.svc.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.UserID != user.ID {
		t.Errorf("UserID = %q", authCtx.UserID)
	}
	if authCtx.Role != domain.RoleMember {
		t.Errorf("Role = %q", authCtx.Role)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	f := newAuthFixture()

	for _, token := range []string{"", "not-a-token", "AAAA"} {
		if _, err := f.svc.ValidateToken(context.Background(), token); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("token %q: got %v, want ErrTokenInvalid", token, err)
		}
	}
}

func TestValidateTokenAfterLogout(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "alice@example.com", "pw-123456", true)
	resp := f.login(t, "alice@example.com", "pw-123456")

	if err := f.svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// The JWT is still unexpired, but the session is gone
	_, err := f.svc.ValidateToken(context.Background(), resp.Token)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestRefreshTokenRotatesSession(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "alice@example.com", "pw-123456", true)
	first := f.login(t, "alice@example.com", "pw-123456")

	second, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: first.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Token == first.Token {
		t.Error("token was not rotated")
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old refresh token is consumed
	_, err = f.svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: first.RefreshToken,
	})
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("reused refresh token: got %v, want ErrTokenInvalid", err)
	}

	// The new token validates
	if _, err := f.svc.ValidateToken(context.Background(), second.Token); err != nil {
		t.Errorf("new token invalid: %v", err)
	}
}

func TestRefreshTokenRejectsUnknown(t *testing.T) {
	f := newAuthFixture()

	for _, token := range []string{"", "never-issued"} {
		_, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{RefreshToken: token})
		if !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("token %q: got %v, want ErrTokenInvalid", token, err)
		}
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture()

	// Empty and unparseable tokens are already logged out
	if err := f.svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("empty token: %v", err)
	}
	if err := f.svc.Logout(context.Background(), "garbage"); err != nil {
		t.Errorf("garbage token: %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "alice@example.com", "pw-123456", true)

	a := f.login(t, "alice@example.com", "pw-123456")
	b := f.login(t, "alice@example.com", "pw-123456")

	if err := f.svc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for _, resp := range []*domain.LoginResponse{a, b} {
		if _, err := f.svc.ValidateToken(context.Background(), resp.Token); err == nil {
			t.Error("session survived LogoutAll")
		}
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "alice@example.com", "old-password", true)
	resp := f.login(t, "alice@example.com", "old-password")

	err := f.svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// All sessions are closed
	if _, err := f.svc.ValidateToken(context.Background(), resp.Token); err == nil {
		t.Error("session survived password change")
	}

	// Old password no longer works, new one does
	if _, err := f.svc.Authenticate(context.Background(), domain.LoginRequest{
		Email: "alice@example.com", Password: "old-password",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("old password: got %v", err)
	}
	f.login(t, "alice@example.com", "new-password")
}

func TestChangePasswordFailures(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "alice@example.com", "old-password", true)

	tests := []struct {
		name    string
		userID  string
		current string
		next    string
		want    error
	}{
		{"wrong current password", user.ID, "nope", "new-password", domain.ErrInvalidCredentials},
		{"unknown user", "ghost", "old-password", "new-password", domain.ErrNotFound},
		{"empty current", user.ID, "", "new-password", domain.ErrInvalidInput},
		{"empty new", user.ID, "old-password", "", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ChangePassword(context.Background(), tt.userID, domain.ChangePasswordRequest{
				CurrentPassword: tt.current,
				NewPassword:     tt.next,
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRandomIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := randomID(16)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
