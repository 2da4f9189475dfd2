package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// AuthService is the login surface of the API.
type AuthService interface {
	// Authenticate checks credentials and opens a session.
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken resolves a bearer token to an auth context.
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// RefreshToken exchanges a refresh token for a fresh pair,
	// consuming the old session.
	RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)

	// Logout ends the session behind the given token.
	Logout(ctx context.Context, token string) error

	// LogoutAll ends every session the user has open.
	LogoutAll(ctx context.Context, userID string) error

	ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}
