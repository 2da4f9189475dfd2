package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// CreateUserRequest carries the fields for a new account.
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// SetupRequest creates the first admin on a fresh deployment.
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SetupResponse confirms initial setup.
type SetupResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// UserService manages accounts. Everything except Setup is admin
// territory; the HTTP layer enforces that.
type UserService interface {
	// Setup creates the first admin. It refuses once any user exists.
	Setup(ctx context.Context, req SetupRequest) (*SetupResponse, error)

	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)

	Get(ctx context.Context, id string) (*domain.User, error)

	List(ctx context.Context) ([]*domain.User, error)

	// Delete removes a user and ends all their sessions.
	Delete(ctx context.Context, id string) error
}
