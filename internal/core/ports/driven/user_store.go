package driven

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Save inserts or updates a user by ID.
	Save(ctx context.Context, user *domain.User) error

	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail looks a user up by their login email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	List(ctx context.Context) ([]*domain.User, error)

	Delete(ctx context.Context, id string) error

	// Count is used by Setup to decide whether a first admin may still
	// be created.
	Count(ctx context.Context) (int, error)

	UpdateLastLogin(ctx context.Context, id string) error
}
