package driven

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// SessionStore persists auth sessions. Redis backs it when available,
// postgres otherwise; the auth service cannot tell the difference.
type SessionStore interface {
	// Save stores a session, expiring it at its ExpiresAt.
	Save(ctx context.Context, session *domain.Session) error

	Get(ctx context.Context, id string) (*domain.Session, error)

	// GetByRefreshToken resolves the refresh token handed out at
	// login back to its session.
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)

	Delete(ctx context.Context, id string) error

	// DeleteByUser ends every session the user has open.
	DeleteByUser(ctx context.Context, userID string) error
}
