package driven

import "github.com/veridoc-labs/veridoc-core/internal/core/domain"

// AuthAdapter covers the cryptographic half of authentication:
// password hashing and token signing. Session persistence lives in
// SessionStore.
type AuthAdapter interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
