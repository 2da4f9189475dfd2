package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

var _ driving.AuthService = (*authService)(nil)

// authService issues and validates sessions. Access tokens are JWTs
// checked against a stored session so logout takes effect before the
// token expires.
type authService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
	tokenTTL     time.Duration
}

func NewAuthService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
		tokenTTL:     24 * time.Hour,
	}
}

// issueSession mints a token pair for the user and persists the
// backing session.
func (s *authService) issueSession(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	now := time.Now()
	sessionID := randomID(16)
	expiresAt := now.Add(s.tokenTTL)

	token, err := s.authAdapter.GenerateToken(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken := randomID(32)
	session := &domain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
	}
	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.ToSummary(),
	}, nil
}

// Authenticate checks credentials and opens a session.
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same error as a bad password so the endpoint does not leak
		// which emails exist.
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}
	if !s.authAdapter.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.userStore.UpdateLastLogin(ctx, user.ID)
	return resp, nil
}

// ValidateToken resolves a bearer token to an auth context.
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	// The session must still exist: logout deletes it.
	session, err := s.sessionStore.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}, nil
}

// RefreshToken rotates a session: the presented refresh token is
// consumed, its session deleted, and a fresh pair issued.
func (s *authService) RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
	if req.RefreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}

	session, err := s.sessionStore.GetByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userStore.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	_ = s.sessionStore.Delete(ctx, session.ID)
	return s.issueSession(ctx, user)
}

// Logout deletes the session behind the token. An unparseable token
// is already dead, so that case succeeds quietly.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil
	}
	return s.sessionStore.Delete(ctx, claims.SessionID)
}

// LogoutAll deletes every session the user has open.
func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	return s.sessionStore.DeleteByUser(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash
// and forces re-login everywhere.
func (s *authService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.userStore.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.authAdapter.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	newHash, err := s.authAdapter.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}

	return s.sessionStore.DeleteByUser(ctx, userID)
}

// randomID returns n random bytes, URL-safe base64 encoded.
func randomID(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
