package services

import (
	"context"
	"strings"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

var _ driving.UserService = (*userService)(nil)

// userService manages accounts. Creation and deletion are admin
// operations; Setup bootstraps the very first admin.
type userService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
}

// NewUserService creates a new UserService
func NewUserService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.UserService {
	return &userService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
	}
}

// Setup creates the initial admin account. It refuses once any user
// exists, so the endpoint is a no-op on a configured install.
func (s *userService) Setup(ctx context.Context, req driving.SetupRequest) (*driving.SetupResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	count, err := s.userStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrForbidden
	}

	user, err := s.Create(ctx, driving.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &driving.SetupResponse{
		User:    user,
		Message: "Setup complete. You can now log in.",
	}, nil
}

// Create adds a user with a freshly hashed password.
func (s *userService) Create(ctx context.Context, req driving.CreateUserRequest) (*domain.User, error) {
	if err := validateNewUser(req); err != nil {
		return nil, err
	}

	if existing, _ := s.userStore.GetByEmail(ctx, req.Email); existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	passwordHash, err := s.authAdapter.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           randomID(16),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userStore.List(ctx)
}

// Delete removes a user and closes all their sessions.
func (s *userService) Delete(ctx context.Context, id string) error {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return err
	}

	_ = s.sessionStore.DeleteByUser(ctx, user.ID)
	return s.userStore.Delete(ctx, id)
}

func validateNewUser(req driving.CreateUserRequest) error {
	switch {
	case req.Email == "", !strings.Contains(req.Email, "@"):
		return domain.ErrInvalidInput
	case len(req.Password) < 8:
		return domain.ErrInvalidInput
	case req.Name == "":
		return domain.ErrInvalidInput
	}
	switch req.Role {
	case domain.RoleAdmin, domain.RoleMember:
		return nil
	default:
		return domain.ErrInvalidInput
	}
}
