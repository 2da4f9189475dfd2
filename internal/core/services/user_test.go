package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven/mocks"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

func newTestUserService() (*mocks.MockUserStore, *mocks.MockSessionStore, driving.UserService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	svc := NewUserService(userStore, sessionStore, mocks.NewMockAuthAdapter())
	return userStore, sessionStore, svc
}

func TestUserService_Setup(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	resp, err := svc.Setup(ctx, driving.SetupRequest{
		Email:    "admin@example.com",
		Password: "password123",
		Name:     "Admin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", resp.User.Role)
	}
	if !resp.User.Active {
		t.Error("expected the bootstrap user to be active")
	}
}

func TestUserService_Setup_OnlyOnce(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	_, err := svc.Setup(ctx, driving.SetupRequest{
		Email:    "admin@example.com",
		Password: "password123",
		Name:     "Admin",
	})
	if err != nil {
		t.Fatalf("first setup failed: %v", err)
	}

	_, err = svc.Setup(ctx, driving.SetupRequest{
		Email:    "second@example.com",
		Password: "password123",
		Name:     "Second",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden on second setup, got %v", err)
	}
}

func TestUserService_Setup_InvalidInput(t *testing.T) {
	_, _, svc := newTestUserService()

	tests := []struct {
		name string
		req  driving.SetupRequest
	}{
		{"empty email", driving.SetupRequest{Password: "password123", Name: "A"}},
		{"empty password", driving.SetupRequest{Email: "a@b.com", Name: "A"}},
		{"empty name", driving.SetupRequest{Email: "a@b.com", Password: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Setup(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUserService_Create(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, driving.CreateUserRequest{
		Email:    "  Member@Example.COM ",
		Password: "password123",
		Name:     "  Member  ",
		Role:     domain.RoleMember,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "member@example.com" {
		t.Errorf("email not normalised: %q", user.Email)
	}
	if user.Name != "Member" {
		t.Errorf("name not trimmed: %q", user.Name)
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     driving.CreateUserRequest
		wantErr error
	}{
		{
			name:    "missing at sign",
			req:     driving.CreateUserRequest{Email: "nope", Password: "password123", Name: "N", Role: domain.RoleMember},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "short password",
			req:     driving.CreateUserRequest{Email: "a@b.com", Password: "short", Name: "N", Role: domain.RoleMember},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown role",
			req:     driving.CreateUserRequest{Email: "a@b.com", Password: "password123", Name: "N", Role: "owner"},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	req := driving.CreateUserRequest{
		Email:    "dup@example.com",
		Password: "password123",
		Name:     "Dup",
		Role:     domain.RoleMember,
	}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_Delete_InvalidatesSessions(t *testing.T) {
	_, sessionStore, svc := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, driving.CreateUserRequest{
		Email:    "gone@example.com",
		Password: "password123",
		Name:     "Gone",
		Role:     domain.RoleMember,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	session := &domain.Session{ID: "sess-1", UserID: user.ID, Token: "tok"}
	_ = sessionStore.Save(ctx, session)

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected user gone, got %v", err)
	}
	if _, err := sessionStore.Get(ctx, "sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("expected sessions to be invalidated")
	}
}

func TestUserService_List(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		if _, err := svc.Create(ctx, driving.CreateUserRequest{
			Email: email, Password: "password123", Name: "U", Role: domain.RoleMember,
		}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}
