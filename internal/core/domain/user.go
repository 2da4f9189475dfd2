package domain

import "time"

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin  Role = "admin"  // Manage users and AI settings
	RoleMember Role = "member" // Upload documents, ask questions
)

// User is an account on this deployment.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserSummary is the view of a user returned over the API. It carries
// everything a client needs and nothing secret.
type UserSummary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanUpload reports whether the user may ingest documents.
func (u *User) CanUpload() bool {
	return u.Active && (u.Role == RoleAdmin || u.Role == RoleMember)
}
