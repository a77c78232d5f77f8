package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ChangeRoleRequest payload for POST /users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" form:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is an account without its credential.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// IdentityResponse describes the current session.
type IdentityResponse struct {
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// NewUserResponse strips the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// NewIdentityResponse renders a session identity.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		UserID:    identity.UserID,
		Name:      identity.Name,
		Role:      identity.Role,
		ExpiresAt: identity.ExpiresAt,
	}
}
