package model

import "time"

// Role is a user's privilege level.
type Role string

const (
	RoleStandard  Role = "standard"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStandard, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a user in the database.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the view of the user that is safe to send to clients.
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a still-valid token to exchange for a fresh one.
type RefreshRequest struct {
	Token string `json:"token"`
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role Role `json:"role"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TokenResponse is returned from token refresh.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
