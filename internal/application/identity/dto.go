package identity

import (
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// LoginInput carries login credentials plus an optional entity the session
// should start in.
type LoginInput struct {
	Username       string
	Password       string
	ActiveEntityID *uuid.UUID
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token auth.Token   `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Username     string     `json:"username" binding:"required,min=3,max=100"`
	Password     string     `json:"password" binding:"required,min=8"`
	Role         string     `json:"role" binding:"required"`
	HomeEntityID *uuid.UUID `json:"home_entity_id"`
	Email        string     `json:"email" binding:"omitempty,email,max=200"`
	DisplayName  string     `json:"display_name" binding:"max=200"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
	Role        *string `json:"role"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	Role         string     `json:"role"`
	HomeEntityID *uuid.UUID `json:"home_entity_id,omitempty"`
	Status       string     `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toUserResponse(user *tenancy.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         string(user.Role),
		HomeEntityID: user.HomeEntityID,
		Status:       string(user.Status),
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
	}
}
