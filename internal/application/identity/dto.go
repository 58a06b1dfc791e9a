package identity

import (
	"time"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=180"`
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest edits the optional profile fields
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url,max=500"`
}

// ChangePasswordRequest replaces the password
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Username           string     `json:"username"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	FullName           string     `json:"full_name"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	Roles              []string   `json:"roles"`
	Pro                bool       `json:"pro"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time     `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time     `json:"refresh_token_expires_at"`
	TokenType             string        `json:"token_type"`
	User                  *UserResponse `json:"user,omitempty"`
}

// ToUserResponse converts a user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName(),
		AvatarURL:          u.AvatarURL,
		Roles:              u.RoleNames(),
		Pro:                u.IsPro(),
		SubscriptionStatus: string(u.SubscriptionStatus),
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

func toAuthResponse(pair *auth.TokenPair, u *identity.User) *AuthResponse {
	resp := &AuthResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
	if u != nil {
		user := ToUserResponse(u)
		resp.User = &user
	}
	return resp
}
