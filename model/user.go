package model

import (
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
)

// User is the account record returned by /me and /auth/login.
type User struct {
	ID              uint64        `json:"id"`
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	Role            constant.Role `json:"role"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
}

type PublicProfile struct {
	ID              uint64        `json:"id"`
	Username        string        `json:"username"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	Role            constant.Role `json:"role"`
	JoinedAt        time.Time     `json:"joined_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse accepts both the wrapped {token, user} shape and a bare user
// object with the token delivered separately.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	Username        string `json:"username,omitempty" validate:"omitempty,min=3"`
	ProfileImageURL string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

type PromoteRequest struct {
	Role constant.Role `json:"role" validate:"required,oneof=user seller admin"`
}
