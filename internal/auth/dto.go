package auth

import (
	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// LoginRequest captures the admin credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token paired with the bearer access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RegisterRequest contains the fields for the non-production admin registration flow.
type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"name" validate:"required,max=100"`
	Password string          `json:"password,omitempty"`
	Role     enums.AdminRole `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin viewer"`
}

// RegisterResponse returns the created admin. TempPassword is only set when
// the request omitted a password and is never retrievable again.
type RegisterResponse struct {
	Admin        *admins.AdminDTO `json:"admin"`
	TempPassword string           `json:"tempPassword,omitempty"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse contains the tokens and the authenticated admin.
type LoginResponse struct {
	TokenPair
	Admin *admins.AdminDTO `json:"admin"`
}
