package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Email   string
	Role    enums.AdminRole
	// JTI doubles as the redis session id; generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to admins.
type AccessTokenClaims struct {
	AdminID uuid.UUID       `json:"admin_id"`
	Email   string          `json:"email,omitempty"`
	Role    enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
