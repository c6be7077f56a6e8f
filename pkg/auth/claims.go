package auth

import (
	"github.com/azulretail/pos-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID             int64
	Username           string
	FirstName          string
	LastName           string
	Role               enums.Role
	PhotoURL           *string
	MustChangePassword bool
	JTI                string
}

// AccessTokenClaims represents the typed JWT issued to clients. The user
// snapshot is denormalized into the token so the UI can render without a
// follow-up lookup.
type AccessTokenClaims struct {
	UserID             int64      `json:"user_id"`
	Username           string     `json:"username"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Role               enums.Role `json:"role"`
	PhotoURL           *string    `json:"photo_url,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	jwt.RegisteredClaims
}
