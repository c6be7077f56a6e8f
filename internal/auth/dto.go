package auth

import "github.com/azulretail/pos-backend/pkg/enums"

// LoginResultDTO is returned after a successful credential check.
type LoginResultDTO struct {
	Token              string     `json:"token"`
	UserID             int64      `json:"user_id"`
	Username           string     `json:"username"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Role               enums.Role `json:"role"`
	PhotoURL           *string    `json:"photo_url,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
}
