package api

import (
	"time"

	"github.com/google/uuid"
)

type UserAccountResponse struct {
	ID                    uuid.UUID  `json:"id"`
	CreatedAt             time.Time  `json:"createdAt"`
	Email                 string     `json:"email"`
	EmailVerified         bool       `json:"emailVerified"`
	Name                  string     `json:"name"`
	ContactNumber         *string    `json:"contactNumber,omitempty"`
	City                  *string    `json:"city,omitempty"`
	State                 *string    `json:"state,omitempty"`
	TwoFactorEnabled      bool       `json:"twoFactorEnabled"`
	AuthenticatorEnrolled bool       `json:"authenticatorEnrolled"`
	PasswordChangedAt     *time.Time `json:"passwordChangedAt,omitempty"`
}
