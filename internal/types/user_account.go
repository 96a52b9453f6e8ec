package types

import (
	"time"

	"github.com/google/uuid"
)

type UserAccount struct {
	ID                 uuid.UUID  `db:"id"`
	CreatedAt          time.Time  `db:"created_at"`
	Email              string     `db:"email"`
	EmailVerifiedAt    *time.Time `db:"email_verified_at"`
	Name               string     `db:"name"`
	PasswordHash       []byte     `db:"password_hash"`
	PasswordSalt       []byte     `db:"password_salt"`
	PasswordChangedAt  *time.Time `db:"password_changed_at"`
	TwoFactorEnabled   bool       `db:"two_factor_enabled"`
	TotpSecret         *string    `db:"totp_secret"`
	TotpActivatedAt    *time.Time `db:"totp_activated_at"`
	TokenInvalidBefore *time.Time `db:"token_invalid_before"`
	ContactNumber      *string    `db:"contact_number"`
	City               *string    `db:"city"`
	State              *string    `db:"state"`
}

// AuthenticatorEnrolled reports whether the account has completed TOTP
// authenticator setup. An unactivated secret does not count.
func (u *UserAccount) AuthenticatorEnrolled() bool {
	return u.TotpSecret != nil && u.TotpActivatedAt != nil
}
