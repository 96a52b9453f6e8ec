package api

import (
	"github.com/propertyplus/propertyplus/internal/validation"
)

type UpdateUserDetailsRequest struct {
	Password      string  `json:"password"`
	ContactNumber *string `json:"contactNumber,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
}

func (r *UpdateUserDetailsRequest) Validate() error {
	if r.Password == "" {
		return validation.NewValidationFailedError("password is empty")
	}
	return nil
}

// UpdatePasswordRequest finalizes a password change. Accounts with two-factor
// enabled send the emailed code, all others send their current password.
type UpdatePasswordRequest struct {
	Code            *string `json:"code,omitempty"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword"`
}

func (r *UpdatePasswordRequest) Validate() error {
	return validation.ValidatePassword(r.NewPassword)
}

type UpdateTwoFactorRequest struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password"`
}

type SetupAuthenticatorResponse struct {
	Secret    string `json:"secret"`
	Url       string `json:"url"`
	QRCodeUrl string `json:"qrCodeUrl"`
}

type ActivateAuthenticatorRequest struct {
	Code string `json:"code"`
}

// ActivateAuthenticatorResponse carries the freshly generated recovery codes.
// This is the only time they are shown in plain text.
type ActivateAuthenticatorResponse struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}

type RemoveAuthenticatorRequest struct {
	Password string `json:"password"`
}

type RegenerateRecoveryCodesRequest struct {
	Password string `json:"password"`
}

type RegenerateRecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}

type RecoveryCodesStatusResponse struct {
	RemainingCodes int `json:"remainingCodes"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}
