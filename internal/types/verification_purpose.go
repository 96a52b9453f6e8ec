package types

import "fmt"

// VerificationPurpose identifies the sensitive operation a verification
// session protects. Sessions with the same subject but different purposes are
// fully independent.
type VerificationPurpose string

const (
	VerificationPurposeSignupEmail     VerificationPurpose = "signup_email"
	VerificationPurposePasswordReset   VerificationPurpose = "password_reset"
	VerificationPurposePasswordChange  VerificationPurpose = "password_change"
	VerificationPurposeTwoFactorToggle VerificationPurpose = "two_factor_toggle"
	VerificationPurposeAccountDelete   VerificationPurpose = "account_delete"
)

func ParseVerificationPurpose(value string) (VerificationPurpose, error) {
	switch purpose := VerificationPurpose(value); purpose {
	case VerificationPurposeSignupEmail,
		VerificationPurposePasswordReset,
		VerificationPurposePasswordChange,
		VerificationPurposeTwoFactorToggle,
		VerificationPurposeAccountDelete:
		return purpose, nil
	default:
		return "", fmt.Errorf("invalid VerificationPurpose: %v", value)
	}
}
