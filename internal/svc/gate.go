package svc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/verification"
)

// createVerificationGate assembles the purpose policies for all protected
// account actions. The policies query through the context-scoped database,
// so the gate only works inside a request or job context.
func createVerificationGate(store verification.Store) *verification.Gate {
	return verification.NewGate(store, checkSecondaryFactor, map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {
			Precheck: signupEmailPrecheck,
		},
		types.VerificationPurposePasswordReset: {
			Precheck: passwordResetPrecheck,
		},
		types.VerificationPurposePasswordChange: {
			CodeRequired: twoFactorCodeRequired,
		},
		types.VerificationPurposeTwoFactorToggle: {
			CodeRequired:       twoFactorCodeRequired,
			SecondaryOnExecute: true,
		},
		types.VerificationPurposeAccountDelete: {
			SecondaryOnExecute: true,
		},
	})
}

// signupEmailPrecheck stops code delivery to addresses that already have an
// account, which would otherwise leak registration spam to their inbox.
func signupEmailPrecheck(ctx context.Context, subject string) error {
	if exists, err := db.ExistsUserAccountWithEmail(ctx, subject); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: this email is already registered", verification.ErrPreconditionFailed)
	}
	return nil
}

func passwordResetPrecheck(ctx context.Context, subject string) error {
	if exists, err := db.ExistsUserAccountWithEmail(ctx, subject); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%w: this email is not registered", verification.ErrPreconditionFailed)
	}
	return nil
}

// twoFactorCodeRequired gates the action behind a mail code only for
// accounts with two-factor authentication enabled. Everyone else confirms
// with their password instead.
func twoFactorCodeRequired(ctx context.Context, subject string) (bool, error) {
	user, err := db.GetUserAccountByEmail(ctx, subject)
	if err != nil {
		return false, err
	}
	return user.TwoFactorEnabled, nil
}

// checkSecondaryFactor accepts an authenticator code or an unused recovery
// code when an authenticator is enrolled, and the account password otherwise.
func checkSecondaryFactor(ctx context.Context, subject string, secret string) error {
	user, err := db.GetUserAccountByEmail(ctx, subject)
	if err != nil {
		return err
	}
	if user.AuthenticatorEnrolled() {
		if totp.Validate(secret, *user.TotpSecret) {
			return nil
		}
		if ok, err := redeemRecoveryCode(ctx, user.ID, secret); err != nil {
			return err
		} else if ok {
			return nil
		}
	}
	return security.VerifyPassword(*user, secret)
}

// redeemRecoveryCode burns the matching unused recovery code, if there is one.
func redeemRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	codes, err := db.GetUnusedRecoveryCodes(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, candidate := range codes {
		if security.VerifyRecoveryCode(code, candidate.CodeSalt, candidate.CodeHash) {
			if err := db.MarkRecoveryCodeAsUsed(ctx, candidate.ID); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
