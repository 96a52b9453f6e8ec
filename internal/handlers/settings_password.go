package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/propertyplus/propertyplus/api"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"go.uber.org/zap"
)

func passwordChangeCodeHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	handleCodeRequest(w, r, user.Email, types.VerificationPurposePasswordChange)
}

func passwordChangeVerifyHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	request, err := JsonBody[api.VerifyCodeRequest](w, r)
	if err != nil {
		return
	}
	handleConfirmCode(w, r, user.Email, types.VerificationPurposePasswordChange, request.Code)
}

// updatePasswordHandler finalizes a password change. Accounts with two-factor
// enabled confirm with the emailed code, everyone else confirms with their
// current password.
func updatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	gate := internalctx.GetVerificationGate(ctx)
	user := internalctx.GetUserAccount(ctx)
	purpose := types.VerificationPurposePasswordChange

	request, err := JsonBody[api.UpdatePasswordRequest](w, r)
	if err != nil {
		return
	}

	if security.VerifyPassword(*user, request.NewPassword) == nil {
		http.Error(w, "the new password must be different from the current password", http.StatusConflict)
		return
	}

	if user.TwoFactorEnabled {
		if request.Code == nil {
			http.Error(w, "a verification code is required to change the password", http.StatusBadRequest)
			return
		}
		err = gate.ConfirmCode(ctx, user.Email, purpose, *request.Code)
	} else {
		if request.CurrentPassword == nil {
			http.Error(w, "the current password is required to change the password", http.StatusBadRequest)
			return
		}
		err = gate.ConfirmSecondary(ctx, user.Email, purpose, *request.CurrentPassword)
	}
	if err != nil {
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to confirm password change", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	salt, hash, err := security.HashPassword(request.NewPassword)
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to hash password", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	err = gate.Execute(ctx, user.Email, purpose, "", func(ctx context.Context) error {
		return db.UpdateUserAccountPassword(ctx, user.ID, hash, salt)
	})
	if err != nil {
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to update password", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          types.SecurityEventPasswordChanged,
		Purpose:       &purpose,
	})
	sendAccountNotice(ctx, user.Email, func() (mail.Mail, error) {
		return mailtemplates.PasswordChanged(now)
	})
	w.WriteHeader(http.StatusNoContent)
}
