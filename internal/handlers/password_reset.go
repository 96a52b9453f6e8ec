package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/propertyplus/propertyplus/api"
	"github.com/propertyplus/propertyplus/internal/apierrors"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"go.uber.org/zap"
)

func PasswordResetRouter(r chi.Router) {
	r.Post("/code", passwordResetCodeHandler())
	r.Post("/verify", passwordResetVerifyHandler())
	r.Post("/", passwordResetHandler())
}

func passwordResetCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := JsonBody[api.AuthPasswordResetCodeRequest](w, r)
		if err != nil {
			return
		}
		handleCodeRequest(w, r, normalizeEmail(request.Email), types.VerificationPurposePasswordReset)
	}
}

func passwordResetVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := JsonBody[api.AuthPasswordResetVerifyRequest](w, r)
		if err != nil {
			return
		}
		handleConfirmCode(w, r, normalizeEmail(request.Email), types.VerificationPurposePasswordReset, request.Code)
	}
}

func passwordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)
		gate := internalctx.GetVerificationGate(ctx)

		request, err := JsonBody[api.AuthPasswordResetRequest](w, r)
		if err != nil {
			return
		}
		email := normalizeEmail(request.Email)
		purpose := types.VerificationPurposePasswordReset

		if err := gate.ConfirmCode(ctx, email, purpose, request.Code); err != nil {
			if respondVerificationError(w, err) {
				return
			}
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to verify code", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		user, err := db.GetUserAccountByEmail(ctx, email)
		if errors.Is(err, apierrors.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		} else if err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to get user", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// checked before the session is consumed so the user can retry
		if security.VerifyPassword(*user, request.NewPassword) == nil {
			http.Error(w, "the new password must be different from the current password", http.StatusConflict)
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
		err = gate.Execute(ctx, email, purpose, "", func(ctx context.Context) error {
			return db.RunTx(ctx, func(ctx context.Context) error {
				if err := db.UpdateUserAccountPassword(ctx, user.ID, hash, salt); err != nil {
					return err
				}
				// a reset signs out every outstanding session
				return db.RevokeUserAccountSessions(ctx, user.ID, now)
			})
		})
		if err != nil {
			if respondVerificationError(w, err) {
				return
			}
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to reset password", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		recordSecurityEvent(ctx, types.SecurityEvent{
			UserAccountID: util.PtrTo(user.ID),
			Subject:       email,
			Kind:          types.SecurityEventPasswordReset,
			Purpose:       &purpose,
		})
		sendAccountNotice(ctx, email, func() (mail.Mail, error) {
			return mailtemplates.PasswordReset(now)
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
