package handlers

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/propertyplus/propertyplus/api"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/mapping"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"go.uber.org/zap"
)

func getUserSettingsHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	RespondJSON(w, mapping.UserAccountToAPI(*user))
}

func updateUserDetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	request, err := JsonBody[api.UpdateUserDetailsRequest](w, r)
	if err != nil {
		return
	}

	if err := security.VerifyPassword(*user, request.Password); err != nil {
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}

	user.ContactNumber = request.ContactNumber
	user.City = request.City
	user.State = request.State
	if err := db.UpdateUserAccountProfile(ctx, user); err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to update profile", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          types.SecurityEventProfileUpdated,
	})
	RespondJSON(w, mapping.UserAccountToAPI(*user))
}

func deleteAccountCodeHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	handleCodeRequest(w, r, user.Email, types.VerificationPurposeAccountDelete)
}

func deleteAccountVerifyHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	request, err := JsonBody[api.VerifyCodeRequest](w, r)
	if err != nil {
		return
	}
	handleConfirmCode(w, r, user.Email, types.VerificationPurposeAccountDelete, request.Code)
}

func deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	gate := internalctx.GetVerificationGate(ctx)
	user := internalctx.GetUserAccount(ctx)

	request, err := JsonBody[api.DeleteAccountRequest](w, r)
	if err != nil {
		return
	}

	err = gate.Execute(ctx, user.Email, types.VerificationPurposeAccountDelete, request.Password,
		func(ctx context.Context) error {
			// security events keep their rows, the user reference is nulled
			// by the schema
			return db.DeleteUserAccountWithID(ctx, user.ID)
		})
	if err != nil {
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to delete account", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// pending sessions for other purposes die with the account
	if err := gate.DiscardAll(ctx, user.Email); err != nil {
		log.Warn("failed to discard verification sessions", zap.Error(err))
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		Subject: user.Email,
		Kind:    types.SecurityEventAccountDeleted,
	})
	sendAccountNotice(ctx, user.Email, func() (mail.Mail, error) {
		return mailtemplates.AccountDeleted()
	})
	w.WriteHeader(http.StatusNoContent)
}
