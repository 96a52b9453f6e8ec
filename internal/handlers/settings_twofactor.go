package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
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

func twoFactorCodeHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	handleCodeRequest(w, r, user.Email, types.VerificationPurposeTwoFactorToggle)
}

func twoFactorVerifyHandler(w http.ResponseWriter, r *http.Request) {
	user := internalctx.GetUserAccount(r.Context())
	request, err := JsonBody[api.VerifyCodeRequest](w, r)
	if err != nil {
		return
	}
	handleConfirmCode(w, r, user.Email, types.VerificationPurposeTwoFactorToggle, request.Code)
}

// updateTwoFactorHandler flips the two-factor flag. Turning it off goes
// through the emailed code, turning it on only needs the password, and both
// directions re-check the password when the switch happens.
func updateTwoFactorHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	gate := internalctx.GetVerificationGate(ctx)
	user := internalctx.GetUserAccount(ctx)
	purpose := types.VerificationPurposeTwoFactorToggle

	request, err := JsonBody[api.UpdateTwoFactorRequest](w, r)
	if err != nil {
		return
	}

	if request.Enabled == user.TwoFactorEnabled {
		if user.TwoFactorEnabled {
			http.Error(w, "two-factor authentication is already enabled", http.StatusBadRequest)
		} else {
			http.Error(w, "two-factor authentication is not enabled", http.StatusBadRequest)
		}
		return
	}

	if !user.TwoFactorEnabled {
		// enabling is not code-gated, the password confirmation stands in
		if err := gate.ConfirmSecondary(ctx, user.Email, purpose, request.Password); err != nil {
			if respondVerificationError(w, err) {
				return
			}
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to confirm two-factor change", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	err = gate.Execute(ctx, user.Email, purpose, request.Password, func(ctx context.Context) error {
		return db.SetUserAccountTwoFactorEnabled(ctx, user.ID, request.Enabled)
	})
	if err != nil {
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to update two-factor setting", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	kind := types.SecurityEventTwoFactorDisabled
	notice := mailtemplates.TwoFactorDisabled
	if request.Enabled {
		kind = types.SecurityEventTwoFactorEnabled
		notice = mailtemplates.TwoFactorEnabled
	}
	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          kind,
		Purpose:       &purpose,
	})
	sendAccountNotice(ctx, user.Email, func() (mail.Mail, error) { return notice() })

	user.TwoFactorEnabled = request.Enabled
	RespondJSON(w, mapping.UserAccountToAPI(*user))
}

func authenticatorSetupHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	if user.AuthenticatorEnrolled() {
		http.Error(w, "an authenticator is already enrolled", http.StatusBadRequest)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "PropertyPlus",
		AccountName: user.Email,
		Algorithm:   otp.AlgorithmSHA1,
		Digits:      otp.DigitsSix,
		Period:      30,
	})
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to generate TOTP key", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := db.UpdateUserAccountTotpSecret(ctx, user.ID, key.Secret()); err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to save TOTP secret", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	img, err := key.Image(200, 200)
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to generate QR code", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to encode QR code", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	qrCode := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	RespondJSON(w, api.SetupAuthenticatorResponse{
		Secret:    key.Secret(),
		Url:       key.String(),
		QRCodeUrl: qrCode,
	})
}

func authenticatorActivateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	request, err := JsonBody[api.ActivateAuthenticatorRequest](w, r)
	if err != nil {
		return
	}

	if user.TotpSecret == nil {
		http.Error(w, "authenticator is not set up", http.StatusBadRequest)
		return
	}
	if user.AuthenticatorEnrolled() {
		http.Error(w, "an authenticator is already enrolled", http.StatusBadRequest)
		return
	}

	if !totp.Validate(request.Code, *user.TotpSecret) {
		http.Error(w, "invalid code", http.StatusBadRequest)
		return
	}

	codes, records, err := newRecoveryCodeRecords(user.ID)
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to generate recovery codes", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = db.RunTx(ctx, func(ctx context.Context) error {
		if err := db.ActivateUserAccountTotp(ctx, user.ID); err != nil {
			return err
		}
		return db.CreateRecoveryCodes(ctx, user.ID, records)
	})
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to activate authenticator", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          types.SecurityEventAuthenticatorAdded,
	})
	RespondJSON(w, api.ActivateAuthenticatorResponse{RecoveryCodes: codes})
}

func authenticatorRemoveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	request, err := JsonBody[api.RemoveAuthenticatorRequest](w, r)
	if err != nil {
		return
	}

	if user.TotpSecret == nil {
		http.Error(w, "authenticator is not set up", http.StatusBadRequest)
		return
	}

	if err := security.VerifyPassword(*user, request.Password); err != nil {
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}

	err = db.RunTx(ctx, func(ctx context.Context) error {
		if err := db.ClearUserAccountTotp(ctx, user.ID); err != nil {
			return err
		}
		return db.DeleteAllRecoveryCodes(ctx, user.ID)
	})
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to remove authenticator", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          types.SecurityEventAuthenticatorRemoved,
	})
	w.WriteHeader(http.StatusNoContent)
}

// recoveryCodesRegenerateHandler replaces all recovery codes with a fresh
// batch. Previously issued codes stop working immediately.
func recoveryCodesRegenerateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	request, err := JsonBody[api.RegenerateRecoveryCodesRequest](w, r)
	if err != nil {
		return
	}

	if !user.AuthenticatorEnrolled() {
		http.Error(w, "no authenticator is enrolled", http.StatusBadRequest)
		return
	}

	if err := security.VerifyPassword(*user, request.Password); err != nil {
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}

	codes, records, err := newRecoveryCodeRecords(user.ID)
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to generate recovery codes", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = db.RunTx(ctx, func(ctx context.Context) error {
		if err := db.DeleteAllRecoveryCodes(ctx, user.ID); err != nil {
			return err
		}
		return db.CreateRecoveryCodes(ctx, user.ID, records)
	})
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to regenerate recovery codes", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		UserAccountID: util.PtrTo(user.ID),
		Subject:       user.Email,
		Kind:          types.SecurityEventRecoveryCodesRegenerated,
	})
	RespondJSON(w, api.RegenerateRecoveryCodesResponse{RecoveryCodes: codes})
}

func recoveryCodesStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	user := internalctx.GetUserAccount(ctx)

	if !user.AuthenticatorEnrolled() {
		http.Error(w, "no authenticator is enrolled", http.StatusBadRequest)
		return
	}

	count, err := db.CountUnusedRecoveryCodes(ctx, user.ID)
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to count recovery codes", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	RespondJSON(w, api.RecoveryCodesStatusResponse{RemainingCodes: count})
}

// newRecoveryCodeRecords generates a code batch and the hashed rows to store
// for it. The returned codes are already display-formatted.
func newRecoveryCodeRecords(userID uuid.UUID) ([]string, []types.RecoveryCode, error) {
	codes, err := security.GenerateRecoveryCodes()
	if err != nil {
		return nil, nil, err
	}
	records := make([]types.RecoveryCode, len(codes))
	formatted := make([]string, len(codes))
	for i, code := range codes {
		salt, hash, err := security.HashRecoveryCode(code)
		if err != nil {
			return nil, nil, err
		}
		records[i] = types.RecoveryCode{UserAccountID: userID, CodeHash: hash, CodeSalt: salt}
		formatted[i] = security.FormatRecoveryCode(code)
	}
	return formatted, records, nil
}
