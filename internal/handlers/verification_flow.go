package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/propertyplus/propertyplus/api"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"github.com/propertyplus/propertyplus/internal/verification"
	"go.uber.org/zap"
)

// deliverCodeByMail builds the delivery capability for a purpose. The session
// is already written when this runs, so a failure here leaves the code valid
// for a resend.
func deliverCodeByMail(purpose types.VerificationPurpose) verification.DeliverFunc {
	return func(ctx context.Context, subject, code string) error {
		msg, err := mailtemplates.VerificationCode(purpose, code, env.VerificationExpiryWindow())
		if err != nil {
			return err
		}
		msg.To = []string{subject}
		return internalctx.GetMailer(ctx).Send(ctx, msg)
	}
}

func handleCodeRequest(w http.ResponseWriter, r *http.Request, subject string, purpose types.VerificationPurpose) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	gate := internalctx.GetVerificationGate(ctx)

	required, err := gate.RequestCode(ctx, subject, purpose, deliverCodeByMail(purpose))
	if err != nil {
		if errors.Is(err, verification.ErrDeliveryFailed) {
			log.Warn("verification code could not be delivered",
				zap.String("purpose", string(purpose)), zap.Error(err))
			recordSecurityEvent(ctx, types.SecurityEvent{
				Subject: subject,
				Kind:    types.SecurityEventCodeDeliveryFailed,
				Purpose: &purpose,
			})
		}
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to issue verification code", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if required {
		recordSecurityEvent(ctx, types.SecurityEvent{
			Subject: subject,
			Kind:    types.SecurityEventCodeIssued,
			Purpose: &purpose,
		})
	}
	RespondJSON(w, api.CodeRequestResponse{CodeRequired: required, Sent: required})
}

func handleConfirmCode(w http.ResponseWriter, r *http.Request, subject string, purpose types.VerificationPurpose, code string) {
	ctx := r.Context()
	log := internalctx.GetLogger(ctx)
	gate := internalctx.GetVerificationGate(ctx)

	if err := gate.ConfirmCode(ctx, subject, purpose, code); err != nil {
		if errors.Is(err, verification.ErrCodeMismatch) || errors.Is(err, verification.ErrTooManyAttempts) {
			recordSecurityEvent(ctx, types.SecurityEvent{
				Subject: subject,
				Kind:    types.SecurityEventCodeRejected,
				Purpose: &purpose,
			})
		}
		if respondVerificationError(w, err) {
			return
		}
		sentry.GetHubFromContext(ctx).CaptureException(err)
		log.Error("failed to verify code", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordSecurityEvent(ctx, types.SecurityEvent{
		Subject: subject,
		Kind:    types.SecurityEventCodeVerified,
		Purpose: &purpose,
	})
	w.WriteHeader(http.StatusNoContent)
}

// sendAccountNotice mails a security notice to the given address. Notices
// are best-effort, the triggering request already succeeded.
func sendAccountNotice(ctx context.Context, recipient string, render func() (mail.Mail, error)) {
	msg, err := render()
	if err == nil {
		msg.To = []string{recipient}
		err = internalctx.GetMailer(ctx).Send(ctx, msg)
	}
	if err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		internalctx.GetLogger(ctx).Warn("failed to send notice mail", zap.Error(err))
	}
}

// recordSecurityEvent appends to the audit trail. Auditing is best-effort, a
// failed insert is reported but never fails the request that caused it.
func recordSecurityEvent(ctx context.Context, event types.SecurityEvent) {
	if event.IPAddress == nil {
		event.IPAddress = util.PtrTo(internalctx.GetRequestIPAddress(ctx))
	}
	if err := db.CreateSecurityEvent(ctx, &event); err != nil {
		sentry.GetHubFromContext(ctx).CaptureException(err)
		internalctx.GetLogger(ctx).Warn("failed to record security event",
			zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
