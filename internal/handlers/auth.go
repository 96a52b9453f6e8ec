package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/propertyplus/propertyplus/api"
	"github.com/propertyplus/propertyplus/internal/apierrors"
	"github.com/propertyplus/propertyplus/internal/auth"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/mapping"
	"github.com/propertyplus/propertyplus/internal/middleware"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"go.uber.org/zap"
)

// AuthRouter carries the anonymous account routes.
func AuthRouter(r chi.Router) {
	r.Use(httprate.LimitByIP(30, time.Minute))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RegistrationEnabled)
		r.Post("/register/code", registerCodeHandler())
		r.Post("/register/verify", registerVerifyHandler())
		r.Post("/register", registerHandler())
	})
	r.Post("/login", loginHandler())
	r.Route("/password-reset", PasswordResetRouter)
}

func registerCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := JsonBody[api.AuthRegisterCodeRequest](w, r)
		if err != nil {
			return
		}
		handleCodeRequest(w, r, normalizeEmail(request.Email), types.VerificationPurposeSignupEmail)
	}
}

func registerVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := JsonBody[api.AuthRegisterVerifyRequest](w, r)
		if err != nil {
			return
		}
		handleConfirmCode(w, r, normalizeEmail(request.Email), types.VerificationPurposeSignupEmail, request.Code)
	}
}

func registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)
		gate := internalctx.GetVerificationGate(ctx)

		request, err := JsonBody[api.AuthRegistrationRequest](w, r)
		if err != nil {
			return
		}
		email := normalizeEmail(request.Email)

		salt, hash, err := security.HashPassword(request.Password)
		if err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to hash password", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		user := types.UserAccount{
			Email:         email,
			Name:          request.Name,
			PasswordHash:  hash,
			PasswordSalt:  salt,
			ContactNumber: request.ContactNumber,
			City:          request.City,
			State:         request.State,
		}

		createAccount := func(ctx context.Context) error {
			return db.RunTx(ctx, func(ctx context.Context) error {
				if err := db.CreateUserAccount(ctx, &user); err != nil {
					return err
				}
				if env.SignupCodeRequired() {
					// the code that just got consumed proved ownership of the address
					if err := db.SetUserAccountEmailVerified(ctx, user.ID); err != nil {
						return err
					}
					user.EmailVerifiedAt = util.PtrTo(time.Now())
				}
				return nil
			})
		}

		if env.SignupCodeRequired() {
			purpose := types.VerificationPurposeSignupEmail
			if request.Code != "" {
				if err := gate.ConfirmCode(ctx, email, purpose, request.Code); err != nil {
					if respondVerificationError(w, err) {
						return
					}
					sentry.GetHubFromContext(ctx).CaptureException(err)
					log.Error("failed to verify code", zap.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}
			err = gate.Execute(ctx, email, purpose, "", createAccount)
		} else {
			err = createAccount(ctx)
		}

		if err != nil {
			if errors.Is(err, apierrors.ErrAlreadyExists) {
				http.Error(w, "this email is already registered", http.StatusConflict)
			} else if respondVerificationError(w, err) {
				return
			} else {
				sentry.GetHubFromContext(ctx).CaptureException(err)
				log.Error("failed to create account", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		recordSecurityEvent(ctx, types.SecurityEvent{
			UserAccountID: util.PtrTo(user.ID),
			Subject:       email,
			Kind:          types.SecurityEventAccountCreated,
		})
		sendAccountNotice(ctx, email, func() (mail.Mail, error) {
			return mailtemplates.Welcome(user.Name)
		})

		_, token, err := auth.NewSessionToken(user)
		if err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to create session token", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		RespondJSON(w, api.AuthLoginResponse{Token: token, User: mapping.UserAccountToAPI(user)})
	}
}

func loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)

		request, err := JsonBody[api.AuthLoginRequest](w, r)
		if err != nil {
			return
		}
		email := normalizeEmail(request.Email)

		user, err := db.GetUserAccountByEmail(ctx, email)
		if errors.Is(err, apierrors.ErrNotFound) {
			recordSecurityEvent(ctx, types.SecurityEvent{Subject: email, Kind: types.SecurityEventLoginFailed})
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		} else if err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to get user", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err := security.VerifyPassword(*user, request.Password); err != nil {
			if errors.Is(err, security.ErrInvalidPassword) {
				recordSecurityEvent(ctx, types.SecurityEvent{
					UserAccountID: util.PtrTo(user.ID),
					Subject:       email,
					Kind:          types.SecurityEventLoginFailed,
				})
				http.Error(w, "invalid email or password", http.StatusUnauthorized)
			} else {
				sentry.GetHubFromContext(ctx).CaptureException(err)
				log.Error("failed to verify password", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		_, token, err := auth.NewSessionToken(*user)
		if err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to create session token", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		recordSecurityEvent(ctx, types.SecurityEvent{
			UserAccountID: util.PtrTo(user.ID),
			Subject:       email,
			Kind:          types.SecurityEventLoginSucceeded,
		})
		RespondJSON(w, api.AuthLoginResponse{Token: token, User: mapping.UserAccountToAPI(*user)})
	}
}

func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)
		authInfo := auth.Authentication.Require(ctx)

		if err := db.RevokeUserAccountSessions(ctx, authInfo.CurrentUserID(), time.Now()); err != nil {
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Error("failed to revoke sessions", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		recordSecurityEvent(ctx, types.SecurityEvent{
			UserAccountID: util.PtrTo(authInfo.CurrentUserID()),
			Subject:       authInfo.CurrentUserEmail(),
			Kind:          types.SecurityEventSessionsRevoked,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
