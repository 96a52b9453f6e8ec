package auth

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/propertyplus/propertyplus/internal/apierrors"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"go.uber.org/zap"
)

// Authenticator validates the verified token against the database and puts
// the AuthInfo and the loaded UserAccount into the request context. It must
// run after jwtauth.Verifier.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)

		token, _, err := jwtauth.FromContext(ctx)
		if err != nil || token == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(token.Subject())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		user, err := db.GetUserAccountByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apierrors.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			} else {
				sentry.GetHubFromContext(ctx).CaptureException(err)
				log.Error("failed to get user for token", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		// tokens issued before the revocation marker are dead
		if user.TokenInvalidBefore != nil && token.IssuedAt().Before(*user.TokenInvalidBefore) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx = withAuthInfo(ctx, AuthInfo{userID: user.ID, email: user.Email, name: user.Name})
		ctx = internalctx.WithUserAccount(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
