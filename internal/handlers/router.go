package handlers

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/propertyplus/propertyplus/internal/auth"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db/queryable"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/middleware"
	"github.com/propertyplus/propertyplus/internal/verification"
	"go.uber.org/zap"
)

func NewRouter(
	logger *zap.Logger,
	database queryable.Queryable,
	mailer mail.Mailer,
	gate *verification.Gate,
) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	r := chi.NewRouter()
	r.Use(
		chimiddleware.Recoverer,
		sentryHandler.Handle,
		middleware.LoggerCtxMiddleware(logger),
		middleware.DbCtxMiddleware(database),
		middleware.MailerCtxMiddleware(mailer),
		middleware.VerificationGateCtxMiddleware(gate),
		middleware.RequestIPMiddleware,
		middleware.LoggingMiddleware,
	)

	r.Get("/healthz", healthzHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r)
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(auth.JWTAuth()), auth.Authenticator)
				r.Post("/logout", logoutHandler())
			})
		})
		r.Route("/settings", func(r chi.Router) {
			r.Use(jwtauth.Verifier(auth.JWTAuth()), auth.Authenticator)
			r.Get("/user", getUserSettingsHandler)
			r.Put("/user/details", updateUserDetailsHandler)
			r.Route("/password", func(r chi.Router) {
				r.Post("/code", passwordChangeCodeHandler)
				r.Post("/verify", passwordChangeVerifyHandler)
				r.Put("/", updatePasswordHandler)
			})
			r.Route("/two-factor", func(r chi.Router) {
				r.Post("/code", twoFactorCodeHandler)
				r.Post("/verify", twoFactorVerifyHandler)
				r.Put("/", updateTwoFactorHandler)
				r.Post("/authenticator", authenticatorSetupHandler)
				r.Put("/authenticator", authenticatorActivateHandler)
				r.Delete("/authenticator", authenticatorRemoveHandler)
				r.Get("/recovery-codes", recoveryCodesStatusHandler)
				r.Post("/recovery-codes", recoveryCodesRegenerateHandler)
			})
			r.Route("/account", func(r chi.Router) {
				r.Post("/delete/code", deleteAccountCodeHandler)
				r.Post("/delete/verify", deleteAccountVerifyHandler)
				r.Delete("/", deleteAccountHandler)
			})
			r.Route("/security-events", SecurityEventsRouter)
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, err := internalctx.GetDb(ctx).Exec(ctx, "SELECT 1"); err != nil {
			internalctx.GetLogger(ctx).Warn("healthz database check failed", zap.Error(err))
			http.Error(w, "database not reachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
