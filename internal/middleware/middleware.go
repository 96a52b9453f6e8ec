package middleware

import (
	"net"
	"net/http"
	"strings"

	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db/queryable"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/verification"
	"go.uber.org/zap"
)

func LoggerCtxMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internalctx.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func DbCtxMiddleware(db queryable.Queryable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internalctx.WithDb(r.Context(), db)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func MailerCtxMiddleware(mailer mail.Mailer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internalctx.WithMailer(r.Context(), mailer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func VerificationGateCtxMiddleware(gate *verification.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internalctx.WithVerificationGate(r.Context(), gate)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIPMiddleware stores the client address for security event records.
// X-Forwarded-For is only trusted when set by the reverse proxy in front of us.
func RequestIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := internalctx.WithRequestIPAddress(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RegistrationEnabled rejects signup routes when registration is turned off.
func RegistrationEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.Registration() != env.RegistrationEnabled {
			http.Error(w, "registration is disabled", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
