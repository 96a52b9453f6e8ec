package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/propertyplus/propertyplus/internal/verification"
)

var ErrParamNotDefined = errors.New("param not defined")

type requestValidator interface {
	Validate() error
}

// JsonBody decodes the request body into T and runs its Validate hook if it
// has one. On failure the error response has already been written, callers
// only need to return.
func JsonBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var result T
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return result, err
	}
	if validator, ok := any(&result).(requestValidator); ok {
		if err := validator.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return result, err
		}
	}
	return result, nil
}

func RespondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func QueryParam[T any](r *http.Request, name string, parseFunc func(string) (T, error)) (T, error) {
	if value := r.URL.Query().Get(name); value == "" {
		var zero T
		return zero, ErrParamNotDefined
	} else {
		return parseFunc(value)
	}
}

func ParseTimeFunc(layout string) func(string) (time.Time, error) {
	return func(value string) (time.Time, error) {
		return time.Parse(layout, value)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// respondVerificationError maps verification flow errors to their HTTP
// responses. It reports whether err was one of them, anything else is left
// for the caller's 500 path.
func respondVerificationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, verification.ErrCodeMismatch):
		http.Error(w, "the code is not correct", http.StatusBadRequest)
	case errors.Is(err, verification.ErrSessionExpired):
		http.Error(w, "the code has expired, please request a new one", http.StatusGone)
	case errors.Is(err, verification.ErrNoActiveSession):
		http.Error(w, "no active verification, please request a code first", http.StatusConflict)
	case errors.Is(err, verification.ErrNotVerified):
		http.Error(w, "the code has not been verified yet", http.StatusConflict)
	case errors.Is(err, verification.ErrAlreadyConsumed):
		http.Error(w, "this verification has already been used", http.StatusConflict)
	case errors.Is(err, verification.ErrPreconditionFailed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, verification.ErrTooManyAttempts):
		http.Error(w, "too many incorrect attempts, please request a new code", http.StatusTooManyRequests)
	case errors.Is(err, verification.ErrSecondaryFactorFailed):
		http.Error(w, "the password or authenticator code is not correct", http.StatusUnauthorized)
	case errors.Is(err, verification.ErrDeliveryFailed):
		http.Error(w, "the code could not be sent, please try again later", http.StatusBadGateway)
	default:
		return false
	}
	return true
}
