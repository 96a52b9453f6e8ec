package verification

import (
	"context"
	"time"

	"github.com/propertyplus/propertyplus/internal/types"
)

const (
	DefaultResendWindow = 60 * time.Second
	DefaultExpiryWindow = 10 * time.Minute
)

// Config holds the timing rules shared by all Store implementations.
// MaxAttempts of 0 means unlimited code mismatches are tolerated.
type Config struct {
	ResendWindow time.Duration
	ExpiryWindow time.Duration
	MaxAttempts  int
}

// WithDefaults fills unset windows with the package defaults.
func (c Config) WithDefaults() Config {
	if c.ResendWindow <= 0 {
		c.ResendWindow = DefaultResendWindow
	}
	if c.ExpiryWindow <= 0 {
		c.ExpiryWindow = DefaultExpiryWindow
	}
	return c
}

// Store is the authoritative owner of per-(subject, purpose) one-time-code
// state. At most one session exists per key; issuing replaces any prior one.
// Implementations linearize operations on the same key.
type Store interface {
	// IssueOrReuse returns the existing code with isNew=false if a live,
	// unconsumed code session younger than the resend window exists, and
	// otherwise replaces the session with a freshly generated code.
	IssueOrReuse(ctx context.Context, subject string, purpose types.VerificationPurpose) (code string, isNew bool, err error)

	// Verify checks a submitted code against the active session. It returns
	// ErrNoActiveSession, ErrSessionExpired, ErrCodeMismatch or
	// ErrTooManyAttempts; on a match it marks the session verified. Repeating
	// a successful verification is allowed and changes nothing. Expired
	// sessions are reported but not removed.
	Verify(ctx context.Context, subject string, purpose types.VerificationPurpose, code string) error

	// GrantVerified records a successful non-code confirmation as a verified,
	// codeless session, replacing any existing session for the key.
	GrantVerified(ctx context.Context, subject string, purpose types.VerificationPurpose) error

	// Consume spends a verified session. It returns ErrNoActiveSession,
	// ErrNotVerified or ErrAlreadyConsumed; success is terminal for the
	// session.
	Consume(ctx context.Context, subject string, purpose types.VerificationPurpose) error

	// Discard drops any session for the key. Discarding a missing session is
	// not an error.
	Discard(ctx context.Context, subject string, purpose types.VerificationPurpose) error
}
