package verification

import "errors"

// Typed results of the verification state machine. Callers branch on these
// with errors.Is; user-facing text is the transport layer's business.
var (
	ErrNoActiveSession       = errors.New("no active verification session")
	ErrSessionExpired        = errors.New("verification session expired")
	ErrCodeMismatch          = errors.New("verification code mismatch")
	ErrNotVerified           = errors.New("verification session not verified")
	ErrAlreadyConsumed       = errors.New("verification session already consumed")
	ErrTooManyAttempts       = errors.New("too many verification attempts")
	ErrDeliveryFailed        = errors.New("verification code delivery failed")
	ErrSecondaryFactorFailed = errors.New("secondary factor check failed")
	ErrPreconditionFailed    = errors.New("verification precondition failed")
)
