package types

import "time"

// VerificationSession is the one-time-code state for a (subject, purpose)
// pair. Code is nil for sessions that were granted through a non-code
// confirmation (e.g. password re-entry) instead of a delivered code.
type VerificationSession struct {
	Subject    string              `db:"subject"`
	Purpose    VerificationPurpose `db:"purpose"`
	Code       *string             `db:"code"`
	IssuedAt   time.Time           `db:"issued_at"`
	VerifiedAt *time.Time          `db:"verified_at"`
	ConsumedAt *time.Time          `db:"consumed_at"`
	Attempts   int                 `db:"attempts"`
}
