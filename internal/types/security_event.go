package types

import (
	"time"

	"github.com/google/uuid"
)

type SecurityEventKind string

const (
	SecurityEventLoginSucceeded           SecurityEventKind = "login_succeeded"
	SecurityEventLoginFailed              SecurityEventKind = "login_failed"
	SecurityEventCodeIssued               SecurityEventKind = "code_issued"
	SecurityEventCodeDeliveryFailed       SecurityEventKind = "code_delivery_failed"
	SecurityEventCodeVerified             SecurityEventKind = "code_verified"
	SecurityEventCodeRejected             SecurityEventKind = "code_rejected"
	SecurityEventAccountCreated           SecurityEventKind = "account_created"
	SecurityEventAccountDeleted           SecurityEventKind = "account_deleted"
	SecurityEventPasswordReset            SecurityEventKind = "password_reset"
	SecurityEventPasswordChanged          SecurityEventKind = "password_changed"
	SecurityEventProfileUpdated           SecurityEventKind = "profile_updated"
	SecurityEventTwoFactorEnabled         SecurityEventKind = "two_factor_enabled"
	SecurityEventTwoFactorDisabled        SecurityEventKind = "two_factor_disabled"
	SecurityEventAuthenticatorAdded       SecurityEventKind = "authenticator_added"
	SecurityEventAuthenticatorRemoved     SecurityEventKind = "authenticator_removed"
	SecurityEventRecoveryCodesRegenerated SecurityEventKind = "recovery_codes_regenerated"
	SecurityEventSessionsRevoked          SecurityEventKind = "sessions_revoked"
)

// SecurityEvent is an append-only audit record. UserAccountID is nil for
// events on subjects without an account (e.g. signup codes) and for events
// that outlive the account they belong to.
type SecurityEvent struct {
	ID            uuid.UUID            `db:"id"`
	CreatedAt     time.Time            `db:"created_at"`
	UserAccountID *uuid.UUID           `db:"user_account_id"`
	Subject       string               `db:"subject"`
	Kind          SecurityEventKind    `db:"kind"`
	Purpose       *VerificationPurpose `db:"purpose"`
	IPAddress     *string              `db:"ip_address"`
	Detail        *string              `db:"detail"`
}

type SecurityEventFilter struct {
	Subject string
	Before  time.Time
	After   time.Time
	Count   int
	Kind    *SecurityEventKind
}
