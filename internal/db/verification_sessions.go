package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/verification"
)

const verificationSessionOutputExpr = `
	s.subject, s.purpose, s.code, s.issued_at, s.verified_at, s.consumed_at, s.attempts `

func getVerificationSessionForUpdate(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) (*types.VerificationSession, error) {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`SELECT`+verificationSessionOutputExpr+`
		FROM VerificationSession s
		WHERE s.subject = @subject AND s.purpose = @purpose
		FOR UPDATE`,
		pgx.NamedArgs{"subject": subject, "purpose": purpose},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query VerificationSession: %w", err)
	}
	if session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[types.VerificationSession]); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to collect VerificationSession: %w", err)
	} else {
		return session, nil
	}
}

func UpsertVerificationSession(ctx context.Context, session *types.VerificationSession) error {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`INSERT INTO VerificationSession AS s (subject, purpose, code, issued_at, verified_at)
		VALUES (@subject, @purpose, @code, @issuedAt, @verifiedAt)
		ON CONFLICT (subject, purpose) DO UPDATE
			SET code = @code, issued_at = @issuedAt, verified_at = @verifiedAt,
				consumed_at = NULL, attempts = 0
		RETURNING`+verificationSessionOutputExpr,
		pgx.NamedArgs{
			"subject":    session.Subject,
			"purpose":    session.Purpose,
			"code":       session.Code,
			"issuedAt":   session.IssuedAt,
			"verifiedAt": session.VerifiedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("could not upsert VerificationSession: %w", err)
	}
	if result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[types.VerificationSession]); err != nil {
		return fmt.Errorf("could not collect VerificationSession: %w", err)
	} else {
		*session = result
		return nil
	}
}

func incrementVerificationSessionAttempts(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`UPDATE VerificationSession SET attempts = attempts + 1
		WHERE subject = @subject AND purpose = @purpose`,
		pgx.NamedArgs{"subject": subject, "purpose": purpose},
	)
	if err != nil {
		return fmt.Errorf("could not update VerificationSession attempts: %w", err)
	}
	return nil
}

func setVerificationSessionVerified(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`UPDATE VerificationSession SET verified_at = now()
		WHERE subject = @subject AND purpose = @purpose`,
		pgx.NamedArgs{"subject": subject, "purpose": purpose},
	)
	if err != nil {
		return fmt.Errorf("could not update VerificationSession: %w", err)
	}
	return nil
}

func setVerificationSessionConsumed(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`UPDATE VerificationSession SET consumed_at = now()
		WHERE subject = @subject AND purpose = @purpose`,
		pgx.NamedArgs{"subject": subject, "purpose": purpose},
	)
	if err != nil {
		return fmt.Errorf("could not update VerificationSession: %w", err)
	}
	return nil
}

func DeleteVerificationSession(ctx context.Context, subject string, purpose types.VerificationPurpose) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`DELETE FROM VerificationSession WHERE subject = @subject AND purpose = @purpose`,
		pgx.NamedArgs{"subject": subject, "purpose": purpose},
	)
	if err != nil {
		return fmt.Errorf("could not delete VerificationSession: %w", err)
	}
	return nil
}

func DeleteVerificationSessionsBySubject(ctx context.Context, subject string) (int64, error) {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`DELETE FROM VerificationSession WHERE subject = @subject`,
		pgx.NamedArgs{"subject": subject},
	)
	if err != nil {
		return 0, fmt.Errorf("could not delete VerificationSessions: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// CleanupVerificationSessions deletes all VerificationSession entries issued
// longer than [env.VerificationSessionMaxAge()] ago, consumed or not.
func CleanupVerificationSessions(ctx context.Context) (int64, error) {
	if env.VerificationSessionMaxAge() == nil {
		return 0, nil
	}

	db := internalctx.GetDb(ctx)
	if cmd, err := db.Exec(ctx,
		`DELETE FROM VerificationSession WHERE current_timestamp - issued_at > @maxAge`,
		pgx.NamedArgs{"maxAge": env.VerificationSessionMaxAge()},
	); err != nil {
		return 0, err
	} else {
		return cmd.RowsAffected(), nil
	}
}

// VerificationSessionStore is the database-backed verification.Store for
// multi-replica deployments. Every operation runs in its own transaction and
// takes a row lock on the session, which linearizes concurrent operations on
// the same (subject, purpose) pair across replicas.
type VerificationSessionStore struct {
	config verification.Config
}

var _ verification.Store = VerificationSessionStore{}

func NewVerificationSessionStore(config verification.Config) VerificationSessionStore {
	return VerificationSessionStore{config: config.WithDefaults()}
}

func (s VerificationSessionStore) IssueOrReuse(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) (string, bool, error) {
	var code string
	var isNew bool
	err := RunTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		session, err := getVerificationSessionForUpdate(ctx, subject, purpose)
		if err != nil {
			return err
		}
		if session != nil && session.Code != nil && session.ConsumedAt == nil &&
			now.Sub(session.IssuedAt) < s.config.ResendWindow &&
			now.Sub(session.IssuedAt) < s.config.ExpiryWindow {
			code = *session.Code
			return nil
		}
		generated, err := security.GenerateVerificationCode()
		if err != nil {
			return err
		}
		code = generated
		isNew = true
		return UpsertVerificationSession(ctx, &types.VerificationSession{
			Subject:  subject,
			Purpose:  purpose,
			Code:     &generated,
			IssuedAt: now,
		})
	})
	return code, isNew, err
}

func (s VerificationSessionStore) Verify(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	code string,
) error {
	var mismatch bool
	err := RunTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		session, err := getVerificationSessionForUpdate(ctx, subject, purpose)
		if err != nil {
			return err
		}
		if session == nil || session.ConsumedAt != nil || session.Code == nil {
			return verification.ErrNoActiveSession
		}
		if now.Sub(session.IssuedAt) >= s.config.ExpiryWindow {
			return verification.ErrSessionExpired
		}
		if s.config.MaxAttempts > 0 && session.Attempts >= s.config.MaxAttempts {
			return verification.ErrTooManyAttempts
		}
		if security.NormalizeVerificationCode(code) != *session.Code {
			// commit the attempt counter even though the check failed
			mismatch = true
			return incrementVerificationSessionAttempts(ctx, subject, purpose)
		}
		if session.VerifiedAt == nil {
			return setVerificationSessionVerified(ctx, subject, purpose)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if mismatch {
		return verification.ErrCodeMismatch
	}
	return nil
}

func (s VerificationSessionStore) GrantVerified(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	now := time.Now()
	return UpsertVerificationSession(ctx, &types.VerificationSession{
		Subject:    subject,
		Purpose:    purpose,
		IssuedAt:   now,
		VerifiedAt: &now,
	})
}

func (s VerificationSessionStore) Consume(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	return RunTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		session, err := getVerificationSessionForUpdate(ctx, subject, purpose)
		if err != nil {
			return err
		}
		if session == nil {
			return verification.ErrNoActiveSession
		}
		if session.ConsumedAt != nil {
			return verification.ErrAlreadyConsumed
		}
		if session.VerifiedAt == nil {
			return verification.ErrNotVerified
		}
		if session.Code == nil && now.Sub(session.IssuedAt) >= s.config.ExpiryWindow {
			return verification.ErrSessionExpired
		}
		return setVerificationSessionConsumed(ctx, subject, purpose)
	})
}

func (s VerificationSessionStore) Discard(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	return DeleteVerificationSession(ctx, subject, purpose)
}
