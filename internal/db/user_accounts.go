package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/propertyplus/propertyplus/internal/apierrors"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/types"
)

const userAccountOutputExpr = `
	u.id, u.created_at, u.email, u.email_verified_at, u.name,
	u.password_hash, u.password_salt, u.password_changed_at,
	u.two_factor_enabled, u.totp_secret, u.totp_activated_at,
	u.token_invalid_before, u.contact_number, u.city, u.state `

func CreateUserAccount(ctx context.Context, userAccount *types.UserAccount) error {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`INSERT INTO UserAccount AS u (
			email, email_verified_at, name, password_hash, password_salt,
			contact_number, city, state
		) VALUES (
			@email, @emailVerifiedAt, @name, @passwordHash, @passwordSalt,
			@contactNumber, @city, @state
		) RETURNING`+userAccountOutputExpr,
		pgx.NamedArgs{
			"email":           userAccount.Email,
			"emailVerifiedAt": userAccount.EmailVerifiedAt,
			"name":            userAccount.Name,
			"passwordHash":    userAccount.PasswordHash,
			"passwordSalt":    userAccount.PasswordSalt,
			"contactNumber":   userAccount.ContactNumber,
			"city":            userAccount.City,
			"state":           userAccount.State,
		},
	)
	if err != nil {
		return fmt.Errorf("could not insert UserAccount: %w", err)
	}
	if result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[types.UserAccount]); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
			err = fmt.Errorf("%w: %w", apierrors.ErrAlreadyExists, err)
		}
		return err
	} else {
		*userAccount = result
		return nil
	}
}

func GetUserAccountByID(ctx context.Context, id uuid.UUID) (*types.UserAccount, error) {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`SELECT`+userAccountOutputExpr+`FROM UserAccount u WHERE u.id = @id`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query UserAccount: %w", err)
	}
	if userAccount, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[types.UserAccount]); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = apierrors.ErrNotFound
		}
		return nil, err
	} else {
		return userAccount, nil
	}
}

func GetUserAccountByEmail(ctx context.Context, email string) (*types.UserAccount, error) {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`SELECT`+userAccountOutputExpr+`FROM UserAccount u WHERE u.email = @email`,
		pgx.NamedArgs{"email": email},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query UserAccount: %w", err)
	}
	if userAccount, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[types.UserAccount]); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = apierrors.ErrNotFound
		}
		return nil, err
	} else {
		return userAccount, nil
	}
}

func ExistsUserAccountWithEmail(ctx context.Context, email string) (bool, error) {
	db := internalctx.GetDb(ctx)
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM UserAccount u WHERE u.email = @email)`,
		pgx.NamedArgs{"email": email},
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for UserAccount: %w", err)
	}
	return exists, nil
}

func UpdateUserAccountProfile(ctx context.Context, userAccount *types.UserAccount) error {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`UPDATE UserAccount AS u
		SET name = @name, contact_number = @contactNumber, city = @city, state = @state
		WHERE u.id = @id
		RETURNING`+userAccountOutputExpr,
		pgx.NamedArgs{
			"id":            userAccount.ID,
			"name":          userAccount.Name,
			"contactNumber": userAccount.ContactNumber,
			"city":          userAccount.City,
			"state":         userAccount.State,
		},
	)
	if err != nil {
		return fmt.Errorf("could not update UserAccount: %w", err)
	}
	if result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[types.UserAccount]); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = apierrors.ErrNotFound
		}
		return err
	} else {
		*userAccount = result
		return nil
	}
}

// UpdateUserAccountPassword also bumps password_changed_at so that clients
// can be told how stale their password is.
func UpdateUserAccountPassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount
		SET password_hash = @passwordHash, password_salt = @passwordSalt, password_changed_at = now()
		WHERE id = @id`,
		pgx.NamedArgs{
			"id":           id,
			"passwordHash": passwordHash,
			"passwordSalt": passwordSalt,
		},
	)
	if err != nil {
		return fmt.Errorf("could not update UserAccount password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}

// SetUserAccountEmailVerified is idempotent, verifying an already verified
// account changes nothing.
func SetUserAccountEmailVerified(ctx context.Context, id uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`UPDATE UserAccount SET email_verified_at = now() WHERE id = @id AND email_verified_at IS NULL`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return fmt.Errorf("could not update UserAccount: %w", err)
	}
	return nil
}

func SetUserAccountTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount SET two_factor_enabled = @enabled WHERE id = @id`,
		pgx.NamedArgs{"id": id, "enabled": enabled},
	)
	if err != nil {
		return fmt.Errorf("could not update UserAccount: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}

// UpdateUserAccountTotpSecret stores a fresh, not yet activated secret. Any
// previous enrollment is reset.
func UpdateUserAccountTotpSecret(ctx context.Context, id uuid.UUID, secret string) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount SET totp_secret = @secret, totp_activated_at = NULL WHERE id = @id`,
		pgx.NamedArgs{"id": id, "secret": secret},
	)
	if err != nil {
		return fmt.Errorf("could not update UserAccount TOTP secret: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}

func ActivateUserAccountTotp(ctx context.Context, id uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount SET totp_activated_at = now() WHERE id = @id AND totp_secret IS NOT NULL`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return fmt.Errorf("could not activate UserAccount TOTP: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}

func ClearUserAccountTotp(ctx context.Context, id uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`UPDATE UserAccount SET totp_secret = NULL, totp_activated_at = NULL WHERE id = @id`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return fmt.Errorf("could not clear UserAccount TOTP: %w", err)
	}
	return nil
}

// RevokeUserAccountSessions invalidates every session token issued before
// now by moving the token_invalid_before marker.
func RevokeUserAccountSessions(ctx context.Context, id uuid.UUID, at time.Time) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount SET token_invalid_before = @at WHERE id = @id`,
		pgx.NamedArgs{"id": id, "at": at},
	)
	if err != nil {
		return fmt.Errorf("could not revoke UserAccount sessions: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}

func DeleteUserAccountWithID(ctx context.Context, id uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx, `DELETE FROM UserAccount WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		if pgerr := (*pgconn.PgError)(nil); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.ForeignKeyViolation {
			err = fmt.Errorf("%w: %w", apierrors.ErrConflict, err)
		}
	} else if cmd.RowsAffected() == 0 {
		err = apierrors.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("could not delete UserAccount: %w", err)
	}

	return nil
}
