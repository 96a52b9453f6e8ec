package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/types"
)

var ErrRecoveryCodeUsed = errors.New("recovery code not found or already used")

func CreateRecoveryCodes(ctx context.Context, userID uuid.UUID, codes []types.RecoveryCode) error {
	db := internalctx.GetDb(ctx)
	for _, code := range codes {
		_, err := db.Exec(ctx,
			`INSERT INTO UserAccount_RecoveryCode (user_account_id, code_hash, code_salt)
			VALUES (@userAccountId, @codeHash, @codeSalt)`,
			pgx.NamedArgs{
				"userAccountId": userID,
				"codeHash":      code.CodeHash,
				"codeSalt":      code.CodeSalt,
			},
		)
		if err != nil {
			return fmt.Errorf("could not insert RecoveryCode: %w", err)
		}
	}
	return nil
}

func GetUnusedRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]types.RecoveryCode, error) {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`SELECT id, created_at, user_account_id, code_hash, code_salt, used_at
		FROM UserAccount_RecoveryCode
		WHERE user_account_id = @userAccountId AND used_at IS NULL
		ORDER BY created_at`,
		pgx.NamedArgs{"userAccountId": userID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query RecoveryCodes: %w", err)
	}
	if codes, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.RecoveryCode]); err != nil {
		return nil, fmt.Errorf("failed to collect RecoveryCodes: %w", err)
	} else {
		return codes, nil
	}
}

func CountUnusedRecoveryCodes(ctx context.Context, userID uuid.UUID) (int, error) {
	db := internalctx.GetDb(ctx)
	var count int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM UserAccount_RecoveryCode
		WHERE user_account_id = @userAccountId AND used_at IS NULL`,
		pgx.NamedArgs{"userAccountId": userID},
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count RecoveryCodes: %w", err)
	}
	return count, nil
}

// MarkRecoveryCodeAsUsed burns a code. The used_at guard makes redeeming the
// same code twice fail even under concurrent attempts.
func MarkRecoveryCodeAsUsed(ctx context.Context, codeID uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	cmd, err := db.Exec(ctx,
		`UPDATE UserAccount_RecoveryCode SET used_at = now()
		WHERE id = @id AND used_at IS NULL`,
		pgx.NamedArgs{"id": codeID},
	)
	if err != nil {
		return fmt.Errorf("could not update RecoveryCode: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecoveryCodeUsed
	}
	return nil
}

func DeleteAllRecoveryCodes(ctx context.Context, userID uuid.UUID) error {
	db := internalctx.GetDb(ctx)
	_, err := db.Exec(ctx,
		`DELETE FROM UserAccount_RecoveryCode WHERE user_account_id = @userAccountId`,
		pgx.NamedArgs{"userAccountId": userID},
	)
	if err != nil {
		return fmt.Errorf("could not delete RecoveryCodes: %w", err)
	}
	return nil
}
