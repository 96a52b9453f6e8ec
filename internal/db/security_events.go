package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/propertyplus/propertyplus/internal/apierrors"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/types"
)

const securityEventOutputExpr = `
	e.id, e.created_at, e.user_account_id, e.subject, e.kind, e.purpose, e.ip_address, e.detail `

func CreateSecurityEvent(ctx context.Context, event *types.SecurityEvent) error {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`INSERT INTO SecurityEvent AS e (user_account_id, subject, kind, purpose, ip_address, detail)
		VALUES (@userAccountId, @subject, @kind, @purpose, @ipAddress, @detail)
		RETURNING`+securityEventOutputExpr,
		pgx.NamedArgs{
			"userAccountId": event.UserAccountID,
			"subject":       event.Subject,
			"kind":          event.Kind,
			"purpose":       event.Purpose,
			"ipAddress":     event.IPAddress,
			"detail":        event.Detail,
		},
	)
	if err != nil {
		return fmt.Errorf("could not insert SecurityEvent: %w", err)
	}
	if result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[types.SecurityEvent]); err != nil {
		if pgErr := new(pgconn.PgError); errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			err = fmt.Errorf("%w: %w", apierrors.ErrConflict, err)
		}
		return err
	} else {
		*event = result
		return nil
	}
}

func GetSecurityEvents(ctx context.Context, filter types.SecurityEventFilter) ([]types.SecurityEvent, error) {
	db := internalctx.GetDb(ctx)

	conditions := []string{
		"e.subject = @subject",
		"e.created_at < @before",
	}
	args := pgx.NamedArgs{
		"subject": filter.Subject,
		"before":  filter.Before,
		"count":   filter.Count,
	}

	if !filter.After.IsZero() {
		conditions = append(conditions, "e.created_at > @after")
		args["after"] = filter.After
	}
	if filter.Kind != nil {
		conditions = append(conditions, "e.kind = @kind")
		args["kind"] = *filter.Kind
	}

	query := `SELECT` + securityEventOutputExpr + `
		FROM SecurityEvent e
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY e.created_at DESC
		LIMIT @count`

	rows, err := db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("could not query SecurityEvents: %w", err)
	}
	result, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.SecurityEvent])
	if err != nil {
		return nil, fmt.Errorf("could not scan SecurityEvents: %w", err)
	}
	return result, nil
}

func GetSecurityEventsForExport(
	ctx context.Context,
	subject string,
	limit int,
	callback func(types.SecurityEvent) error,
) error {
	db := internalctx.GetDb(ctx)
	rows, err := db.Query(ctx,
		`SELECT`+securityEventOutputExpr+`
		FROM SecurityEvent e
		WHERE e.subject = @subject
		ORDER BY e.created_at DESC
		LIMIT @limit`,
		pgx.NamedArgs{"subject": subject, "limit": limit},
	)
	if err != nil {
		return fmt.Errorf("could not query SecurityEvents: %w", err)
	}

	var event types.SecurityEvent
	_, err = pgx.ForEachRow(rows, []any{
		&event.ID,
		&event.CreatedAt,
		&event.UserAccountID,
		&event.Subject,
		&event.Kind,
		&event.Purpose,
		&event.IPAddress,
		&event.Detail,
	}, func() error {
		return callback(event)
	})
	if err != nil {
		return fmt.Errorf("could not iterate SecurityEvents: %w", err)
	}

	return nil
}

// CleanupSecurityEvents deletes all SecurityEvent entries older than
// [env.SecurityEventMaxAge()].
func CleanupSecurityEvents(ctx context.Context) (int64, error) {
	if env.SecurityEventMaxAge() == nil {
		return 0, nil
	}

	db := internalctx.GetDb(ctx)
	if cmd, err := db.Exec(ctx,
		`DELETE FROM SecurityEvent WHERE current_timestamp - created_at > @maxAge`,
		pgx.NamedArgs{"maxAge": env.SecurityEventMaxAge()},
	); err != nil {
		return 0, err
	} else {
		return cmd.RowsAffected(), nil
	}
}
