package db

import (
	"context"
	"fmt"

	internalctx "github.com/propertyplus/propertyplus/internal/context"
)

// RunTx runs fn inside a transaction. The transaction replaces the pool in
// the context passed to fn, so nested data access functions automatically
// participate. The transaction is rolled back unless fn returns nil.
func RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db := internalctx.GetDb(ctx)
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(internalctx.WithDb(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
