package cleanup

import (
	"context"
	"fmt"

	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/verification"
	"go.uber.org/zap"
)

// RunVerificationSessionCleanup returns a job func that deletes
// verification sessions issued longer than the configured retention ago.
// The memory store is not reachable through the context, so the store is
// bound up front and the database path is used for everything else.
func RunVerificationSessionCleanup(store verification.Store) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := internalctx.GetLogger(ctx)
		if memoryStore, ok := store.(*verification.MemoryStore); ok {
			maxAge := env.VerificationSessionMaxAge()
			if maxAge == nil {
				return nil
			}
			count := memoryStore.Cleanup(*maxAge)
			log.Info("removed expired VerificationSessions", zap.Int("count", count))
			return nil
		}

		count, err := db.CleanupVerificationSessions(ctx)
		if err != nil {
			return fmt.Errorf("could not cleanup VerificationSessions: %w", err)
		}
		log.Info("removed expired VerificationSessions", zap.Int64("count", count))
		return nil
	}
}
