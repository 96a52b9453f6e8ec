package cleanup

import (
	"context"
	"fmt"

	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"go.uber.org/zap"
)

// RunSecurityEventCleanup deletes SecurityEvent rows older than the
// configured retention. It is a no-op when no retention is configured.
func RunSecurityEventCleanup(ctx context.Context) error {
	log := internalctx.GetLogger(ctx)
	count, err := db.CleanupSecurityEvents(ctx)
	if err != nil {
		return fmt.Errorf("could not cleanup SecurityEvents: %w", err)
	}
	log.Info("removed expired SecurityEvents", zap.Int64("count", count))
	return nil
}
