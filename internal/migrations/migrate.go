package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/propertyplus/propertyplus/internal/env"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Up applies all pending migrations. It is safe to call on every startup,
// an already up-to-date schema is not an error.
func Up(logger *zap.Logger) error {
	migrator, err := newMigrator(logger)
	if err != nil {
		return err
	}
	defer closeMigrator(logger, migrator)

	if err := migrator.Up(); errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database schema is up to date")
	} else if err != nil {
		return fmt.Errorf("could not apply migrations: %w", err)
	} else {
		logger.Info("database migrations applied")
	}
	return nil
}

func newMigrator(logger *zap.Logger) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("could not load migrations: %w", err)
	}
	dbUrl, err := url.Parse(env.DatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("could not parse DATABASE_URL: %w", err)
	}
	// golang-migrate picks its database driver by URL scheme
	dbUrl.Scheme = "pgx5"
	migrator, err := migrate.NewWithSourceInstance("iofs", source, dbUrl.String())
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger.Sugar()}
	return migrator, nil
}

func closeMigrator(logger *zap.Logger, migrator *migrate.Migrate) {
	sourceErr, dbErr := migrator.Close()
	if sourceErr != nil || dbErr != nil {
		logger.Warn("could not close migrator", zap.NamedError("sourceErr", sourceErr), zap.NamedError("dbErr", dbErr))
	}
}

type migrateLogger struct {
	logger *zap.SugaredLogger
}

var _ migrate.Logger = (*migrateLogger)(nil)

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
