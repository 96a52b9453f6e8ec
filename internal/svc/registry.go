package svc

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/propertyplus/propertyplus/internal/buildconfig"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/jobs"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/verification"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Registry wires up the long-lived parts of the application. All Get
// functions return shared instances.
type Registry struct {
	logger            *zap.Logger
	tracers           *Tracers
	dbPool            *pgxpool.Pool
	mailer            mail.Mailer
	verificationStore verification.Store
	verificationGate  *verification.Gate
	jobsScheduler     *jobs.Scheduler
}

func NewDefault(ctx context.Context) (*Registry, error) {
	var r Registry
	var err error
	if r.logger, err = createLogger(); err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	if r.tracers, err = createTracers(ctx); err != nil {
		return nil, fmt.Errorf("could not create tracers: %w", err)
	}
	if r.dbPool, err = r.createDbPool(ctx); err != nil {
		return nil, fmt.Errorf("could not create database pool: %w", err)
	}
	if r.mailer, err = mail.NewMailer(ctx, env.GetMailerConfig(), r.logger); err != nil {
		return nil, fmt.Errorf("could not create mailer: %w", err)
	}
	r.verificationStore = r.createVerificationStore()
	r.verificationGate = createVerificationGate(r.verificationStore)
	if r.jobsScheduler, err = r.createJobsScheduler(); err != nil {
		return nil, fmt.Errorf("could not create jobs scheduler: %w", err)
	}
	return &r, nil
}

func (r *Registry) GetLogger() *zap.Logger {
	return r.logger
}

func (r *Registry) GetTracers() *Tracers {
	return r.tracers
}

func (r *Registry) GetDbPool() *pgxpool.Pool {
	return r.dbPool
}

func (r *Registry) GetMailer() mail.Mailer {
	return r.mailer
}

func (r *Registry) GetVerificationStore() verification.Store {
	return r.verificationStore
}

func (r *Registry) GetVerificationGate() *verification.Gate {
	return r.verificationGate
}

// Shutdown stops background work and flushes buffered telemetry. The given
// ctx bounds how long the trace exporters may take.
func (r *Registry) Shutdown(ctx context.Context) error {
	var err error
	if r.jobsScheduler != nil {
		err = multierr.Append(err, r.jobsScheduler.Shutdown())
	}
	if r.dbPool != nil {
		r.dbPool.Close()
	}
	if r.tracers != nil {
		err = multierr.Append(err, r.tracers.Shutdown(ctx))
	}
	if !sentry.Flush(5 * time.Second) {
		r.logger.Warn("sentry flush timed out, some events may be lost")
	}
	_ = r.logger.Sync()
	return err
}

func createLogger() (*zap.Logger, error) {
	if buildconfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func (r *Registry) createDbPool(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(env.DatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("could not parse DATABASE_URL: %w", err)
	}
	if maxConns := env.DatabaseMaxConns(); maxConns != nil {
		config.MaxConns = int32(*maxConns)
	}
	if env.EnableQueryLogging() {
		config.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   &queryLogger{logger: r.logger.Sugar()},
			LogLevel: tracelog.LogLevelDebug,
		}
	} else {
		config.ConnConfig.Tracer = otelpgx.NewTracer(otelpgx.WithTracerProvider(r.tracers.Default()))
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	return pool, nil
}

func (r *Registry) createVerificationStore() verification.Store {
	config := verification.Config{
		ResendWindow: env.VerificationResendWindow(),
		ExpiryWindow: env.VerificationExpiryWindow(),
		MaxAttempts:  env.VerificationMaxAttempts(),
	}
	switch env.VerificationStore() {
	case env.VerificationStoreDatabase:
		return db.NewVerificationSessionStore(config)
	default:
		return verification.NewMemoryStore(config)
	}
}

type queryLogger struct {
	logger *zap.SugaredLogger
}

var _ tracelog.Logger = (*queryLogger)(nil)

func (l *queryLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	fields := make([]any, 0, len(data)*2)
	for key, value := range data {
		fields = append(fields, key, value)
	}
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		l.logger.Debugw(msg, fields...)
	case tracelog.LogLevelInfo:
		l.logger.Infow(msg, fields...)
	case tracelog.LogLevelWarn:
		l.logger.Warnw(msg, fields...)
	default:
		l.logger.Errorw(msg, fields...)
	}
}
