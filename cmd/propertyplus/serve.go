package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/propertyplus/propertyplus/internal/buildconfig"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/handlers"
	"github.com/propertyplus/propertyplus/internal/migrations"
	"github.com/propertyplus/propertyplus/internal/svc"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type serveOptions struct {
	migrate bool
}

func NewServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the PropertyPlus server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	env.Initialize()

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              env.SentryDSN(),
		Debug:            env.SentryDebug(),
		Environment:      env.SentryEnvironment(),
		Release:          buildconfig.Version(),
		EnableTracing:    env.OtelExporterSentryEnabled(),
		TracesSampleRate: 1.0,
	}); err != nil {
		return fmt.Errorf("could not initialize sentry: %w", err)
	}

	registry, err := svc.NewDefault(ctx)
	if err != nil {
		return err
	}
	logger := registry.GetLogger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown did not complete cleanly", zap.Error(err))
		}
	}()

	if opts.migrate {
		if err := migrations.Up(logger); err != nil {
			return err
		}
	}

	router := handlers.NewRouter(logger, registry.GetDbPool(), registry.GetMailer(), registry.GetVerificationGate())
	server := &http.Server{
		Addr: env.ListenAddress(),
		Handler: otelhttp.NewHandler(router, "propertyplus",
			otelhttp.WithTracerProvider(registry.GetTracers().Default())),
	}

	registry.GetJobsScheduler().Start()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr), zap.String("version", buildconfig.Version()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	if delay := env.ServerShutdownDelayDuration(); delay != nil {
		// readiness has flipped, give the load balancer time to drain
		logger.Info("delaying shutdown", zap.Duration("delay", *delay))
		time.Sleep(*delay)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
