package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/config"
	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/server"
	"github.com/intel/webapps-scientific-calculator/internal/session"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogDevelopment); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, log export
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("telemetry init failed", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	logger := observability.Logger

	// Calculator
	p, err := loadParser(cfg)
	if err != nil {
		logger.Fatal("grammar load failed", zap.String("file", cfg.GrammarFile), zap.Error(err))
	}

	bundle, err := i18n.Load()
	if err != nil {
		logger.Fatal("translations load failed", zap.Error(err))
	}

	store := session.NewStore(p, bundle,
		session.WithAngle(cfg.Angle),
		session.WithLocale(cfg.Locale),
		session.WithRetention(cfg.Retention),
		session.WithIdleTimeout(cfg.SessionIdle),
		session.WithLogger(logger),
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go store.Run(sweepCtx, time.Minute)

	reg, err := observability.NewRegistry(store.Collector())
	if err != nil {
		logger.Fatal("metrics registry failed", zap.Error(err))
	}

	// Router
	router := server.NewRouter(store, reg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Int("grammar_version", p.Version()),
			zap.Strings("locales", bundle.Locales()),
			zap.Stringer("angle", cfg.Angle),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped")
}
