package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/intel/webapps-scientific-calculator/internal/calculator"
	"github.com/intel/webapps-scientific-calculator/internal/config"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
)

// initTelemetry starts the OTLP tracer, meter and log providers when
// telemetry is enabled, then creates the calculator's instruments. The
// returned function shuts down whatever was started.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Telemetry {
		for _, start := range []func(context.Context, string) (func(context.Context) error, error){
			observability.InitTracing,
			observability.InitMetrics,
			observability.InitLogging,
		} {
			stop, err := start(ctx, cfg.ServiceName)
			if err != nil {
				_ = shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, stop)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// loadParser compiles the grammar file named in the config, or the
// embedded grammar when none is set.
func loadParser(cfg config.Config) (*parser.Parser, error) {
	if cfg.GrammarFile == "" {
		return parser.Default()
	}

	src, err := os.ReadFile(cfg.GrammarFile)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	return parser.New(src)
}
