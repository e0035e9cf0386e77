// Package config reads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/intel/webapps-scientific-calculator/internal/parser"
)

const (
	DefaultAddr            = ":8080"
	DefaultServiceName     = "scientific-calculator"
	DefaultLocale          = "en-US"
	DefaultRetention       = 168 * time.Hour
	DefaultShutdownTimeout = 5 * time.Second
	DefaultSessionIdle     = 24 * time.Hour
)

type Config struct {
	Addr            string
	ServiceName     string
	Telemetry       bool
	LogDevelopment  bool
	Angle           parser.Angle
	Locale          string
	Retention       time.Duration
	SessionIdle     time.Duration
	GrammarFile     string
	ShutdownTimeout time.Duration
}

// Load builds a Config from the process environment. Unset variables take
// their defaults; malformed ones are reported together.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Addr:            DefaultAddr,
		ServiceName:     DefaultServiceName,
		Telemetry:       true,
		Angle:           parser.Degrees,
		Locale:          DefaultLocale,
		Retention:       DefaultRetention,
		SessionIdle:     DefaultSessionIdle,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	var errs []error

	if v, ok := lookup("CALC_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("OTEL_SERVICE_NAME"); ok && v != "" {
		cfg.ServiceName = v
	}
	if v, ok := lookup("CALC_LOCALE"); ok && v != "" {
		cfg.Locale = v
	}
	if v, ok := lookup("CALC_GRAMMAR_FILE"); ok {
		cfg.GrammarFile = v
	}

	if v, ok := lookup("CALC_TELEMETRY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_TELEMETRY: %w", err))
		}
		cfg.Telemetry = b
	}
	if v, ok := lookup("CALC_LOG_DEV"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_LOG_DEV: %w", err))
		}
		cfg.LogDevelopment = b
	}
	if v, ok := lookup("CALC_ANGLE_MODE"); ok && v != "" {
		a, ok := parser.ParseAngle(v)
		if !ok {
			errs = append(errs, fmt.Errorf("CALC_ANGLE_MODE: unknown mode %q", v))
		} else {
			cfg.Angle = a
		}
	}
	if v, ok := lookup("CALC_HISTORY_RETENTION"); ok && v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CALC_HISTORY_RETENTION: %w", err))
		case d < 0:
			errs = append(errs, fmt.Errorf("CALC_HISTORY_RETENTION: negative duration %s", d))
		default:
			cfg.Retention = d
		}
	}
	if v, ok := lookup("CALC_SESSION_IDLE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CALC_SESSION_IDLE_TIMEOUT: %w", err))
		case d < 0:
			errs = append(errs, fmt.Errorf("CALC_SESSION_IDLE_TIMEOUT: negative duration %s", d))
		default:
			cfg.SessionIdle = d
		}
	}
	if v, ok := lookup("CALC_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT: %w", err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT: must be positive, got %s", d))
		default:
			cfg.ShutdownTimeout = d
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
