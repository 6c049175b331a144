package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(ctx context.Context) error
	shutdownHooks   []func(ctx context.Context) error
	baseCtx         context.Context
}

func buildRunConfig(opts ...RunOption) runConfig {
	cfg := runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithShutdownTimeout bounds graceful shutdown.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(cfg *runConfig) {
		if d > 0 {
			cfg.shutdownTimeout = d
		}
	}
}

// WithStartupHook registers hooks run concurrently before the server starts
// accepting connections. Any hook error aborts startup.
func WithStartupHook(hooks ...func(ctx context.Context) error) RunOption {
	return func(cfg *runConfig) {
		cfg.startupHooks = append(cfg.startupHooks, hooks...)
	}
}

// WithShutdownHook registers hooks run during graceful shutdown, in order.
func WithShutdownHook(hooks ...func(ctx context.Context) error) RunOption {
	return func(cfg *runConfig) {
		cfg.shutdownHooks = append(cfg.shutdownHooks, hooks...)
	}
}

// WithContext sets a custom base context for signal handling.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return func(cfg *runConfig) {
		if ctx != nil {
			cfg.baseCtx = ctx
		}
	}
}

// WithRunLogger overrides the logger used by the server loop.
func WithRunLogger(l *slog.Logger) RunOption {
	return func(cfg *runConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}
