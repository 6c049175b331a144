package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// runtimeConfig carries everything runServer needs; built by Run.
type runtimeConfig struct {
	app             *Application
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(ctx context.Context) error
	shutdownHooks   []func(ctx context.Context) error
	baseCtx         context.Context
}

// runServer starts the HTTP server behind the protocol guard and blocks
// until SIGINT/SIGTERM or a serve error. The server event fires exactly
// once, after the listener is bound and startup hooks have succeeded, with
// the *http.Server as payload.
func runServer(cfg runtimeConfig) error {
	app := cfg.app
	logger := cfg.logger

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:         cfg.address,
		Handler:      app.binder.supervise(app.router),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	// Listen first so hooks and the server event observe a bound address.
	raw, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return err
	}
	ln := NewGuardedListener(raw, func(e *ClientError) {
		app.Emit(EventClientError, e)
	})

	g, gctx := errgroup.WithContext(ctx)
	for _, hook := range cfg.startupHooks {
		g.Go(func() error {
			return hook(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		_ = ln.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", ln.Addr().String()))
		app.Emit(EventServer, srv)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	logger.Info("shutdown completed")
	return nil
}
