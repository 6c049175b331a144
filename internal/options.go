package internal

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WMTcore/egg/pkg/config"
	"github.com/WMTcore/egg/pkg/cookie"
	"github.com/WMTcore/egg/pkg/logger"
	"github.com/WMTcore/egg/pkg/metrics"
)

// Option configures the application during construction.
type Option func(*Application)

// WithConfig sets the effective configuration.
// Defaults to config.Default() if not set.
func WithConfig(cfg *config.Config) Option {
	return func(a *Application) {
		if cfg != nil {
			a.config = cfg
		}
	}
}

// WithConfigFile loads configuration from a YAML file.
// A load failure aborts construction.
func WithConfigFile(path string) Option {
	return func(a *Application) {
		cfg, err := config.Load(path)
		if err != nil {
			a.configErr = err
			return
		}
		a.config = cfg
	}
}

// WithLogger sets the application logger.
// If not set, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDefaultLogger enables the standard JSON logger with the given
// context extractors.
func WithDefaultLogger(extractors ...logger.ContextExtractor) Option {
	return func(a *Application) {
		a.logger = logger.New(extractors...)
	}
}

// WithLoader registers loaders run during construction, in order.
// A loader error aborts construction and propagates unmodified.
func WithLoader(loaders ...Loader) Option {
	return func(a *Application) {
		a.loaders = append(a.loaders, loaders...)
	}
}

// WithHandlers registers route handlers.
func WithHandlers(handlers ...Handler) Option {
	return func(a *Application) {
		a.handlers = append(a.handlers, handlers...)
	}
}

// WithMiddleware registers middleware applied to every route.
func WithMiddleware(mws ...Middleware) Option {
	return func(a *Application) {
		a.middlewares = append(a.middlewares, mws...)
	}
}

// WithErrorHandler sets the handler for errors returned from routes.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *Application) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithMetrics enables request metrics on the given registerer.
// A nil registerer uses the default Prometheus registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *Application) {
		a.metrics = metrics.New(reg, "egg")
	}
}

// WithSchedule registers a background task on a cron spec. Tasks start with
// the server and run on anonymous contexts.
func WithSchedule(spec, name string, task TaskFunc) Option {
	return func(a *Application) {
		a.scheduled = append(a.scheduled, scheduledTask{spec: spec, name: name, task: task})
	}
}

// WithCookieOptions sets attributes applied to cookies issued through the
// context helpers, e.g. domain, path, Secure.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *Application) {
		a.plainCookies = cookie.New(opts...)
		a.cookieOpts = append(a.cookieOpts, opts...)
	}
}
