package egg

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WMTcore/egg/internal"
	"github.com/WMTcore/egg/pkg/config"
	"github.com/WMTcore/egg/pkg/cookie"
	"github.com/WMTcore/egg/pkg/logger"
)

// Type aliases - public API
type (
	// Application holds the process-wide runtime state: configuration,
	// prototypes, locals, and the lifecycle event bus.
	Application = internal.Application

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context is the per-request workspace with Request and Response
	// facets that delegate to shared prototypes.
	Context = internal.Context

	// Request is the inbound-message facet of a context.
	Request = internal.Request

	// Response is the outbound-message facet of a context.
	Response = internal.Response

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Loader populates prototypes and configuration during construction.
	Loader = internal.Loader

	// LoaderFunc adapts a function to the Loader interface.
	LoaderFunc = internal.LoaderFunc

	// TaskFunc is a background task executed with an anonymous context.
	TaskFunc = internal.TaskFunc

	// AnonymousRequest overrides parts of an anonymous context's
	// synthetic request.
	AnonymousRequest = internal.AnonymousRequest

	// Socket describes the peer of a synthetic connection.
	Socket = internal.Socket

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// RouteInfo describes one registered route in the router snapshot.
	RouteInfo = internal.RouteInfo

	// Prototype is a shared field template contexts delegate to.
	Prototype = internal.Prototype

	// HTTPError represents an HTTP error with rendering data.
	HTTPError = internal.HTTPError

	// CookieLimitExceedError is the cookieLimitExceed event payload.
	CookieLimitExceedError = internal.CookieLimitExceedError

	// ClientError is the clientError event payload.
	ClientError = internal.ClientError

	// Config is the effective application configuration.
	Config = config.Config

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option
)

// Lifecycle events.
const (
	EventRequest           = internal.EventRequest
	EventResponse          = internal.EventResponse
	EventServer            = internal.EventServer
	EventCookieLimitExceed = internal.EventCookieLimitExceed
	EventClientError       = internal.EventClientError
)

// Lifecycle states reported by Application.LifecycleState.
const (
	LifecycleUninitialized = internal.LifecycleUninitialized
	LifecycleBound         = internal.LifecycleBound
	LifecycleActive        = internal.LifecycleActive
)

// ErrNoSecretKeys reports a missing cookie-secret configuration.
var ErrNoSecretKeys = internal.ErrNoSecretKeys

// Constructors

// New creates an application with the given options.
//
// Example:
//
//	app, err := egg.New(
//	    egg.WithConfigFile("config/app.yaml"),
//	    egg.WithHandlers(
//	        handlers.NewPages(repo),
//	    ),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run("")
func New(opts ...Option) (*Application, error) {
	return internal.New(opts...)
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string) *HTTPError {
	return internal.ErrBadRequest(message)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string) *HTTPError {
	return internal.ErrNotFound(message)
}

// ErrInternal creates a 500 error.
func ErrInternal(message string) *HTTPError {
	return internal.ErrInternal(message)
}

// App options

// WithConfig sets the effective configuration.
func WithConfig(cfg *Config) Option {
	return internal.WithConfig(cfg)
}

// WithConfigFile loads configuration from a YAML file.
// A load failure aborts construction.
func WithConfigFile(path string) Option {
	return internal.WithConfigFile(path)
}

// WithLoader registers loaders run during construction, in order.
// A loader error aborts construction and propagates unmodified.
func WithLoader(loaders ...Loader) Option {
	return internal.WithLoader(loaders...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithLogger sets a fully custom logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithDefaultLogger enables the standard JSON logger with optional
// context extractors.
//
// Example:
//
//	egg.New(
//	    egg.WithDefaultLogger(requestIDExtractor),
//	)
func WithDefaultLogger(extractors ...ContextExtractor) Option {
	return internal.WithDefaultLogger(extractors...)
}

// WithMetrics enables request metrics on the given registerer.
// A nil registerer uses the default Prometheus registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return internal.WithMetrics(reg)
}

// WithSchedule registers a background task on a cron spec.
// Tasks start with the server and run on anonymous contexts.
//
// Example:
//
//	egg.WithSchedule("@every 1h", "prune-sessions", tasks.PruneSessions)
func WithSchedule(spec, name string, task TaskFunc) Option {
	return internal.WithSchedule(spec, name, task)
}

// WithCookieOptions configures cookies issued through context helpers.
//
// Example:
//
//	egg.New(
//	    egg.WithCookieOptions(
//	        egg.WithCookieSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// Cookie options

// WithCookieDomain sets the cookie Domain attribute.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie Path attribute.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the cookie Secure attribute.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// Run options

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.WithShutdownTimeout(d)
}

// StartupHook registers functions run concurrently before the server
// starts accepting connections. Any hook error aborts startup.
//
// Example:
//
//	egg.StartupHook(worker.Start)
func StartupHook(hooks ...func(context.Context) error) RunOption {
	return internal.WithStartupHook(hooks...)
}

// ShutdownHook registers cleanup functions run during shutdown, in order.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	egg.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(hooks ...func(context.Context) error) RunOption {
	return internal.WithShutdownHook(hooks...)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Logger overrides the logger used by the server loop.
func Logger(l *slog.Logger) RunOption {
	return internal.WithRunLogger(l)
}
