package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/WMTcore/egg/pkg/config"
	"github.com/WMTcore/egg/pkg/cookie"
	"github.com/WMTcore/egg/pkg/events"
	"github.com/WMTcore/egg/pkg/logger"
	"github.com/WMTcore/egg/pkg/metrics"
	"github.com/WMTcore/egg/pkg/schedule"
)

// Events exposed to collaborators.
const (
	// EventRequest fires after a context is constructed, before handling.
	EventRequest = "request"
	// EventResponse fires strictly after a context's handling completes.
	EventResponse = "response"
	// EventServer fires exactly once when the transport layer is ready.
	// Payload: *http.Server.
	EventServer = "server"
	// EventCookieLimitExceed fires when a cookie crosses the browser size
	// limit. Payload: *CookieLimitExceedError.
	EventCookieLimitExceed = "cookieLimitExceed"
	// EventClientError fires for malformed inbound connection preambles.
	// Payload: *ClientError. No context exists for these.
	EventClientError = "clientError"
)

const defaultShutdownTimeout = 30 * time.Second

// Application is the process-wide runtime state: effective configuration,
// the three prototypes per-request contexts derive from, the locals bag, the
// lazily-derived secret keys, and the lifecycle event bus.
//
// It is created once at process start, mutated by loaders during startup,
// and read-mostly thereafter. Construct it with New and pass it explicitly;
// there is no ambient global instance.
type Application struct {
	config    *config.Config
	configErr error
	logger    *slog.Logger
	bus       *events.Bus
	router    chi.Router
	metrics   *metrics.Collector
	binder    *lifecycleBinder

	contextProto  *Prototype
	requestProto  *Prototype
	responseProto *Prototype

	plainCookies *cookie.Manager
	cookieOpts   []cookie.Option

	localsOnce sync.Once
	locals     map[string]any

	keysOnce sync.Once
	keys     []string
	keysErr  error

	cookiesOnce   sync.Once
	signedCookies *cookie.Manager
	cookiesErr    error

	errorHandler ErrorHandler
	middlewares  []Middleware
	handlers     []Handler
	loaders      []Loader
	scheduled    []scheduledTask
	routes       []RouteInfo
}

// scheduledTask pairs a cron spec with a background task.
type scheduledTask struct {
	spec string
	name string
	task TaskFunc
}

// New constructs the application. The startup sequence is fixed: options
// apply first, then loaders populate the prototypes and configuration, then
// routes are wired, then config diagnostics run, and finally lifecycle
// events are bound. A loader error aborts construction and propagates
// unmodified, leaving no half-initialized application behind.
func New(opts ...Option) (*Application, error) {
	a := &Application{
		logger:        logger.NewNope(),
		bus:           events.New(),
		router:        chi.NewRouter(),
		plainCookies:  cookie.New(),
		contextProto:  NewPrototype(),
		requestProto:  NewPrototype(),
		responseProto: NewPrototype(),
	}
	a.binder = newLifecycleBinder(a)

	for _, opt := range opts {
		opt(a)
	}
	if a.configErr != nil {
		return nil, a.configErr
	}
	if a.config == nil {
		a.config = config.Default()
	}

	for _, l := range a.loaders {
		if err := l.Load(a); err != nil {
			return nil, err
		}
	}

	a.setupRoutes()
	a.dumpConfig()
	a.warnConfusedConfig()
	a.binder.bind()

	return a, nil
}

// Config returns the effective configuration.
func (a *Application) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Router returns the underlying chi router, e.g. for mounting into tests.
func (a *Application) Router() chi.Router {
	return a.router
}

// ContextProto returns the shared context prototype for loader population.
func (a *Application) ContextProto() *Prototype {
	return a.contextProto
}

// RequestProto returns the shared request prototype for loader population.
func (a *Application) RequestProto() *Prototype {
	return a.requestProto
}

// ResponseProto returns the shared response prototype for loader population.
func (a *Application) ResponseProto() *Prototype {
	return a.responseProto
}

// Locals is the lazily-initialized key/value bag exposed to every context.
// The map itself is shared; populate it during startup and treat it as
// read-only afterwards.
func (a *Application) Locals() map[string]any {
	a.localsOnce.Do(func() {
		a.locals = make(map[string]any)
	})
	return a.locals
}

// On registers a multi-fire listener for event.
func (a *Application) On(event string, fn func(payload any)) {
	a.bus.On(event, fn)
}

// Once registers a single-fire listener for event.
func (a *Application) Once(event string, fn func(payload any)) {
	a.bus.Once(event, fn)
}

// Emit fires event with payload; listeners run synchronously.
func (a *Application) Emit(event string, payload any) {
	a.bus.Emit(event, payload)
}

// Routes returns the route descriptors recorded during handler registration,
// in registration order. This is the source of the persisted router snapshot.
func (a *Application) Routes() []RouteInfo {
	return a.routes
}

// Cookies returns the cookie manager backed by the derived secret keys.
// Built lazily on first use; fails with the key accessor's error when no
// secret keys are configured.
func (a *Application) Cookies() (*cookie.Manager, error) {
	a.cookiesOnce.Do(func() {
		keys, err := a.Keys()
		if err != nil {
			a.cookiesErr = err
			return
		}
		opts := append([]cookie.Option{cookie.WithKeys(keys)}, a.cookieOpts...)
		a.signedCookies = cookie.New(opts...)
	})
	return a.signedCookies, a.cookiesErr
}

// setupRoutes wires registered handlers into the router through the adapter.
func (a *Application) setupRoutes() {
	r := &routerAdapter{router: a.router, app: a, mws: a.middlewares}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// handleError renders errors returned from handlers, unless a response has
// already been written.
func (a *Application) handleError(c *Context, err error) {
	if c.Response.Written() {
		return
	}
	if a.errorHandler != nil {
		_ = a.errorHandler(c, err)
		return
	}
	if httpErr := AsHTTPError(err); httpErr != nil {
		http.Error(c.Response.writer, httpErr.Message, httpErr.Code)
		return
	}
	http.Error(c.Response.writer, "Internal Server Error", http.StatusInternalServerError)
}

// Run starts the HTTP server and blocks until shutdown. An empty addr falls
// back to the configured server address. Scheduled background tasks start
// with the server and stop gracefully with it.
func (a *Application) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	if addr == "" {
		addr = a.config.Server.Address
	}

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	if len(a.scheduled) > 0 {
		sched := schedule.New(cfg.logger)
		for _, st := range a.scheduled {
			if _, err := sched.Add(st.spec, st.name, func() {
				a.RunInBackground(st.name, st.task)
			}); err != nil {
				return fmt.Errorf("schedule task %q: %w", st.name, err)
			}
		}
		startupHooks = append([]func(ctx context.Context) error{
			func(context.Context) error {
				sched.Start()
				return nil
			},
		}, startupHooks...)
		shutdownHooks = append(shutdownHooks, func(ctx context.Context) error {
			select {
			case <-sched.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	return runServer(runtimeConfig{
		app:             a,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
