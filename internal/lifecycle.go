package internal

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// Lifecycle states, in strictly forward order.
const (
	// LifecycleUninitialized means bind has not run yet.
	LifecycleUninitialized = "uninitialized"
	// LifecycleBound means default listeners are registered but the
	// transport layer has not started.
	LifecycleBound = "bound"
	// LifecycleActive means the server event has fired.
	LifecycleActive = "active"
)

const (
	lifecycleUninitialized int32 = iota
	lifecycleBound
	lifecycleActive
)

// ClientError describes a connection whose preamble never became a valid
// HTTP request. No context exists for these; the payload carries everything
// known about the peer.
type ClientError struct {
	RemoteAddr string
	Preamble   []byte
	Err        error
}

// lifecycleBinder owns event binding and panic supervision. Binding is
// idempotent: no matter how many times bind is called, each default
// listener registers exactly once and user-registered listeners are never
// disturbed.
type lifecycleBinder struct {
	app     *Application
	once    sync.Once
	state   atomic.Int32
	crashes atomic.Int64
}

func newLifecycleBinder(app *Application) *lifecycleBinder {
	return &lifecycleBinder{app: app}
}

// bind registers the default observers and advances the state to bound.
func (b *lifecycleBinder) bind() {
	b.once.Do(func() {
		b.app.On(EventCookieLimitExceed, func(payload any) {
			e, ok := payload.(*CookieLimitExceedError)
			if !ok {
				return
			}
			log := b.app.logger
			if e.Ctx != nil {
				log = e.Ctx.Logger()
			}
			log.Warn("cookie exceeds size limit",
				slog.String("cookie", e.Name),
				slog.Int("length", len(e.Name)+1+len(e.Value)))
		})
		b.app.On(EventClientError, func(payload any) {
			if e, ok := payload.(*ClientError); ok {
				b.app.logger.Warn("malformed client preamble",
					slog.String("remote_addr", e.RemoteAddr),
					slog.Any("error", e.Err))
			}
		})
		b.app.Once(EventServer, func(payload any) {
			b.state.Store(lifecycleActive)
			b.app.logger.Info("server lifecycle active",
				slog.Int("pid", os.Getpid()))
		})
		b.state.Store(lifecycleBound)
	})
}

// State returns the current lifecycle state name.
func (b *lifecycleBinder) State() string {
	switch b.state.Load() {
	case lifecycleActive:
		return LifecycleActive
	case lifecycleBound:
		return LifecycleBound
	default:
		return LifecycleUninitialized
	}
}

// Crashes returns the number of supervised handler panics so far.
func (b *lifecycleBinder) Crashes() int64 {
	return b.crashes.Load()
}

// supervise wraps a handler so a panic in it is contained: counted, logged
// with the process id, forwarded to Sentry when configured, and answered
// with a 500 instead of tearing the process down.
func (b *lifecycleBinder) supervise(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				n := b.crashes.Add(1)
				b.app.logger.Error("handler panicked",
					slog.Any("panic", rec),
					slog.String("stack", string(stackTrace())),
					slog.Int("pid", os.Getpid()),
					slog.Int64("crash_count", n),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				if hub := sentry.CurrentHub(); hub.Client() != nil {
					hub.Recover(rec)
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LifecycleState reports where the application is in its lifecycle.
func (a *Application) LifecycleState() string {
	return a.binder.State()
}

// CrashCount reports how many handler panics have been contained.
func (a *Application) CrashCount() int64 {
	return a.binder.Crashes()
}
