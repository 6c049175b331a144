package internal

// Handler declares routes on a router.
//
// Example:
//
//	type PagesHandler struct{}
//
//	func (h *PagesHandler) Routes(r egg.Router) {
//	    r.GET("/", h.home)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error triggers the application error handler.
type HandlerFunc func(c *Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(c *Context, err error) error

// Loader populates the application prototypes and effective configuration
// before the constructor proceeds to config diagnostics and event binding.
// A loader failure aborts construction; the error propagates unmodified.
type Loader interface {
	Load(app *Application) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(app *Application) error

// Load calls fn(app).
func (fn LoaderFunc) Load(app *Application) error {
	return fn(app)
}

// TaskFunc is a background task executed with an anonymous context.
type TaskFunc func(c *Context) error
