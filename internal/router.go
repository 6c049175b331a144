package internal

import (
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Router registers routes. Handlers receive the framework context and
// return errors instead of writing error responses inline.
type Router interface {
	GET(pattern string, fn HandlerFunc, mws ...Middleware)
	POST(pattern string, fn HandlerFunc, mws ...Middleware)
	PUT(pattern string, fn HandlerFunc, mws ...Middleware)
	PATCH(pattern string, fn HandlerFunc, mws ...Middleware)
	DELETE(pattern string, fn HandlerFunc, mws ...Middleware)
	HEAD(pattern string, fn HandlerFunc, mws ...Middleware)
	OPTIONS(pattern string, fn HandlerFunc, mws ...Middleware)
	Handle(method, pattern string, fn HandlerFunc, mws ...Middleware)
	Group(prefix string, fn func(r Router))
	Use(mws ...Middleware)
}

// RouteInfo describes one registered route for the persisted router
// snapshot. Field names mirror what operators expect to grep for in the
// dump: the handler name, the methods, the parameter names, the path, its
// compiled pattern, and the middleware stack in execution order.
type RouteInfo struct {
	Name       string   `json:"name"`
	Methods    []string `json:"methods"`
	ParamNames []string `json:"paramNames"`
	Path       string   `json:"path"`
	Regexp     string   `json:"regexp"`
	Stack      []string `json:"stack"`
}

// routerAdapter binds the Router interface to chi and records a route
// registry as registration happens. chi's own Walk sees only the wrapped
// closures, so the registry is the one place handler names survive.
type routerAdapter struct {
	router chi.Router
	app    *Application
	prefix string
	mws    []Middleware
}

func (r *routerAdapter) GET(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodGet, pattern, fn, mws...)
}

func (r *routerAdapter) POST(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodPost, pattern, fn, mws...)
}

func (r *routerAdapter) PUT(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodPut, pattern, fn, mws...)
}

func (r *routerAdapter) PATCH(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodPatch, pattern, fn, mws...)
}

func (r *routerAdapter) DELETE(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodDelete, pattern, fn, mws...)
}

func (r *routerAdapter) HEAD(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodHead, pattern, fn, mws...)
}

func (r *routerAdapter) OPTIONS(pattern string, fn HandlerFunc, mws ...Middleware) {
	r.Handle(http.MethodOptions, pattern, fn, mws...)
}

// Handle registers a route and records it in the registry.
func (r *routerAdapter) Handle(method, pattern string, fn HandlerFunc, mws ...Middleware) {
	all := append(append([]Middleware{}, r.mws...), mws...)
	fullPath := r.prefix + pattern
	if fullPath == "" {
		fullPath = "/"
	}

	stack := make([]string, 0, len(all)+1)
	for _, mw := range all {
		stack = append(stack, funcName(mw))
	}
	stack = append(stack, funcName(fn))

	r.app.routes = append(r.app.routes, RouteInfo{
		Name:       funcName(fn),
		Methods:    []string{method},
		ParamNames: patternParams(fullPath),
		Path:       fullPath,
		Regexp:     patternRegexp(fullPath),
		Stack:      stack,
	})

	r.router.Method(method, pattern, r.wrap(fn, all))
}

// Group registers routes under a shared prefix and middleware chain.
func (r *routerAdapter) Group(prefix string, fn func(rr Router)) {
	sub := &routerAdapter{
		app:    r.app,
		prefix: r.prefix + prefix,
		mws:    append([]Middleware{}, r.mws...),
	}
	r.router.Route(prefix, func(cr chi.Router) {
		sub.router = cr
		fn(sub)
	})
}

// Use appends middleware applied to every route registered after this call.
func (r *routerAdapter) Use(mws ...Middleware) {
	r.mws = append(r.mws, mws...)
}

// wrap builds the per-request pipeline: one fresh context, the request
// event, the middleware chain, the handler, error rendering, metrics, and
// finally the response event.
func (r *routerAdapter) wrap(fn HandlerFunc, mws []Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		fn = mws[i](fn)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		app := r.app
		c := newContext(app, w, req)
		if app.metrics != nil {
			app.metrics.RequestStarted()
		}
		app.Emit(EventRequest, c)

		if err := fn(c); err != nil {
			app.handleError(c, err)
		}

		if app.metrics != nil {
			app.metrics.RequestFinished(req.Method, c.Response.Status(), c.StartedAt())
		}
		app.Emit(EventResponse, c)
	})
}

// anonymousSuffix matches the numbered segments the runtime appends to
// closures, e.g. "func1" in "pkg.tagMiddleware.func1".
var anonymousSuffix = regexp.MustCompile(`^(func)?\d+$`)

// funcName derives a stable label from a function value: package path,
// method-value "-fm" suffix, and anonymous-closure segments stripped.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "unknown"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "unknown"
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	segs := strings.Split(name, ".")
	for len(segs) > 1 && anonymousSuffix.MatchString(segs[len(segs)-1]) {
		segs = segs[:len(segs)-1]
	}
	name = segs[len(segs)-1]
	if name == "" {
		return "unknown"
	}
	return name
}

// patternParams lists the {name} placeholders of a chi pattern in order.
func patternParams(pattern string) []string {
	params := []string{}
	for _, seg := range strings.Split(pattern, "/") {
		if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[:i]
		}
		params = append(params, name)
	}
	return params
}

// patternRegexp renders the pattern as an anchored regular expression, the
// form the router snapshot persists.
func patternRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i, seg := range strings.Split(pattern, "/") {
		if i > 0 {
			b.WriteString("/")
		}
		if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			inner := seg[1 : len(seg)-1]
			if j := strings.Index(inner, ":"); j >= 0 {
				b.WriteString("(" + inner[j+1:] + ")")
			} else {
				b.WriteString("([^/]+)")
			}
			continue
		}
		b.WriteString(regexp.QuoteMeta(seg))
	}
	b.WriteString("$")
	return b.String()
}
