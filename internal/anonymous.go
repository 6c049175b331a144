package internal

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Socket describes the peer of a synthetic connection.
type Socket struct {
	RemoteAddress string
	RemotePort    int
}

// AnonymousRequest overrides parts of the synthetic request backing an
// anonymous context. Zero-value fields keep their defaults. Headers, Query
// and Socket merge into the defaults key by key; scalar fields replace the
// default wholesale.
type AnonymousRequest struct {
	Method   string
	URL      string
	Host     string
	Protocol string
	Headers  map[string]string
	Query    map[string]string
	Socket   *Socket
	Body     io.Reader
}

// anonymousDefaults returns the baseline synthetic request for this
// application. The host tracks the configured listen address so logs from
// background work point at the right instance.
func (a *Application) anonymousDefaults() *AnonymousRequest {
	host := a.config.Server.Address
	switch {
	case host == "":
		host = "localhost:7001"
	case strings.HasPrefix(host, ":"):
		// Port-only bind address; qualify it for the host header.
		host = "localhost" + host
	}
	return &AnonymousRequest{
		Method:   http.MethodGet,
		URL:      "/",
		Host:     host,
		Protocol: "http",
		Headers:  map[string]string{"host": host},
		Query:    map[string]string{},
		Socket:   &Socket{RemoteAddress: "127.0.0.1", RemotePort: 7001},
	}
}

// mergeAnonymousRequest folds override into base. Map-valued fields merge
// entry by entry so a caller adding one header keeps the default host
// header; scalar fields replace wholesale.
func mergeAnonymousRequest(base, override *AnonymousRequest) *AnonymousRequest {
	if override == nil {
		return base
	}
	if override.Method != "" {
		base.Method = override.Method
	}
	if override.URL != "" {
		base.URL = override.URL
	}
	if override.Host != "" {
		base.Host = override.Host
		base.Headers["host"] = override.Host
	}
	if override.Protocol != "" {
		base.Protocol = override.Protocol
	}
	for k, v := range override.Headers {
		base.Headers[k] = v
	}
	for k, v := range override.Query {
		base.Query[k] = v
	}
	if override.Socket != nil {
		if override.Socket.RemoteAddress != "" {
			base.Socket.RemoteAddress = override.Socket.RemoteAddress
		}
		if override.Socket.RemotePort != 0 {
			base.Socket.RemotePort = override.Socket.RemotePort
		}
	}
	if override.Body != nil {
		base.Body = override.Body
	}
	return base
}

// NewAnonymousContext builds a context that is not tied to any inbound
// request, for schedulers, queue consumers and startup tasks. It behaves
// like a request context: it delegates to the same prototypes, carries a
// fresh id, and writes responses into the void.
func (a *Application) NewAnonymousContext(override *AnonymousRequest) *Context {
	req := mergeAnonymousRequest(a.anonymousDefaults(), override)

	target := req.URL
	if len(req.Query) > 0 {
		vals := url.Values{}
		for k, v := range req.Query {
			vals.Set(k, v)
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + vals.Encode()
	}

	httpReq, err := http.NewRequest(req.Method, req.Protocol+"://"+req.Host+target, req.Body)
	if err != nil {
		// Overrides produced an unparsable URL; fall back to the
		// defaults so background work still gets a usable context.
		httpReq, _ = http.NewRequest(http.MethodGet, "http://"+req.Host+"/", nil)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Host = req.Host
	httpReq.RemoteAddr = req.Socket.RemoteAddress + ":" + strconv.Itoa(req.Socket.RemotePort)

	return newContext(a, &voidResponseWriter{header: make(http.Header)}, httpReq)
}

// RunInBackground executes task on its own goroutine with a fresh anonymous
// context. A failing or panicking task is logged and isolated; it never
// takes the process down and never affects other tasks. An empty name is
// derived from the task's function name.
func (a *Application) RunInBackground(name string, task TaskFunc) {
	if name == "" {
		name = funcName(task)
	}
	c := a.NewAnonymousContext(nil)
	log := c.Logger().With(slog.String("task", name))

	go func() {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("background task panicked",
					slog.Any("panic", rec),
					slog.String("stack", string(stackTrace())),
					slog.Duration("duration", time.Since(start)))
			}
		}()
		if err := task(c); err != nil {
			log.Error("background task failed",
				slog.Any("error", err),
				slog.Duration("duration", time.Since(start)))
			return
		}
		log.Debug("background task finished",
			slog.Duration("duration", time.Since(start)))
	}()
}

func stackTrace() []byte {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

// voidResponseWriter absorbs everything written to an anonymous context's
// response.
type voidResponseWriter struct {
	header http.Header
	status int
}

func (w *voidResponseWriter) Header() http.Header {
	return w.header
}

func (w *voidResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *voidResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return len(p), nil
}

var _ http.ResponseWriter = (*voidResponseWriter)(nil)
