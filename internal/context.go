package internal

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Context is the per-request workspace. Each inbound request gets a fresh
// one, never pooled or reused, and it is discarded when the response cycle
// ends. State set on a context stays on that context; defaults shared by all
// requests live on the application prototypes and are visible here through
// delegation.
//
// The Request and Response facets point back at their owning context, so
// collaborators can navigate the object graph from any entry point:
// c.Request.Ctx == c, c.Response.Request == c.Request, and so on.
//
// A context is owned by a single goroutine. Hand work to other goroutines
// through RunInBackground and an anonymous context, never by sharing one.
type Context struct {
	App      *Application
	Request  *Request
	Response *Response

	view      *View
	id        string
	startedAt time.Time
}

// Request is the inbound-message facet of a context.
type Request struct {
	App      *Application
	Ctx      *Context
	Response *Response

	view        *View
	req         *http.Request
	originalURL string
}

// Response is the outbound-message facet of a context.
type Response struct {
	App     *Application
	Ctx     *Context
	Request *Request

	view   *View
	writer *ResponseWriter
}

// newContext builds a context around an inbound request. The three facets
// derive their views from the application prototypes at this point;
// prototype fields added later by loaders are still visible through
// delegation.
func newContext(app *Application, w http.ResponseWriter, r *http.Request) *Context {
	c := &Context{
		App:       app,
		view:      app.contextProto.Derive(),
		id:        uuid.NewString(),
		startedAt: time.Now(),
	}
	c.Request = &Request{
		App:         app,
		Ctx:         c,
		view:        app.requestProto.Derive(),
		req:         r,
		originalURL: r.URL.RequestURI(),
	}
	c.Response = &Response{
		App:    app,
		Ctx:    c,
		view:   app.responseProto.Derive(),
		writer: NewResponseWriter(w),
	}
	c.Request.Response = c.Response
	c.Response.Request = c.Request
	return c
}

// ID returns the request identifier assigned at construction.
func (c *Context) ID() string {
	return c.id
}

// StartedAt returns the context construction time.
func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

// Get returns the value for key, falling back to the shared context
// prototype when the key was never set on this context.
func (c *Context) Get(key string) (any, bool) {
	return c.view.Get(key)
}

// Set stores a per-context value. It never touches the shared prototype.
func (c *Context) Set(key string, value any) {
	c.view.Set(key, value)
}

// Has reports whether key resolves on this context or its prototype.
func (c *Context) Has(key string) bool {
	return c.view.Has(key)
}

// Delete removes a per-context value, re-exposing any prototype default.
func (c *Context) Delete(key string) {
	c.view.Delete(key)
}

// Locals returns the application-wide key/value bag.
func (c *Context) Locals() map[string]any {
	return c.App.Locals()
}

// Logger returns the application logger annotated with the request id.
func (c *Context) Logger() *slog.Logger {
	return c.App.logger.With(slog.String("request_id", c.id))
}

// Param returns the named route parameter, or "" when absent.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request.req, name)
}

// Query returns the first query value for name, or "" when absent.
func (c *Context) Query(name string) string {
	return c.Request.req.URL.Query().Get(name)
}

// Header returns an inbound request header.
func (c *Context) Header(name string) string {
	return c.Request.req.Header.Get(name)
}

// SetHeader sets an outbound response header.
func (c *Context) SetHeader(name, value string) {
	c.Response.writer.Header().Set(name, value)
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(status int, v any) error {
	c.SetHeader("Content-Type", "application/json; charset=utf-8")
	c.Response.writer.WriteHeader(status)
	return json.NewEncoder(c.Response.writer).Encode(v)
}

// String writes a plain-text response with the given status code.
func (c *Context) String(status int, body string) error {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Response.writer.WriteHeader(status)
	_, err := c.Response.writer.Write([]byte(body))
	return err
}

// NoContent writes a body-less response with the given status code.
func (c *Context) NoContent(status int) error {
	c.Response.writer.WriteHeader(status)
	return nil
}

// Redirect writes a redirect to url with the given status code.
func (c *Context) Redirect(status int, url string) error {
	http.Redirect(c.Response.writer, c.Request.req, url, status)
	return nil
}

// Cookie returns a plain request cookie value.
func (c *Context) Cookie(name string) (string, error) {
	return c.App.plainCookies.Get(c.Request.req, name)
}

// SetCookie sets a plain response cookie. Oversized cookies are still
// written, mirroring browser behavior of silently dropping them, but the
// cookieLimitExceed event fires so operators can observe the loss.
func (c *Context) SetCookie(name, value string, maxAge int) {
	c.checkCookieLimit(name, value)
	c.App.plainCookies.Set(c.Response.writer, name, value, maxAge)
}

// SignedCookie returns a signed cookie value, verified against every
// configured secret key.
func (c *Context) SignedCookie(name string) (string, error) {
	m, err := c.App.Cookies()
	if err != nil {
		return "", err
	}
	return m.GetSigned(c.Request.req, name)
}

// SetSignedCookie sets a tamper-evident response cookie signed with the
// newest secret key.
func (c *Context) SetSignedCookie(name, value string, maxAge int) error {
	m, err := c.App.Cookies()
	if err != nil {
		return err
	}
	c.checkCookieLimit(name, value)
	return m.SetSigned(c.Response.writer, name, value, maxAge)
}

// DeleteCookie expires a response cookie.
func (c *Context) DeleteCookie(name string) {
	c.App.plainCookies.Delete(c.Response.writer, name)
}

func (c *Context) checkCookieLimit(name, value string) {
	if c.App.plainCookies.Oversized(name, value) {
		c.App.Emit(EventCookieLimitExceed, &CookieLimitExceedError{Name: name, Value: value, Ctx: c})
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.req.Method
}

// Path returns the request path.
func (r *Request) Path() string {
	return r.req.URL.Path
}

// OriginalURL returns the request URI as received, before any rewriting.
func (r *Request) OriginalURL() string {
	return r.originalURL
}

// Host returns the request host.
func (r *Request) Host() string {
	return r.req.Host
}

// Protocol returns "https" when the request arrived over TLS, else "http".
func (r *Request) Protocol() string {
	if r.req.TLS != nil {
		return "https"
	}
	return "http"
}

// IP returns the remote address without the port.
func (r *Request) IP() string {
	host, _, err := net.SplitHostPort(r.req.RemoteAddr)
	if err != nil {
		return r.req.RemoteAddr
	}
	return host
}

// Std returns the underlying *http.Request.
func (r *Request) Std() *http.Request {
	return r.req
}

// Get returns a request-facet value, delegating to the request prototype.
func (r *Request) Get(key string) (any, bool) {
	return r.view.Get(key)
}

// Set stores a request-facet value on this request only.
func (r *Request) Set(key string, value any) {
	r.view.Set(key, value)
}

// Status returns the response status code; 200 until a header is written.
func (w *Response) Status() int {
	return w.writer.Status()
}

// Size returns the number of body bytes written so far.
func (w *Response) Size() int64 {
	return w.writer.Size()
}

// Written reports whether headers have been sent.
func (w *Response) Written() bool {
	return w.writer.Written()
}

// Writer returns the wrapped http.ResponseWriter.
func (w *Response) Writer() http.ResponseWriter {
	return w.writer
}

// Get returns a response-facet value, delegating to the response prototype.
func (w *Response) Get(key string) (any, bool) {
	return w.view.Get(key)
}

// Set stores a response-facet value on this response only.
func (w *Response) Set(key string, value any) {
	w.view.Set(key, value)
}
