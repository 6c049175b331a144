// Package internal provides the core types and implementation for the Egg
// runtime.
//
// This package is internal and should not be used directly. Import
// "github.com/WMTcore/egg" instead, which re-exports the public API.
//
// # Core Types
//
//   - Application: process-wide state, configuration, prototypes, locals,
//     events, and the HTTP server lifecycle
//   - Context: per-request workspace with Request and Response facets that
//     delegate to shared prototypes
//   - Router: interface handlers use to declare routes
//   - Handler: interface implemented by types that declare routes
//   - HandlerFunc: signature for route handlers that return errors
//   - Middleware: wraps handlers with cross-cutting concerns
//   - Loader: populates prototypes and configuration during construction
//   - TaskFunc: background task executed with an anonymous context
//
// # Prototype Delegation
//
// Defaults installed on the application prototypes are visible from every
// context without copying: a context resolves a key locally first and falls
// back to the shared prototype. Writes stay on the context; the prototype
// is never mutated by request handling.
//
// # Lifecycle Events
//
// The application emits "request" and "response" around every handled
// request, "server" exactly once when the transport is ready,
// "cookieLimitExceed" for oversized cookies, and "clientError" for
// connections rejected by the protocol guard.
package internal
