// Package metrics exposes Prometheus instruments for the HTTP request
// lifecycle: a total counter labeled by method and status, an in-flight
// gauge, and a duration histogram measured from context creation to
// response completion.
package metrics
