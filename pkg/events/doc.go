// Package events provides a minimal synchronous event bus used to wire
// application lifecycle notifications (request, response, server, cookie
// overflow) between otherwise decoupled components.
//
// Listeners registered with On fire on every emission; listeners registered
// with Once fire exactly once and are removed before their callback runs.
// Emission is synchronous: Emit returns after every listener has run.
package events
