// Package egg provides the application runtime for building server-side
// web services in Go.
//
// Egg centers on two objects: the [Application], created once per process
// and holding configuration, shared prototypes, and the lifecycle event
// bus; and the [Context], created fresh for every request and discarded
// when the response cycle ends.
//
// # Quick Start
//
// Create an application with egg.New(), configure it with options, and
// call Run() to start the HTTP server:
//
//	app, err := egg.New(
//	    egg.WithConfigFile("config/app.yaml"),
//	    egg.WithDefaultLogger(),
//	    egg.WithHandlers(
//	        handlers.NewPages(repo),
//	    ),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(""); err != nil {
//	    log.Fatal(err)
//	}
//
// # Prototype Delegation
//
// Loaders install defaults on the application's prototypes during
// construction. Every context sees those defaults without copying and can
// shadow them locally without affecting any other request:
//
//	egg.WithLoader(egg.LoaderFunc(func(a *egg.Application) error {
//	    a.ContextProto().Set("tenant", "public")
//	    return nil
//	}))
//
// # Lifecycle Events
//
// The application emits "request" and "response" around each handled
// request, "server" exactly once when the listener is ready,
// "cookieLimitExceed" for oversized cookies, and "clientError" for
// connections rejected before HTTP parsing:
//
//	app.On(egg.EventResponse, func(payload any) {
//	    c := payload.(*egg.Context)
//	    audit.Record(c.ID(), c.Response.Status())
//	})
//
// # Background Work
//
// Work outside any request runs on an anonymous context, which behaves
// like a request context but writes its response into the void:
//
//	app.RunInBackground("warm-cache", func(c *egg.Context) error {
//	    return cache.Warm(c.Request.Std().Context())
//	})
//
// A failing or panicking background task is logged and isolated; it never
// affects request handling or other tasks.
package egg
