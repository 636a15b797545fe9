// Package mocklet implements the request-mocking engine core: the mock
// instance facade, the generator invoker, and the plugin pipeline.
//
// An Instance owns a route table, a shared state store, the global
// plugin list, and a request history log. Routes are registered with a
// "METHOD /path" key and a source: a literal value returned as-is, or a
// generator function invoked with the request context. Dispatch goes
// through Handle, which always returns a well-formed response; route
// misses become 404s carrying the ROUTE_NOT_FOUND code and internal
// failures become 500s. Callers never need to handle an error from
// Handle itself.
//
//	inst := mocklet.New()
//	inst.MustRegister("GET /ping", "pong")
//	inst.MustRegister("GET /pets/:petId", func(rc *mocklet.RequestContext) (any, error) {
//	    return map[string]any{"id": rc.Params["petId"]}, nil
//	})
//	resp := inst.Handle(context.Background(), "GET", "/ping", nil)
package mocklet
