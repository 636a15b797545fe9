package mocklet

import "context"

// Plugin is a named, versioned participant in the response pipeline.
//
// Process receives the request context and the current raw result and
// returns the raw result for the next stage. It runs before
// normalization, so a plugin may return an explicit tuple (for example
// []any{400, body} for a validation failure) or any other raw shape. A
// plugin may pass the result through untouched, replace it entirely, or
// only mutate context fields and return the result unchanged. A
// returned error aborts the pipeline and is converted to a 500 by the
// same tier that handles generator failures.
type Plugin interface {
	Name() string
	Version() string
	Process(ctx context.Context, rc *RequestContext, result any) (any, error)
}

// Installer is implemented by plugins that need a one-time setup hook.
// Install runs synchronously at attachment time, before any request is
// served; it is typically used to register additional routes. It never
// runs per-request. An Install error is fatal at setup time: Pipe
// reports it and the plugin is not attached.
type Installer interface {
	Install(inst *Instance) error
}

// runPipeline folds the raw result through the plugins in order:
// global plugins in attachment order, then the route's own plugins in
// pipe order, regardless of when each was attached relative to route
// registration.
func runPipeline(ctx context.Context, plugins []Plugin, rc *RequestContext, result any) (any, error) {
	for _, p := range plugins {
		next, err := p.Process(ctx, rc, result)
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}
