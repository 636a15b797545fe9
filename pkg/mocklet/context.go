package mocklet

import (
	"net/url"
	"strings"

	"github.com/mocklet/mocklet/pkg/state"
)

// RouteConfig is arbitrary route-scoped metadata consumed by plugins.
// Well-known keys include "contentType" (overrides the normalizer's
// inferred content type) and plugin-namespaced keys like
// "validation:schema" or "openapi:responses".
type RouteConfig map[string]any

// RequestInit carries the optional parts of a dispatched request.
type RequestInit struct {
	// Headers are the request headers. Keys are lower-cased on ingest.
	Headers map[string]string

	// Query are query parameters, merged over any query string present
	// in the dispatched path.
	Query map[string]string

	// Body is the parsed request body. Adapters parse leniently: a
	// malformed JSON body arrives here as its raw string, never as an
	// error.
	Body any
}

// RequestContext is the per-request context passed by reference through
// the generator and the entire plugin pipeline. Any participant may
// mutate State for cross-request persistence or Values for cross-plugin
// communication within the same request.
type RequestContext struct {
	// Method and Path identify the incoming request. Path excludes the
	// query string.
	Method string
	Path   string

	// Params are the extracted path parameters.
	Params map[string]string

	// Query are the query parameters, first value per name.
	Query map[string]string

	// Headers are the request headers with lower-cased keys.
	Headers map[string]string

	// Body is the parsed request body.
	Body any

	// State is the instance's shared store, persisted across requests.
	State *state.Store

	// RouteState is the matched route's own namespace within State.
	RouteState *state.Namespace

	// Config is the matched route's registration config.
	Config RouteConfig

	// Values is per-request scratch space for plugins (parsed claims,
	// extracted body values, ...). Discarded when the request ends.
	Values map[string]any
}

// splitTarget separates a dispatch path into path and raw query string.
func splitTarget(target string) (path, rawQuery string) {
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		return target[:idx], target[idx+1:]
	}
	return target, ""
}

// parseQuery merges query-string parameters with init-supplied ones.
// Init values win on conflict. Only the first value per name is kept.
func parseQuery(rawQuery string, init map[string]string) map[string]string {
	query := make(map[string]string)
	if rawQuery != "" {
		if parsed, err := url.ParseQuery(rawQuery); err == nil {
			for name, values := range parsed {
				if len(values) > 0 {
					query[name] = values[0]
				}
			}
		}
	}
	for name, value := range init {
		query[name] = value
	}
	return query
}

// lowerHeaders normalizes header keys to lower case.
func lowerHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		out[strings.ToLower(name)] = value
	}
	return out
}
