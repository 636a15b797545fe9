package config

import (
	"fmt"

	"github.com/mocklet/mocklet/pkg/crud"
	"github.com/mocklet/mocklet/pkg/mocklet"
)

// Apply registers a route file's routes and resources on the instance.
// Routes are registered in file order, so earlier definitions win
// matching ties; resources install after the static routes.
func Apply(rf *RouteFile, inst *mocklet.Instance) error {
	for _, def := range rf.Routes {
		source, cfg := buildSource(def)
		if _, err := inst.Register(def.Route, source, cfg); err != nil {
			return fmt.Errorf("route %q: %w", def.Route, err)
		}
	}

	for _, res := range rf.Resources {
		plugin := crud.New(crud.Resource{
			Name:     res.Name,
			BasePath: res.BasePath,
			IDField:  res.IDField,
			Seed:     res.Seed,
		})
		if err := inst.Pipe(plugin); err != nil {
			return fmt.Errorf("resource %q: %w", res.Name, err)
		}
	}
	return nil
}

// buildSource turns a route definition into a registration source and
// config. An explicit status or header map forces tuple form; otherwise
// the body is registered as a literal and smart defaults apply.
func buildSource(def *RouteDef) (any, mocklet.RouteConfig) {
	var cfg mocklet.RouteConfig
	if len(def.Config) > 0 || def.ContentType != "" {
		cfg = make(mocklet.RouteConfig, len(def.Config)+1)
		for k, v := range def.Config {
			cfg[k] = v
		}
		if def.ContentType != "" {
			cfg["contentType"] = def.ContentType
		}
	}

	if def.Status != 0 || len(def.Headers) > 0 {
		status := def.Status
		if status == 0 {
			status = 200
		}
		body := normalizeBody(def.Body)
		if body == nil && status != 204 {
			// The normalizer folds a nil tuple body to 204; an empty
			// string keeps the declared status.
			body = ""
		}
		tuple := []any{status, body}
		if len(def.Headers) > 0 {
			tuple = append(tuple, def.Headers)
		}
		return tuple, cfg
	}
	return normalizeBody(def.Body), cfg
}

// normalizeBody converts YAML's map[any]any decoding into the
// map[string]any shape the rest of the engine expects.
func normalizeBody(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeBody(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeBody(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeBody(val)
		}
		return out
	default:
		return v
	}
}
