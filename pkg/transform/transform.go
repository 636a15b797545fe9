// Package transform provides a plugin that rewrites responses with
// compiled expressions and extracts request-body values with JSONPath.
//
// Two route config keys drive it:
//
//   - "transform:extract" — map of value name to JSONPath expression,
//     evaluated against the request body; results land in the context
//     values so this plugin's own response expressions and any later
//     pipeline stages can use them. The generator runs before the
//     pipeline and never sees them.
//   - "transform:response" — map of field name to expression, evaluated
//     against the request environment; each result is written into the
//     response body when it is an object (directly or inside a tuple).
//
// Expressions see params, query, headers, body, values, a state
// snapshot, and the current response body.
package transform

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"

	"github.com/mocklet/mocklet/pkg/mocklet"
	"github.com/mocklet/mocklet/pkg/response"
)

// Route config keys.
const (
	ExtractKey  = "transform:extract"
	ResponseKey = "transform:response"
)

// Plugin applies JSONPath extraction and expression transforms for
// routes that configure them. Compiled programs are cached per source
// text.
type Plugin struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// New creates the transform plugin.
func New() *Plugin {
	return &Plugin{programs: make(map[string]*vm.Program)}
}

// Name implements mocklet.Plugin.
func (p *Plugin) Name() string { return "transform" }

// Version implements mocklet.Plugin.
func (p *Plugin) Version() string { return "1.0.0" }

// Process implements mocklet.Plugin.
func (p *Plugin) Process(_ context.Context, rc *mocklet.RequestContext, result any) (any, error) {
	if paths := stringMap(rc.Config[ExtractKey]); len(paths) > 0 {
		if err := p.extract(rc, paths); err != nil {
			return nil, err
		}
	}

	exprs := stringMap(rc.Config[ResponseKey])
	if len(exprs) == 0 {
		return result, nil
	}

	body, restore := responseBody(result)
	if body == nil {
		return result, nil
	}

	env := map[string]any{
		"params":   rc.Params,
		"query":    rc.Query,
		"headers":  rc.Headers,
		"body":     rc.Body,
		"values":   rc.Values,
		"state":    rc.State.Snapshot(),
		"response": body,
	}
	for field, code := range exprs {
		out, err := p.run(code, env)
		if err != nil {
			return nil, fmt.Errorf("transform field %q: %w", field, err)
		}
		body[field] = out
	}
	return restore(body), nil
}

// extract evaluates JSONPath expressions against the request body and
// stores the first match of each under its name in the context values.
func (p *Plugin) extract(rc *mocklet.RequestContext, paths map[string]string) error {
	for name, path := range paths {
		x, err := jp.ParseString(path)
		if err != nil {
			return fmt.Errorf("extract %q: invalid JSONPath %q: %w", name, path, err)
		}
		matches := x.Get(rc.Body)
		if len(matches) > 0 {
			rc.Values[name] = matches[0]
		}
	}
	return nil
}

// run compiles (with caching) and evaluates one expression.
func (p *Plugin) run(code string, env map[string]any) (any, error) {
	p.mu.Lock()
	program, ok := p.programs[code]
	p.mu.Unlock()

	if !ok {
		var err error
		program, err = expr.Compile(code, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.programs[code] = program
		p.mu.Unlock()
	}
	return expr.Run(program, env)
}

// responseBody digs the mutable object body out of a raw result: either
// the result itself or the body element of an explicit tuple. Plain
// array results are not tuples and stay untouched. The returned restore
// puts the body back into the original shape.
func responseBody(result any) (map[string]any, func(map[string]any) any) {
	switch v := result.(type) {
	case map[string]any:
		return v, func(body map[string]any) any { return body }
	case []any:
		if !response.IsTuple(v) {
			return nil, nil
		}
		if body, ok := v[1].(map[string]any); ok {
			return body, func(body map[string]any) any {
				v[1] = body
				return v
			}
		}
	}
	return nil, nil
}

// stringMap coerces a config value into map[string]string, accepting
// the map[string]any shape produced by YAML and JSON decoding.
func stringMap(raw any) map[string]string {
	switch m := raw.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}
