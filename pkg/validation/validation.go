// Package validation provides a plugin that validates request bodies
// against JSON Schema.
//
// The schema comes from the matched route's config under the
// "validation:schema" key, either as a JSON string or a decoded
// map[string]any. Validation failure is a normal data-flow outcome, not
// an error: the plugin replaces the result with a 400 tuple carrying a
// VALIDATION_FAILED code and per-field details, and later pipeline
// stages see that replacement.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mocklet/mocklet/pkg/mocklet"
)

// ConfigKey is the route config key holding the request body schema.
const ConfigKey = "validation:schema"

// CodeValidationFailed marks 400 bodies produced by this plugin.
const CodeValidationFailed = "VALIDATION_FAILED"

// Plugin validates request bodies for routes that carry a schema.
// Routes without the config key pass through untouched. Compiled
// schemas are cached per schema text.
type Plugin struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// New creates the validation plugin.
func New() *Plugin {
	return &Plugin{compiled: make(map[string]*jsonschema.Schema)}
}

// Name implements mocklet.Plugin.
func (p *Plugin) Name() string { return "validation" }

// Version implements mocklet.Plugin.
func (p *Plugin) Version() string { return "1.0.0" }

// Process implements mocklet.Plugin.
func (p *Plugin) Process(_ context.Context, rc *mocklet.RequestContext, result any) (any, error) {
	raw, ok := rc.Config[ConfigKey]
	if !ok {
		return result, nil
	}

	schema, err := p.schemaFor(raw)
	if err != nil {
		// A broken schema is a registration bug, not a request problem.
		return nil, fmt.Errorf("compile %s: %w", ConfigKey, err)
	}

	if err := schema.Validate(rc.Body); err != nil {
		return []any{400, map[string]any{
			"error":   "request validation failed",
			"code":    CodeValidationFailed,
			"details": validationDetails(err),
		}}, nil
	}
	return result, nil
}

// schemaFor compiles and caches the schema from route config. Accepts a
// JSON string or a decoded map.
func (p *Plugin) schemaFor(raw any) (*jsonschema.Schema, error) {
	var text string
	switch s := raw.(type) {
	case string:
		text = s
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("schema config is not JSON-shaped: %w", err)
		}
		text = string(data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if schema, ok := p.compiled[text]; ok {
		return schema, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", strings.NewReader(text)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, err
	}
	p.compiled[text] = schema
	return schema, nil
}

// validationDetails flattens a validation error into human-readable
// "location: message" strings, leaf causes only.
func validationDetails(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	var details []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			details = append(details, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return details
}
