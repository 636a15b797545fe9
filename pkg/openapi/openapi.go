// Package openapi provides a plugin that auto-registers routes from an
// OpenAPI document.
//
// Installation walks every path and operation in the document and
// registers one route each, translating "{param}" path templates into
// ":param" patterns. A route's response comes from the operation's
// success response: its example when one is declared, otherwise a value
// generated from its schema. Route config carries the operation ID and
// declared response codes under "openapi:"-prefixed keys for downstream
// plugins.
package openapi

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mocklet/mocklet/pkg/fake"
	"github.com/mocklet/mocklet/pkg/mocklet"
)

// Route config keys written during installation.
const (
	OperationKey = "openapi:operation"
	ResponsesKey = "openapi:responses"
)

// Plugin registers routes for an OpenAPI document at install time. Its
// Process step is a pass-through.
type Plugin struct {
	doc *openapi3.T
	gen fake.Generator
}

// New creates the plugin for an already-loaded document.
func New(doc *openapi3.T) *Plugin {
	return &Plugin{doc: doc, gen: fake.NewGenerator()}
}

// NewFromFile loads an OpenAPI document (JSON or YAML) from disk.
func NewFromFile(path string) (*Plugin, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document: %w", err)
	}
	return New(doc), nil
}

// WithGenerator replaces the fake-data generator.
func (p *Plugin) WithGenerator(gen fake.Generator) *Plugin {
	p.gen = gen
	return p
}

// Name implements mocklet.Plugin.
func (p *Plugin) Name() string { return "openapi" }

// Version implements mocklet.Plugin.
func (p *Plugin) Version() string { return "1.0.0" }

// Process implements mocklet.Plugin as a no-op participant.
func (p *Plugin) Process(_ context.Context, _ *mocklet.RequestContext, result any) (any, error) {
	return result, nil
}

// Install registers one route per path and operation. Paths are walked
// in sorted order so registration order, and therefore match
// precedence, is deterministic.
func (p *Plugin) Install(inst *mocklet.Instance) error {
	if p.doc == nil || p.doc.Paths == nil {
		return fmt.Errorf("openapi plugin has no document")
	}

	pathMap := p.doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		pattern := TemplateToPattern(path)
		for method, op := range item.Operations() {
			if err := p.registerOperation(inst, method, pattern, op); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Plugin) registerOperation(inst *mocklet.Instance, method, pattern string, op *openapi3.Operation) error {
	status, body := p.successResponse(op)

	config := mocklet.RouteConfig{ResponsesKey: responseCodes(op)}
	if op.OperationID != "" {
		config[OperationKey] = op.OperationID
	}

	source := []any{status, body, map[string]string{"content-type": "application/json"}}
	key := method + " " + pattern
	if _, err := inst.Register(key, source, config); err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}
	return nil
}

// successResponse picks the operation's response: the lowest declared
// 2xx code, falling back to "default" at 200.
func (p *Plugin) successResponse(op *openapi3.Operation) (int, any) {
	if op.Responses == nil {
		return 200, nil
	}

	respMap := op.Responses.Map()
	codes := make([]int, 0, len(respMap))
	for code := range respMap {
		if n, err := strconv.Atoi(code); err == nil && n >= 200 && n < 300 {
			codes = append(codes, n)
		}
	}
	sort.Ints(codes)

	if len(codes) > 0 {
		return codes[0], p.responseBody(respMap[strconv.Itoa(codes[0])])
	}
	if ref, ok := respMap["default"]; ok {
		return 200, p.responseBody(ref)
	}
	return 200, nil
}

// responseBody extracts the JSON media type's example, or generates a
// value from its schema.
func (p *Plugin) responseBody(ref *openapi3.ResponseRef) any {
	if ref == nil || ref.Value == nil {
		return nil
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	if media.Example != nil {
		return media.Example
	}
	if media.Schema != nil && media.Schema.Value != nil {
		return p.gen.Generate(media.Schema.Value)
	}
	return nil
}

// responseCodes lists the operation's declared response codes, sorted.
func responseCodes(op *openapi3.Operation) []string {
	if op.Responses == nil {
		return nil
	}
	codes := make([]string, 0, op.Responses.Len())
	for code := range op.Responses.Map() {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// TemplateToPattern converts an OpenAPI path template like
// "/pets/{petId}" into the route pattern "/pets/:petId".
func TemplateToPattern(template string) string {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
			segments[i] = ":" + seg[1:len(seg)-1]
		}
	}
	return strings.Join(segments, "/")
}
