// Package fake generates response values from OpenAPI schemas.
//
// The generator is deliberately simple and deterministic where it can
// be: explicit examples, defaults, and enums win over synthesized
// values, and synthesized values are fixed per type so mock responses
// are stable across runs. Statistical quality is a non-goal.
package fake

import (
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
)

// Generator produces a value for a schema.
type Generator interface {
	Generate(schema *openapi3.Schema) any
}

// SchemaGenerator is the default Generator.
type SchemaGenerator struct{}

// NewGenerator creates the default schema generator.
func NewGenerator() *SchemaGenerator {
	return &SchemaGenerator{}
}

// Generate synthesizes a value for the schema. Priority: example,
// default, first enum entry, then a per-type placeholder. Object
// properties and array items recurse.
func (g *SchemaGenerator) Generate(schema *openapi3.Schema) any {
	if schema == nil {
		return nil
	}
	if schema.Example != nil {
		return schema.Example
	}
	if schema.Default != nil {
		return schema.Default
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}

	switch {
	case schema.Type.Is(openapi3.TypeString):
		return g.generateString(schema)
	case schema.Type.Is(openapi3.TypeInteger):
		return 0
	case schema.Type.Is(openapi3.TypeNumber):
		return 0.0
	case schema.Type.Is(openapi3.TypeBoolean):
		return true
	case schema.Type.Is(openapi3.TypeArray):
		if schema.Items != nil && schema.Items.Value != nil {
			return []any{g.Generate(schema.Items.Value)}
		}
		return []any{}
	case schema.Type.Is(openapi3.TypeObject), len(schema.Properties) > 0:
		return g.generateObject(schema)
	default:
		return nil
	}
}

func (g *SchemaGenerator) generateObject(schema *openapi3.Schema) map[string]any {
	out := make(map[string]any, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		out[name] = g.Generate(ref.Value)
	}
	return out
}

func (g *SchemaGenerator) generateString(schema *openapi3.Schema) string {
	switch schema.Format {
	case "uuid":
		return uuid.NewString()
	case "date-time":
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	case "date":
		return "2024-01-01"
	case "email":
		return "user@example.com"
	case "uri", "url":
		return "https://example.com"
	default:
		return "string"
	}
}
