package fake

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaOf(typ string) *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{typ}}
}

func TestGenerateExplicitValuesWin(t *testing.T) {
	g := NewGenerator()

	withExample := schemaOf("string")
	withExample.Example = "from-example"
	assert.Equal(t, "from-example", g.Generate(withExample))

	withDefault := schemaOf("integer")
	withDefault.Default = 42
	assert.Equal(t, 42, g.Generate(withDefault))

	withEnum := schemaOf("string")
	withEnum.Enum = []any{"red", "green"}
	assert.Equal(t, "red", g.Generate(withEnum))
}

func TestGeneratePrimitives(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, "string", g.Generate(schemaOf("string")))
	assert.Equal(t, 0, g.Generate(schemaOf("integer")))
	assert.Equal(t, 0.0, g.Generate(schemaOf("number")))
	assert.Equal(t, true, g.Generate(schemaOf("boolean")))
	assert.Nil(t, g.Generate(nil))
}

func TestGenerateStringFormats(t *testing.T) {
	g := NewGenerator()

	s := schemaOf("string")
	s.Format = "uuid"
	_, err := uuid.Parse(g.Generate(s).(string))
	assert.NoError(t, err)

	s.Format = "date-time"
	assert.Equal(t, "2024-01-01T00:00:00Z", g.Generate(s))

	s.Format = "date"
	assert.Equal(t, "2024-01-01", g.Generate(s))

	s.Format = "email"
	assert.Equal(t, "user@example.com", g.Generate(s))

	s.Format = "uri"
	assert.Equal(t, "https://example.com", g.Generate(s))
}

func TestGenerateArrayRecursesIntoItems(t *testing.T) {
	g := NewGenerator()

	arr := schemaOf("array")
	arr.Items = &openapi3.SchemaRef{Value: schemaOf("integer")}
	assert.Equal(t, []any{0}, g.Generate(arr))

	empty := schemaOf("array")
	assert.Equal(t, []any{}, g.Generate(empty))
}

func TestGenerateObjectRecursesIntoProperties(t *testing.T) {
	g := NewGenerator()

	name := schemaOf("string")
	name.Example = "Buddy"
	obj := schemaOf("object")
	obj.Properties = openapi3.Schemas{
		"name": {Value: name},
		"age":  {Value: schemaOf("integer")},
	}

	out := g.Generate(obj)
	require.IsType(t, map[string]any{}, out)
	m := out.(map[string]any)
	assert.Equal(t, "Buddy", m["name"])
	assert.Equal(t, 0, m["age"])
}

func TestGenerateTypelessObjectWithProperties(t *testing.T) {
	g := NewGenerator()

	obj := &openapi3.Schema{
		Properties: openapi3.Schemas{"flag": {Value: schemaOf("boolean")}},
	}
	assert.Equal(t, map[string]any{"flag": true}, g.Generate(obj))
}
