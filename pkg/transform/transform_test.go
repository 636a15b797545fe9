package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocklet/mocklet/pkg/mocklet"
)

// Extracted values land in the context values and are visible to the
// response expressions of the same Process run.
func TestExtractInjectsValues(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("POST /orders", func(rc *mocklet.RequestContext) (any, error) {
		return map[string]any{"received": true}, nil
	}, mocklet.RouteConfig{
		ExtractKey:  map[string]string{"firstItem": "$.items[0].sku"},
		ResponseKey: map[string]string{"firstItem": `values.firstItem`},
	})

	resp := inst.Handle(context.Background(), "POST", "/orders", &mocklet.RequestInit{
		Body: map[string]any{
			"items": []any{
				map[string]any{"sku": "A-1"},
				map[string]any{"sku": "B-2"},
			},
		},
	})
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "A-1", resp.Body.(map[string]any)["firstItem"])
}

func TestExtractNoMatchLeavesValueUnset(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("POST /orders", func(rc *mocklet.RequestContext) (any, error) {
		return map[string]any{}, nil
	}, mocklet.RouteConfig{
		ExtractKey:  map[string]string{"missing": "$.nope"},
		ResponseKey: map[string]string{"present": `"missing" in values`},
	})

	resp := inst.Handle(context.Background(), "POST", "/orders", &mocklet.RequestInit{
		Body: map[string]any{"items": []any{}},
	})
	assert.Equal(t, false, resp.Body.(map[string]any)["present"])
}

func TestResponseTransformWritesFields(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("GET /pets/:id", map[string]any{"name": "Buddy"}, mocklet.RouteConfig{
		ResponseKey: map[string]string{
			"id":    `params.id`,
			"label": `response.name + " (" + params.id + ")"`,
		},
	})

	resp := inst.Handle(context.Background(), "GET", "/pets/7", nil)
	require.Equal(t, 200, resp.Status)
	body := resp.Body.(map[string]any)
	assert.Equal(t, "7", body["id"])
	assert.Equal(t, "Buddy (7)", body["label"])
}

func TestResponseTransformReachesTupleBodies(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("POST /pets", func(rc *mocklet.RequestContext) (any, error) {
		return []any{201, map[string]any{"name": "Rex"}}, nil
	}, mocklet.RouteConfig{
		ResponseKey: map[string]string{"echo": `body.tag`},
	})

	resp := inst.Handle(context.Background(), "POST", "/pets", &mocklet.RequestInit{
		Body: map[string]any{"tag": "t-9"},
	})
	require.Equal(t, 201, resp.Status)
	assert.Equal(t, "t-9", resp.Body.(map[string]any)["echo"])
}

// A plain array result is not a tuple even when its second element is
// an object; the transform must not reach into it.
func TestResponseTransformLeavesPlainArraysAlone(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("GET /list", func(rc *mocklet.RequestContext) (any, error) {
		return []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}, nil
	}, mocklet.RouteConfig{
		ResponseKey: map[string]string{"x": `1`},
	})

	resp := inst.Handle(context.Background(), "GET", "/list", nil)
	require.Equal(t, 200, resp.Status)
	list := resp.Body.([]any)
	require.Len(t, list, 2)
	assert.NotContains(t, list[1].(map[string]any), "x")
}

func TestResponseTransformSkipsNonObjectBodies(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("GET /plain", "just text", mocklet.RouteConfig{
		ResponseKey: map[string]string{"x": `1`},
	})

	resp := inst.Handle(context.Background(), "GET", "/plain", nil)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "just text", resp.Body)
}

func TestInvalidJSONPathIsAnError(t *testing.T) {
	inst := mocklet.New()
	require.NoError(t, inst.Pipe(New()))

	inst.MustRegister("POST /orders", "ok", mocklet.RouteConfig{
		ExtractKey: map[string]string{"x": "$[unclosed"},
	})

	resp := inst.Handle(context.Background(), "POST", "/orders", &mocklet.RequestInit{
		Body: map[string]any{},
	})
	assert.Equal(t, 500, resp.Status)
}

func TestProgramCacheReusesCompiledExpressions(t *testing.T) {
	p := New()
	env := map[string]any{"params": map[string]string{}}

	_, err := p.run(`1 + 1`, env)
	require.NoError(t, err)
	require.Len(t, p.programs, 1)

	out, err := p.run(`1 + 1`, env)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
	assert.Len(t, p.programs, 1)
}

func TestStringMapCoercion(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "b"}, stringMap(map[string]string{"a": "b"}))
	assert.Equal(t, map[string]string{"a": "b"}, stringMap(map[string]any{"a": "b", "n": 1}))
	assert.Nil(t, stringMap(nil))
	assert.Nil(t, stringMap("not a map"))
}
