package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocklet/mocklet/pkg/mocklet"
)

func newPetInstance(t *testing.T, seed []map[string]any) *mocklet.Instance {
	t.Helper()
	inst := mocklet.New()
	plugin := New(Resource{Name: "pets", BasePath: "/pets", Seed: seed})
	require.NoError(t, inst.Pipe(plugin))
	return inst
}

func TestCRUDLifecycle(t *testing.T) {
	inst := newPetInstance(t, nil)
	ctx := context.Background()

	// Empty list to start.
	resp := inst.Handle(ctx, "GET", "/pets", nil)
	require.Equal(t, 200, resp.Status)
	assert.Empty(t, resp.Body)

	// Create assigns an auto-incrementing ID at 201.
	resp = inst.Handle(ctx, "POST", "/pets", &mocklet.RequestInit{Body: map[string]any{"name": "Buddy"}})
	require.Equal(t, 201, resp.Status)
	created := resp.Body.(map[string]any)
	assert.Equal(t, 1, created["id"])
	assert.Equal(t, "Buddy", created["name"])

	resp = inst.Handle(ctx, "POST", "/pets", &mocklet.RequestInit{Body: map[string]any{"name": "Rex"}})
	require.Equal(t, 201, resp.Status)
	assert.Equal(t, 2, resp.Body.(map[string]any)["id"])

	// Get by ID.
	resp = inst.Handle(ctx, "GET", "/pets/1", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "Buddy", resp.Body.(map[string]any)["name"])

	// Update merges fields, keeping the ID.
	resp = inst.Handle(ctx, "PUT", "/pets/1", &mocklet.RequestInit{Body: map[string]any{"name": "Buddy II", "id": 99}})
	require.Equal(t, 200, resp.Status)
	updated := resp.Body.(map[string]any)
	assert.Equal(t, "Buddy II", updated["name"])
	assert.Equal(t, 1, updated["id"], "the ID field cannot be overwritten")

	// List is sorted by ID.
	resp = inst.Handle(ctx, "GET", "/pets", nil)
	items := resp.Body.([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Buddy II", items[0]["name"])

	// Delete returns a bodyless 204, then the item is gone.
	resp = inst.Handle(ctx, "DELETE", "/pets/1", nil)
	assert.Equal(t, 204, resp.Status)
	assert.Nil(t, resp.Body)

	resp = inst.Handle(ctx, "GET", "/pets/1", nil)
	require.Equal(t, 404, resp.Status)
	assert.Equal(t, CodeNotFound, resp.Body.(map[string]any)["code"])
}

func TestCRUDMissingItems(t *testing.T) {
	inst := newPetInstance(t, nil)
	ctx := context.Background()

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		init := &mocklet.RequestInit{}
		if method == "PUT" {
			init.Body = map[string]any{"name": "x"}
		}
		resp := inst.Handle(ctx, method, "/pets/404", init)
		require.Equal(t, 404, resp.Status, method)
		assert.Equal(t, CodeNotFound, resp.Body.(map[string]any)["code"], method)
	}
}

func TestCRUDRejectsNonObjectBodies(t *testing.T) {
	inst := newPetInstance(t, nil)

	resp := inst.Handle(context.Background(), "POST", "/pets", &mocklet.RequestInit{Body: "not an object"})
	require.Equal(t, 400, resp.Status)
	assert.Equal(t, "INVALID_BODY", resp.Body.(map[string]any)["code"])
}

func TestCRUDSeedData(t *testing.T) {
	inst := newPetInstance(t, []map[string]any{
		{"id": 1, "name": "Buddy"},
		{"name": "NoID"},
	})

	resp := inst.Handle(context.Background(), "GET", "/pets/1", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "Buddy", resp.Body.(map[string]any)["name"])

	// Seed items without an ID get one assigned past the explicit IDs.
	resp = inst.Handle(context.Background(), "GET", "/pets", nil)
	items := resp.Body.([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, "NoID", items[1]["name"])
	assert.Equal(t, 2, items[1]["id"])
}

func TestCRUDSeedIDAssignmentIsOrderIndependent(t *testing.T) {
	// The ID-less item comes first, so a naive sequence would hand it
	// the same ID the explicit item claims.
	inst := newPetInstance(t, []map[string]any{
		{"name": "NoID"},
		{"id": 1, "name": "Buddy"},
	})

	resp := inst.Handle(context.Background(), "GET", "/pets", nil)
	items := resp.Body.([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Buddy", items[0]["name"])
	assert.Equal(t, "NoID", items[1]["name"])
	assert.Equal(t, 2, items[1]["id"])
}

func TestCRUDCreateNeverOverwritesSeededItems(t *testing.T) {
	inst := newPetInstance(t, []map[string]any{
		{"id": 1, "name": "Buddy"},
	})
	ctx := context.Background()

	resp := inst.Handle(ctx, "POST", "/pets", &mocklet.RequestInit{Body: map[string]any{"name": "New"}})
	require.Equal(t, 201, resp.Status)
	assert.Equal(t, 2, resp.Body.(map[string]any)["id"])

	resp = inst.Handle(ctx, "GET", "/pets", nil)
	items := resp.Body.([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Buddy", items[0]["name"])
	assert.Equal(t, "New", items[1]["name"])
}

func TestCRUDStateResetsWithInstance(t *testing.T) {
	inst := newPetInstance(t, nil)
	ctx := context.Background()

	inst.Handle(ctx, "POST", "/pets", &mocklet.RequestInit{Body: map[string]any{"name": "Buddy"}})
	inst.ResetState()

	resp := inst.Handle(ctx, "GET", "/pets", nil)
	assert.Empty(t, resp.Body)

	// The sequence restarts too.
	resp = inst.Handle(ctx, "POST", "/pets", &mocklet.RequestInit{Body: map[string]any{"name": "Rex"}})
	assert.Equal(t, 1, resp.Body.(map[string]any)["id"])
}

func TestInstallValidation(t *testing.T) {
	inst := mocklet.New()

	err := inst.Pipe(New(Resource{Name: "", BasePath: "/x"}))
	assert.Error(t, err)

	err = inst.Pipe(New(Resource{Name: "x", BasePath: "no-slash"}))
	assert.Error(t, err)
}
