// Package crud provides a plugin that simulates a persistent REST
// collection on top of the instance's shared state.
//
// Installing the plugin registers list/create/get/update/delete routes
// under the resource's base path. Items live in the shared state under a
// namespaced key, so they persist across requests and disappear on
// ResetState. IDs are auto-incrementing integers assigned at create
// time.
package crud

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mocklet/mocklet/pkg/mocklet"
	"github.com/mocklet/mocklet/pkg/state"
)

// CodeNotFound is the error code returned for missing items.
const CodeNotFound = "NOT_FOUND"

// Resource describes a simulated collection.
type Resource struct {
	// Name identifies the collection and namespaces its state.
	Name string

	// BasePath is the collection URL, e.g. "/pets". Item routes hang
	// off it as BasePath/:id.
	BasePath string

	// IDField is the item field holding the ID. Defaults to "id".
	IDField string

	// Seed is loaded into the collection at install time. Items without
	// an ID get one assigned.
	Seed []map[string]any
}

// Plugin installs CRUD routes for one resource. Its Process step is a
// pass-through; all behavior lives in the routes registered at install
// time.
type Plugin struct {
	res Resource
}

// New creates a CRUD plugin for the resource.
func New(res Resource) *Plugin {
	if res.IDField == "" {
		res.IDField = "id"
	}
	return &Plugin{res: res}
}

// Name implements mocklet.Plugin.
func (p *Plugin) Name() string { return "crud:" + p.res.Name }

// Version implements mocklet.Plugin.
func (p *Plugin) Version() string { return "1.0.0" }

// Process implements mocklet.Plugin as a no-op participant.
func (p *Plugin) Process(_ context.Context, _ *mocklet.RequestContext, result any) (any, error) {
	return result, nil
}

// Install registers the collection routes and loads seed data.
func (p *Plugin) Install(inst *mocklet.Instance) error {
	if p.res.Name == "" {
		return fmt.Errorf("crud resource name cannot be empty")
	}
	if p.res.BasePath == "" || p.res.BasePath[0] != '/' {
		return fmt.Errorf("crud resource %q: basePath must start with /", p.res.Name)
	}

	p.loadSeed(inst.State())

	base := p.res.BasePath
	item := base + "/:" + paramName

	registrations := []struct {
		key    string
		source mocklet.Func
	}{
		{"GET " + base, p.list},
		{"POST " + base, p.create},
		{"GET " + item, p.get},
		{"PUT " + item, p.update},
		{"DELETE " + item, p.remove},
	}
	for _, reg := range registrations {
		if _, err := inst.Register(reg.key, reg.source); err != nil {
			return fmt.Errorf("crud resource %q: %w", p.res.Name, err)
		}
	}
	return nil
}

// paramName is the path parameter used by item routes.
const paramName = "itemId"

func (p *Plugin) ns(s *state.Store) *state.Namespace {
	return s.Namespace("crud:" + p.res.Name)
}

// loadSeed inserts seed items, assigning IDs where missing. The
// sequence counter is advanced past the highest explicit numeric seed
// ID before any ID is generated, so generated IDs never collide with
// seeded ones regardless of seed order. IDs are drawn before the items
// update; Update holds the store lock, so no nested state calls may
// happen inside its callback.
func (p *Plugin) loadSeed(s *state.Store) {
	ns := p.ns(s)

	seeded := make(map[string]map[string]any, len(p.res.Seed))
	var pending []map[string]any
	maxID := 0
	for _, seed := range p.res.Seed {
		itemCopy := copyItem(seed)
		id := itemCopy[p.res.IDField]
		if id == nil {
			pending = append(pending, itemCopy)
			continue
		}
		if n, ok := numericID(id); ok && n > maxID {
			maxID = n
		}
		seeded[fmt.Sprint(id)] = itemCopy
	}

	ns.Update("seq", func(current any, ok bool) any {
		seq, _ := current.(int)
		if maxID > seq {
			return maxID
		}
		return seq
	})

	for _, itemCopy := range pending {
		id := p.nextID(ns)
		itemCopy[p.res.IDField] = id
		seeded[fmt.Sprint(id)] = itemCopy
	}

	ns.Update("items", func(current any, ok bool) any {
		items, _ := current.(map[string]map[string]any)
		if items == nil {
			items = make(map[string]map[string]any)
		}
		for id, item := range seeded {
			items[id] = item
		}
		return items
	})
}

// nextID increments the collection's sequence counter.
func (p *Plugin) nextID(ns *state.Namespace) int {
	next := ns.Update("seq", func(current any, ok bool) any {
		seq, _ := current.(int)
		return seq + 1
	})
	return next.(int)
}

// numericID extracts an integer from an explicit item ID, accepting the
// int and float64 shapes YAML and JSON decoders produce.
func numericID(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.Trunc(n) == n {
			return int(n), true
		}
	}
	return 0, false
}

func (p *Plugin) items(ns *state.Namespace) map[string]map[string]any {
	v, _ := ns.Get("items")
	items, _ := v.(map[string]map[string]any)
	if items == nil {
		items = make(map[string]map[string]any)
	}
	return items
}

// list returns all items, sorted by ID for deterministic output.
func (p *Plugin) list(rc *mocklet.RequestContext) (any, error) {
	items := p.items(p.ns(rc.State))
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]map[string]any, 0, len(items))
	for _, id := range ids {
		out = append(out, items[id])
	}
	return out, nil
}

// create inserts the request body as a new item at status 201.
func (p *Plugin) create(rc *mocklet.RequestContext) (any, error) {
	body, ok := rc.Body.(map[string]any)
	if !ok {
		return []any{400, map[string]any{
			"error": "request body must be an object",
			"code":  "INVALID_BODY",
		}}, nil
	}

	ns := p.ns(rc.State)
	itemCopy := copyItem(body)

	// The sequence is kept ahead of seeded IDs at install time; a taken
	// slot is still skipped rather than overwritten.
	id := p.nextID(ns)
	for {
		if _, taken := p.items(ns)[fmt.Sprint(id)]; !taken {
			break
		}
		id = p.nextID(ns)
	}
	itemCopy[p.res.IDField] = id

	ns.Update("items", func(current any, ok bool) any {
		items, _ := current.(map[string]map[string]any)
		if items == nil {
			items = make(map[string]map[string]any)
		}
		items[fmt.Sprint(id)] = itemCopy
		return items
	})
	return []any{201, itemCopy}, nil
}

// get returns a single item or the NOT_FOUND sentinel body.
func (p *Plugin) get(rc *mocklet.RequestContext) (any, error) {
	item, ok := p.items(p.ns(rc.State))[rc.Params[paramName]]
	if !ok {
		return notFound(), nil
	}
	return item, nil
}

// update merges the request body over an existing item.
func (p *Plugin) update(rc *mocklet.RequestContext) (any, error) {
	body, ok := rc.Body.(map[string]any)
	if !ok {
		return []any{400, map[string]any{
			"error": "request body must be an object",
			"code":  "INVALID_BODY",
		}}, nil
	}

	id := rc.Params[paramName]
	var updated map[string]any
	found := false

	p.ns(rc.State).Update("items", func(current any, ok bool) any {
		items, _ := current.(map[string]map[string]any)
		if items == nil {
			items = make(map[string]map[string]any)
		}
		existing, exists := items[id]
		if !exists {
			return items
		}
		found = true
		for k, v := range body {
			if k == p.res.IDField {
				continue
			}
			existing[k] = v
		}
		updated = existing
		return items
	})

	if !found {
		return notFound(), nil
	}
	return updated, nil
}

// remove deletes an item, returning a bodyless 204 or NOT_FOUND.
func (p *Plugin) remove(rc *mocklet.RequestContext) (any, error) {
	id := rc.Params[paramName]
	found := false

	p.ns(rc.State).Update("items", func(current any, ok bool) any {
		items, _ := current.(map[string]map[string]any)
		if items == nil {
			return items
		}
		if _, exists := items[id]; exists {
			found = true
			delete(items, id)
		}
		return items
	})

	if !found {
		return notFound(), nil
	}
	return nil, nil
}

func notFound() []any {
	return []any{404, map[string]any{"error": "Not found", "code": CodeNotFound}}
}

func copyItem(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
