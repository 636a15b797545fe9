package route

import (
	"fmt"
	"strings"
	"sync"
)

// Route is a registered route definition. Immutable after registration.
type Route struct {
	// Method is the HTTP method, uppercased at registration.
	Method string

	// Pattern is the compiled path pattern.
	Pattern *Pattern

	// Source produces the raw response when the route is hit. It is a
	// literal value or one of the generator function shapes understood
	// by the invoker; the table itself never inspects it.
	Source any

	// Config is arbitrary route-scoped metadata consumed by plugins.
	Config map[string]any
}

// Key returns the canonical "METHOD /pattern" form of the route.
func (r *Route) Key() string {
	return r.Method + " " + r.Pattern.String()
}

// Match is a successful lookup result.
type Match struct {
	Route  *Route
	Params map[string]string
}

// Table stores routes in registration order.
//
// Lookup scans the list front to back and returns on the first route
// whose method and pattern both match. There is no specificity scoring:
// registering "GET /:type/items" before "GET /shop/:category" means the
// former wins for "GET /shop/items".
type Table struct {
	mu     sync.RWMutex
	routes []*Route
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{}
}

// Register compiles the pattern and appends the route.
func (t *Table) Register(method, pattern string, source any, config map[string]any) (*Route, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil, fmt.Errorf("route method cannot be empty")
	}

	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	r := &Route{
		Method:  method,
		Pattern: p,
		Source:  source,
		Config:  config,
	}

	t.mu.Lock()
	t.routes = append(t.routes, r)
	t.mu.Unlock()
	return r, nil
}

// Lookup resolves a method and path to the first matching route.
// No match is a normal outcome, reported via ok=false, never an error.
func (t *Table) Lookup(method, path string) (*Match, bool) {
	method = strings.ToUpper(method)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.routes {
		if r.Method != method {
			continue
		}
		params, ok := r.Pattern.Match(path)
		if !ok {
			continue
		}
		return &Match{Route: r, Params: params}, true
	}
	return nil, false
}

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
