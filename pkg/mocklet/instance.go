package mocklet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mocklet/mocklet/pkg/history"
	"github.com/mocklet/mocklet/pkg/logging"
	"github.com/mocklet/mocklet/pkg/response"
	"github.com/mocklet/mocklet/pkg/route"
	"github.com/mocklet/mocklet/pkg/state"
)

// Instance is the mock engine facade. It owns the route table, the
// global plugin list, the shared state store, and the request history.
//
// Registries are append-only once live request serving starts; the
// state store is the only cross-request mutable resource.
type Instance struct {
	mu      sync.RWMutex
	table   *route.Table
	plugins []Plugin
	handles map[*route.Route]*RouteHandle

	state   *state.Store
	history *history.Store
	log     *slog.Logger
}

// Option configures an Instance.
type Option func(*options)

type options struct {
	initialState map[string]any
	historyLimit int
	logger       *slog.Logger
}

// WithInitialState seeds the shared state store. ResetState restores
// this snapshot.
func WithInitialState(initial map[string]any) Option {
	return func(o *options) { o.initialState = initial }
}

// WithHistoryLimit bounds the request history log.
func WithHistoryLimit(limit int) Option {
	return func(o *options) { o.historyLimit = limit }
}

// WithLogger sets the operational logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// New creates an empty instance.
func New(opts ...Option) *Instance {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}

	return &Instance{
		table:   route.NewTable(),
		handles: make(map[*route.Route]*RouteHandle),
		state:   state.New(o.initialState),
		history: history.NewStore(o.historyLimit),
		log:     o.logger,
	}
}

// RouteHandle is returned by Register and allows attaching route-scoped
// plugins to the route it wraps.
type RouteHandle struct {
	inst    *Instance
	route   *route.Route
	plugins []Plugin
}

// Route returns the underlying registered route.
func (h *RouteHandle) Route() *route.Route { return h.route }

// Pipe attaches a route-scoped plugin, running its Install hook if
// present. Route-scoped plugins run after all global plugins, in pipe
// order.
func (h *RouteHandle) Pipe(p Plugin) error {
	if err := install(p, h.inst); err != nil {
		return err
	}
	h.inst.mu.Lock()
	h.plugins = append(h.plugins, p)
	h.inst.mu.Unlock()
	return nil
}

// MustPipe is Pipe returning the handle for chaining; it panics on an
// Install error.
func (h *RouteHandle) MustPipe(p Plugin) *RouteHandle {
	if err := h.Pipe(p); err != nil {
		panic(err)
	}
	return h
}

// Register adds a route. The key has the form "METHOD /path/pattern",
// with ":name" segments binding path parameters. The source is a
// literal value, a Func, or a CtxFunc. Routes match in registration
// order; the first registered pattern that matches wins even when a
// more specific pattern was registered later.
func (i *Instance) Register(key string, source any, config ...RouteConfig) (*RouteHandle, error) {
	method, pattern, err := parseRouteKey(key)
	if err != nil {
		return nil, err
	}

	var cfg map[string]any
	if len(config) > 0 && config[0] != nil {
		cfg = config[0]
	}

	r, err := i.table.Register(method, pattern, compileSource(source), cfg)
	if err != nil {
		return nil, err
	}

	h := &RouteHandle{inst: i, route: r}
	i.mu.Lock()
	i.handles[r] = h
	i.mu.Unlock()

	i.log.Debug("route registered", "method", r.Method, "pattern", r.Pattern.String())
	return h, nil
}

// MustRegister is Register panicking on error, for declarative setup.
func (i *Instance) MustRegister(key string, source any, config ...RouteConfig) *RouteHandle {
	h, err := i.Register(key, source, config...)
	if err != nil {
		panic(err)
	}
	return h
}

// Pipe attaches a global plugin, running its Install hook immediately.
// Global plugins process every matched request in attachment order,
// before any route-scoped plugins.
func (i *Instance) Pipe(p Plugin) error {
	if err := install(p, i); err != nil {
		return err
	}
	i.mu.Lock()
	i.plugins = append(i.plugins, p)
	i.mu.Unlock()

	i.log.Debug("plugin attached", "plugin", p.Name(), "version", p.Version())
	return nil
}

// MustPipe is Pipe returning the instance for chaining; it panics on an
// Install error.
func (i *Instance) MustPipe(p Plugin) *Instance {
	if err := i.Pipe(p); err != nil {
		panic(err)
	}
	return i
}

func install(p Plugin, inst *Instance) error {
	installer, ok := p.(Installer)
	if !ok {
		return nil
	}
	if err := installer.Install(inst); err != nil {
		return fmt.Errorf("plugin %s install failed: %w", p.Name(), err)
	}
	return nil
}

// State returns the shared state store.
func (i *Instance) State() *state.Store { return i.state }

// History returns the request history log.
func (i *Instance) History() *history.Store { return i.history }

// Routes returns the registered routes in registration order.
func (i *Instance) Routes() []*route.Route { return i.table.Routes() }

// ResetState restores the shared state to its initial snapshot. Routes,
// plugins, and history are untouched.
func (i *Instance) ResetState() {
	i.state.Reset()
}

// Handle dispatches a request and always returns a well-formed
// response; it never returns an error. Route misses become a 404 with
// the ROUTE_NOT_FOUND code, generator and plugin failures become 500s.
func (i *Instance) Handle(ctx context.Context, method, target string, init *RequestInit) (resp *response.Response) {
	path, rawQuery := splitTarget(target)
	method = strings.ToUpper(strings.TrimSpace(method))

	entry := &history.Entry{Method: method, Path: path}
	defer func() {
		if r := recover(); r != nil {
			resp = i.errorResponse(fmt.Errorf("panic: %v", r))
		}
		entry.Status = resp.Status
		i.history.Record(entry)
	}()

	m, ok := i.table.Lookup(method, path)
	if !ok {
		i.log.Debug("no route matched", "method", method, "path", path)
		return notFoundResponse(method, path)
	}
	entry.Matched = true
	entry.RouteKey = m.Route.Key()

	rc := i.newContext(method, path, rawQuery, init, m)

	src, _ := m.Route.Source.(compiledSource)
	raw, err := src.invoke(ctx, rc)
	if err != nil {
		i.log.Debug("generator failed", "route", m.Route.Key(), "error", err)
		return i.errorResponse(err)
	}

	raw, err = runPipeline(ctx, i.pipelineFor(m.Route), rc, raw)
	if err != nil {
		i.log.Debug("plugin failed", "route", m.Route.Key(), "error", err)
		return i.errorResponse(err)
	}

	contentType, _ := rc.Config["contentType"].(string)
	return response.Normalize(raw, contentType)
}

// newContext builds the per-request context.
func (i *Instance) newContext(method, path, rawQuery string, init *RequestInit, m *route.Match) *RequestContext {
	if init == nil {
		init = &RequestInit{}
	}
	return &RequestContext{
		Method:     method,
		Path:       path,
		Params:     m.Params,
		Query:      parseQuery(rawQuery, init.Query),
		Headers:    lowerHeaders(init.Headers),
		Body:       init.Body,
		State:      i.state,
		RouteState: i.state.Namespace("route:" + m.Route.Key()),
		Config:     RouteConfig(m.Route.Config),
		Values:     make(map[string]any),
	}
}

// pipelineFor snapshots the plugin order for a route: globals in
// attachment order, then the route's own plugins in pipe order.
func (i *Instance) pipelineFor(r *route.Route) []Plugin {
	i.mu.RLock()
	defer i.mu.RUnlock()

	h := i.handles[r]
	plugins := make([]Plugin, 0, len(i.plugins)+len(h.plugins))
	plugins = append(plugins, i.plugins...)
	plugins = append(plugins, h.plugins...)
	return plugins
}

// notFoundResponse builds the sentinel 404 for unmatched routes.
func notFoundResponse(method, path string) *response.Response {
	body := map[string]any{
		"error": fmt.Sprintf("Route not found: %s %s", method, path),
		"code":  CodeRouteNotFound,
	}
	return response.New(404, body).
		WithHeader(response.HeaderContentType, response.ContentTypeJSON)
}

// errorResponse converts a generator or plugin failure into a 500. The
// message is exposed; a structured code is copied when the error
// carries one. Stacks are never exposed to the caller.
func (i *Instance) errorResponse(err error) *response.Response {
	body := map[string]any{"error": err.Error()}
	var c coder
	if errors.As(err, &c) && c.ErrorCode() != "" {
		body["code"] = c.ErrorCode()
	}
	return response.New(500, body).
		WithHeader(response.HeaderContentType, response.ContentTypeJSON)
}

// parseRouteKey splits a "METHOD /path" route key.
func parseRouteKey(key string) (method, pattern string, err error) {
	parts := strings.Fields(strings.TrimSpace(key))
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid route key %q: want \"METHOD /path\"", key)
	}
	return parts[0], parts[1], nil
}
