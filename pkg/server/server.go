// Package server exposes a mock instance over HTTP. It is a thin
// translation layer: it parses the incoming request leniently, calls
// the instance's dispatch entry point, and serializes the canonical
// response onto the wire.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mocklet/mocklet/pkg/logging"
	"github.com/mocklet/mocklet/pkg/mocklet"
	"github.com/mocklet/mocklet/pkg/response"
)

// Server serves a mock instance over HTTP.
type Server struct {
	inst *mocklet.Instance
	log  *slog.Logger
	http *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server around the instance.
func New(inst *mocklet.Instance, opts ...Option) *Server {
	s := &Server{inst: inst, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the http.Handler translating requests into dispatch
// calls.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		init := &mocklet.RequestInit{
			Headers: flattenHeaders(r.Header),
			Body:    parseBody(r),
		}
		target := r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		resp := s.inst.Handle(r.Context(), r.Method, target, init)
		writeResponse(w, resp)

		s.log.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", resp.Status,
			"duration", time.Since(start))
	})
}

// ListenAndServe starts serving on addr and blocks until the listener
// fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("mock server listening", "addr", addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// parseBody reads the request body leniently. JSON bodies decode into
// maps and slices; anything else (including malformed JSON) becomes the
// raw string. A body never becomes an error at this boundary.
func parseBody(r *http.Request) any {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err == nil {
		return decoded
	}
	return string(data)
}

// flattenHeaders keeps the first value per header name. Key
// normalization happens inside the engine.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// writeResponse serializes a canonical response onto the wire. String
// and byte bodies are written verbatim; everything else is JSON.
func writeResponse(w http.ResponseWriter, resp *response.Response) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.Status)

	if resp.Body == nil {
		return
	}
	switch body := resp.Body.(type) {
	case string:
		_, _ = io.WriteString(w, body)
	case []byte:
		_, _ = w.Write(body)
	default:
		enc := json.NewEncoder(w)
		if err := enc.Encode(body); err != nil {
			// Headers are already gone; best effort.
			_, _ = io.WriteString(w, fmt.Sprintf("%v", body))
		}
	}
}

// Addr returns the configured listen address, for logs and tests.
func (s *Server) Addr() string {
	if s.http == nil {
		return ""
	}
	return strings.TrimSpace(s.http.Addr)
}
