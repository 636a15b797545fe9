// Package config loads route definitions from YAML or JSON files and
// applies them to a mock instance.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrEmptyFile    = errors.New("configuration file is empty")
	ErrInvalidJSON  = errors.New("invalid JSON syntax")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
)

// RouteFile is a declarative set of routes and CRUD resources.
type RouteFile struct {
	// Version is the file format version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Name is a human-readable name for the set.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Routes are static route definitions.
	Routes []*RouteDef `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Resources are CRUD collections to install.
	Resources []*ResourceDef `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// RouteDef declares one route.
type RouteDef struct {
	// Route is the "METHOD /path" key.
	Route string `json:"route" yaml:"route"`

	// Status, when set, produces an explicit tuple response; the
	// normalizer's smart defaults are bypassed. A definition with a
	// status but no body responds with an empty body at that status;
	// declaring 204 keeps the response bodyless.
	Status int `json:"status,omitempty" yaml:"status,omitempty"`

	// Body is the response body.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Headers are explicit response headers; setting them also forces
	// tuple form.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// ContentType overrides the inferred content type for smart-default
	// responses.
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`

	// Config is extra route config merged into the registration,
	// e.g. a "validation:schema" entry.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ResourceDef declares one CRUD collection.
type ResourceDef struct {
	Name     string           `json:"name" yaml:"name"`
	BasePath string           `json:"basePath" yaml:"basePath"`
	IDField  string           `json:"idField,omitempty" yaml:"idField,omitempty"`
	Seed     []map[string]any `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Load reads a RouteFile from disk. The format is detected from the
// extension: .yaml/.yml parse as YAML, everything else as JSON.
func Load(path string) (*RouteFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseYAML parses YAML route-file data.
func ParseYAML(data []byte) (*RouteFile, error) {
	var rf RouteFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := validate(&rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

// ParseJSON parses JSON route-file data.
func ParseJSON(data []byte) (*RouteFile, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var rf RouteFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := validate(&rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

// validate checks structural requirements before anything is applied.
func validate(rf *RouteFile) error {
	for i, def := range rf.Routes {
		if def == nil || strings.TrimSpace(def.Route) == "" {
			return fmt.Errorf("routes[%d]: missing route key", i)
		}
		if len(strings.Fields(def.Route)) != 2 {
			return fmt.Errorf("routes[%d]: route %q must have the form \"METHOD /path\"", i, def.Route)
		}
	}
	for i, res := range rf.Resources {
		if res == nil || res.Name == "" {
			return fmt.Errorf("resources[%d]: missing name", i)
		}
		if !strings.HasPrefix(res.BasePath, "/") {
			return fmt.Errorf("resources[%d]: basePath must start with /", i)
		}
	}
	return nil
}
