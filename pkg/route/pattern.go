package route

import (
	"fmt"
	"strings"
)

// Segment is a single element of a compiled path pattern.
// Either Param is set (named parameter) or Literal holds the exact text.
type Segment struct {
	// Literal is the exact segment text for literal segments.
	Literal string

	// Param is the parameter name for ":name" segments ("" for literals).
	Param string
}

// Pattern is a compiled path pattern.
type Pattern struct {
	raw      string
	segments []Segment
}

// Compile parses a path pattern like "/pets/:petId" into a Pattern.
// The empty pattern and "/" both compile to the root pattern, which
// matches only the root path. Characters that are regex metacharacters
// in other routers (".", "(", "[", "*", ...) have no special meaning
// here; literal segments are compared by string equality.
func Compile(raw string) (*Pattern, error) {
	segs := SplitPath(raw)
	compiled := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if strings.HasPrefix(s, ":") {
			name := s[1:]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: parameter segment is missing a name", raw)
			}
			compiled = append(compiled, Segment{Param: name})
			continue
		}
		compiled = append(compiled, Segment{Literal: s})
	}
	return &Pattern{raw: raw, segments: compiled}, nil
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Params returns the parameter names in pattern order.
func (p *Pattern) Params() []string {
	var names []string
	for _, s := range p.segments {
		if s.Param != "" {
			names = append(names, s.Param)
		}
	}
	return names
}

// Match checks the pattern against an incoming path and extracts
// parameter values. Parameter values are the original segment text,
// never URL-decoded. A parameter never binds to an empty segment;
// "/users/:id" does not match "/users/" or "/users//x".
func (p *Pattern) Match(path string) (map[string]string, bool) {
	segs := SplitPath(path)
	if len(segs) != len(p.segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, want := range p.segments {
		got := segs[i]
		if want.Param != "" {
			if got == "" {
				return nil, false
			}
			params[want.Param] = got
			continue
		}
		if got != want.Literal {
			return nil, false
		}
	}
	return params, true
}

// SplitPath splits a path into segments, dropping the empty segments
// produced by a leading or trailing slash. The root path ("/" or "")
// yields an empty segment list. Interior empty segments ("/a//b") are
// preserved and will fail to match.
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
