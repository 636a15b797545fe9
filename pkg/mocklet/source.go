package mocklet

import "context"

// Func is a synchronous generator: it receives the request context and
// produces a raw result that the normalizer turns into a response.
type Func func(rc *RequestContext) (any, error)

// CtxFunc is a context-aware generator for sources that perform
// cancellable work. Both shapes run through the same invocation path.
type CtxFunc func(ctx context.Context, rc *RequestContext) (any, error)

// sourceKind tags the variants of a compiled source.
type sourceKind int

const (
	sourceLiteral sourceKind = iota
	sourceFunc
	sourceCtxFunc
)

// compiledSource is the tagged union a registered source is normalized
// into. Literals behave like zero-argument generators returning
// themselves, so call sites never branch on source shape.
type compiledSource struct {
	kind    sourceKind
	literal any
	fn      Func
	ctxFn   CtxFunc
}

// compileSource classifies a registered source. The two generator
// function shapes are recognized whether passed as named types or plain
// function literals; everything else is a literal value.
func compileSource(src any) compiledSource {
	switch fn := src.(type) {
	case Func:
		return compiledSource{kind: sourceFunc, fn: fn}
	case func(rc *RequestContext) (any, error):
		return compiledSource{kind: sourceFunc, fn: fn}
	case CtxFunc:
		return compiledSource{kind: sourceCtxFunc, ctxFn: fn}
	case func(ctx context.Context, rc *RequestContext) (any, error):
		return compiledSource{kind: sourceCtxFunc, ctxFn: fn}
	default:
		return compiledSource{kind: sourceLiteral, literal: src}
	}
}

// invoke produces the raw result. No retries: a generator error
// propagates to the facade's single catch tier, which converts it into
// a 500 response.
func (s compiledSource) invoke(ctx context.Context, rc *RequestContext) (any, error) {
	switch s.kind {
	case sourceFunc:
		return s.fn(rc)
	case sourceCtxFunc:
		return s.ctxFn(ctx, rc)
	default:
		return s.literal, nil
	}
}
