package trace

import "context"

type ctxKey struct{}

// FromContext returns the tracer of ctx, Nop when there is none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; nil means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is the innermost open span and the shader it belongs to.
type SpanContext struct {
	SpanID uint64
	Shader string
}

type spanCtxKey struct{}

func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// Start opens a span under the current one and returns a context in which it
// is current. The shader label is inherited.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	s := begin(FromContext(ctx), scope, name, parent.SpanID, parent.Shader)
	if s.id == 0 {
		return ctx, s
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, Shader: parent.Shader}), s
}

// StartShader opens a ScopeShader span labelled with the shader name; every
// event below it carries the label.
func StartShader(ctx context.Context, shader string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	s := begin(FromContext(ctx), ScopeShader, shader, parent.SpanID, shader)
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, Shader: shader}), s
}

// PointCtx emits an instant event under the current span of ctx.
func PointCtx(ctx context.Context, scope Scope, name, detail string) {
	sc := CurrentSpan(ctx)
	point(FromContext(ctx), KindPoint, scope, name, detail, sc.SpanID, sc.Shader)
}

// FailCtx records err under the current span of ctx.
func FailCtx(ctx context.Context, scope Scope, name string, err error) {
	if err == nil {
		return
	}
	sc := CurrentSpan(ctx)
	point(FromContext(ctx), KindError, scope, name, err.Error(), sc.SpanID, sc.Shader)
}
