package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeShader, false},
		{LevelDetail, ScopeShader, true},
		{LevelDetail, ScopeStep, false},
		{LevelDebug, ScopeStep, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Format: FormatText, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	root := Begin(tr, ScopePass, "compose", 0)
	sh := Begin(tr, ScopeShader, "shader:MAIN", root.ID())
	sh.WithExtra("pastes", "2").WithExtra("bytes", "120").End("ok")
	Begin(tr, ScopeStep, "paste:sin_cos", sh.ID()).End("")
	root.End("")

	out := buf.String()
	if strings.Contains(out, "paste:sin_cos") {
		t.Error("step span emitted at detail level")
	}
	if !strings.Contains(out, "← shader:MAIN (ok) {bytes=120, pastes=2}") {
		t.Errorf("missing shader end line:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Errorf("got %d lines:\n%s", got, out)
	}
}

func TestFailEmittedAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)
	Begin(tr, ScopeDriver, "build", 0).End("")
	Fail(tr, ScopeShader, "validate", errors.New("boom"), 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d events: %q", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "error" || ev["detail"] != "boom" {
		t.Errorf("event = %v", ev)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("empty context should give Nop")
	}
	tr := NewStreamTracer(&bytes.Buffer{}, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != tr {
		t.Error("tracer lost in context")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Error("span context lost")
	}
}

func TestNopSpan(t *testing.T) {
	s := Begin(Nop, ScopeDriver, "x", 0)
	if s.ID() != 0 || s.End("") != 0 {
		t.Error("nop span should be inert")
	}
}

func TestShaderLabelPropagates(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "compose")
	sctx, sh := StartShader(ctx, "SIN_COS")
	_, step := Start(sctx, ScopeStep, "resolve")
	step.End("")
	FailCtx(sctx, ScopeStep, "validate", errors.New("bad"))
	sh.End("")
	pass.End("")

	if CurrentSpan(sctx).Shader != "SIN_COS" || CurrentSpan(ctx).Shader != "" {
		t.Fatalf("label leaked: %+v / %+v", CurrentSpan(sctx), CurrentSpan(ctx))
	}
	var labelled int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev struct {
			Name     string `json:"name"`
			Shader   string `json:"shader"`
			ParentID uint64 `json:"parent_id"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Name == "compose" && ev.Shader != "" {
			t.Errorf("pass span labelled %q", ev.Shader)
		}
		if ev.Shader == "SIN_COS" {
			labelled++
		}
		if ev.Name == "resolve" && ev.ParentID != sh.ID() {
			t.Errorf("resolve parent = %d, want %d", ev.ParentID, sh.ID())
		}
	}
	// shader begin/end, resolve begin/end, validate failure
	if labelled != 5 {
		t.Errorf("labelled events = %d, want 5\n%s", labelled, buf.String())
	}
}

func TestStartWithoutTracer(t *testing.T) {
	ctx, s := Start(context.Background(), ScopeDriver, "build")
	if s.ID() != 0 || CurrentSpan(ctx).SpanID != 0 {
		t.Error("span opened without a tracer")
	}
	PointCtx(ctx, ScopeStep, "x", "")
	FailCtx(ctx, ScopeStep, "x", nil)
}
