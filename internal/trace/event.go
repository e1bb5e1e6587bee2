package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	// KindError reports a failure; emitted at every level but LevelOff.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeDriver: a whole command (build, check, watch cycle).
	ScopeDriver Scope = iota + 1
	// ScopePass: a build stage (lex, register, compose, validate, emit).
	ScopePass
	// ScopeShader: one file or one shader inside a stage.
	ScopeShader
	// ScopeStep: fixed-point iterations and single pastes.
	ScopeStep
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeShader:
		return "shader"
	case ScopeStep:
		return "step"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global sequence number (monotonic)
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 if root
	Shader   string // shader being composed, empty outside one
	Name     string // e.g. "compose", "shader:SIN_COS"
	Detail   string
	Extra    map[string]string
}
