package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a build phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// PhaseFailed is PhaseEnd for a phase that produced errors.
	PhaseFailed
)

// Phase names reported to a PhaseObserver.
const (
	PhaseLex      = "lex"
	PhaseRegister = "register"
	PhaseCompose  = "compose"
	PhaseValidate = "validate"
)

// PhaseEvent describes a timing phase boundary. Path is the host file the
// event belongs to, empty for build-wide events.
type PhaseEvent struct {
	Name    string
	Path    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Build. It may be
// called from several goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(name, path string, status PhaseStatus, elapsed time.Duration) {
	if o == nil {
		return
	}
	o(PhaseEvent{Name: name, Path: path, Status: status, Elapsed: elapsed})
}
