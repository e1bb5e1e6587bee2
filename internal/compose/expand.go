package compose

import (
	"fmt"

	"wgslln/internal/source"
	"wgslln/internal/token"
)

// Fragments resolves fragment names to their registered bodies.
type Fragments interface {
	Lookup(name string) ([]token.Token, bool)
}

// FragmentsFunc adapts a function to Fragments.
type FragmentsFunc func(name string) ([]token.Token, bool)

func (f FragmentsFunc) Lookup(name string) ([]token.Token, bool) { return f(name) }

// UnknownFragmentError is a reference to a name nobody registered.
type UnknownFragmentError struct {
	Name string
	Span source.Span
}

func (e *UnknownFragmentError) Error() string {
	return fmt.Sprintf("unknown fragment %q", e.Name)
}

// Pending is the ordered set of fragments already pasted into one
// composition. It only grows.
type Pending struct {
	names []string
	set   map[string]struct{}
}

func NewPending() *Pending {
	return &Pending{set: make(map[string]struct{})}
}

// Add inserts name; false if it was already there.
func (p *Pending) Add(name string) bool {
	if _, ok := p.set[name]; ok {
		return false
	}
	p.set[name] = struct{}{}
	p.names = append(p.names, name)
	return true
}

func (p *Pending) Has(name string) bool {
	_, ok := p.set[name]
	return ok
}

// Names returns the names in paste order.
func (p *Pending) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *Pending) Len() int {
	return len(p.names)
}

// Expand pastes the body of ref in front of seq, unless it is already
// pending, in which case seq is returned unchanged.
func Expand(seq []token.Token, ref Ref, pending *Pending, frags Fragments) ([]token.Token, error) {
	if pending.Has(ref.Name) {
		return seq, nil
	}
	body, ok := frags.Lookup(ref.Name)
	if !ok {
		return nil, &UnknownFragmentError{Name: ref.Name, Span: ref.Span}
	}
	out := make([]token.Token, 0, len(body)+len(seq))
	out = append(out, token.Clone(body)...)
	out = append(out, seq...)
	pending.Add(ref.Name)
	return out, nil
}

// Resolve runs Scan and Expand until no reference is left. Every reachable
// fragment is pasted once, in first-discovered order; a cycle ends at the
// second visit of a name. Names in seed count as already pasted (a fragment
// being composed never pastes itself).
func Resolve(seq []token.Token, frags Fragments, opts Options, seed ...string) ([]token.Token, *Pending, error) {
	pending := NewPending()
	for _, name := range seed {
		pending.Add(name)
	}
	for {
		next, ref, ok := Scan(seq, opts)
		if !ok {
			return seq, pending, nil
		}
		out, err := Expand(next, ref, pending, frags)
		if err != nil {
			return nil, pending, err
		}
		seq = out
	}
}
