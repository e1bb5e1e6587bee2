// Package wgsl checks composed text with naga: the WGSL front end parses it,
// lowers it to naga IR and the IR validator checks types, calls and
// entry points. Rejections are *Error values carrying a byte offset into the
// text whenever naga reports a position.
package wgsl

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Error is a rejected input. Offset is the byte offset of the offending
// token, or -1 when it is unknown.
type Error struct {
	Message string
	Offset  int
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (at byte %d)", e.Message, e.Offset)
}

// Validator accepts or rejects a whole WGSL module. A rejection should be a
// *Error so the offset can be mapped back to the host source.
type Validator interface {
	Validate(text string) error
}

// Func adapts a function to Validator.
type Func func(text string) error

func (f Func) Validate(text string) error { return f(text) }

// Default validates with naga.
var Default Validator = Func(Validate)

// Validate parses, lowers and validates text with naga. The first problem
// found is returned.
func Validate(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Message: fmt.Sprintf("naga: %v", r), Offset: -1}
		}
	}()

	ast, err := naga.Parse(text)
	if err != nil {
		return newError(text, err.Error())
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return newError(text, err.Error())
	}
	issues, err := naga.Validate(module)
	if err != nil {
		return newError(text, err.Error())
	}
	if len(issues) > 0 {
		return newError(text, describe(&issues[0]))
	}
	return nil
}

func newError(text, msg string) *Error {
	if msg == "" {
		msg = "invalid WGSL"
	}
	return &Error{Message: msg, Offset: Locate(text, msg)}
}

// describe renders a validation issue; naga's issue type is used only
// through the error or Stringer interface.
func describe(v any) string {
	switch v := v.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
