package session

import (
	"errors"
	"fmt"
)

// Kind classifies session failures. The numeric values are the result codes
// the native interface has always returned, so Code(err) can be handed to
// callers that still speak integers.
type Kind int

const (
	KindSuccess Kind = iota
	KindInit
	KindReadModel
	KindOptions
	KindInterpreter
	KindCopyBuffer
	KindTensor
	KindInvalidSize
	KindInvoke
)

var kindNames = map[Kind]string{
	KindSuccess:     "success",
	KindInit:        "init",
	KindReadModel:   "read model",
	KindOptions:     "options",
	KindInterpreter: "interpreter",
	KindCopyBuffer:  "copy buffer",
	KindTensor:      "tensor",
	KindInvalidSize: "invalid size",
	KindInvoke:      "invoke",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a Kind be used directly as an errors.Is target.
func (k Kind) Error() string {
	return "session: " + k.String()
}

var (
	ErrAlreadyCreated = errors.New("a session is already live")
	ErrClosed         = errors.New("session deleted")
	ErrEmptyModel     = errors.New("empty model")
	ErrNoTensor       = errors.New("tensor unavailable")
)

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("session: %s: %s", e.Op, e.Kind.String())
	}
	return fmt.Sprintf("session: %s: %s: %v", e.Op, e.Kind.String(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf reports the Kind carried by err, KindSuccess for nil and -1 for
// errors that did not come from this package.
func KindOf(err error) Kind {
	if err == nil {
		return KindSuccess
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return -1
}

// Code returns the integer result code for err.
func Code(err error) int {
	return int(KindOf(err))
}
