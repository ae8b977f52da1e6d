package quiz

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindEmptyTest        Kind = "empty_test"
	KindSessionExhausted Kind = "session_exhausted"
	KindInvalidOption    Kind = "invalid_option"
)

// Error carries a stable kind alongside the message so the transport can
// pick a status code without string matching.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the error's kind, or "" for untyped (store/infra) errors.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// errStaleSession is returned by stores when a guarded session update
// loses to a concurrent submission. Never escapes the engine.
var errStaleSession = errors.New("session advanced concurrently")
