// Package storeerr classifies failures coming back from the backing store into the
// small set of kinds the services and the HTTP layer know how to react to.
package storeerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown          Kind = ""
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindConflict         Kind = "conflict"
	KindValidation       Kind = "validation"
	KindTransient        Kind = "transient_network"
)

var (
	ErrNotFound         = &sentinel{kind: KindNotFound}
	ErrPermissionDenied = &sentinel{kind: KindPermissionDenied}
	ErrConflict         = &sentinel{kind: KindConflict}
	ErrValidation       = &sentinel{kind: KindValidation}
	ErrTransient        = &sentinel{kind: KindTransient}
)

type sentinel struct {
	kind Kind
}

func (s *sentinel) Error() string {
	return string(s.kind)
}

// Error is a classified store failure. errors.Is matches it against the package
// sentinels by kind, so callers never compare driver errors directly.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == e.Kind
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op}
}

func Conflict(op string) error {
	return &Error{Kind: KindConflict, Op: op}
}

func PermissionDenied(op string) error {
	return &Error{Kind: KindPermissionDenied, Op: op}
}

func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}
