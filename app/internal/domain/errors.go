package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by services wraps exactly one of them.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Error carries a human message and optional per-field details on top of a kind.
type Error struct {
	Kind   error
	Msg    string
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound is a shortcut for missing entities.
func NotFound(entity string, id int64) error {
	return Errorf(ErrNotFound, "%s %d not found", entity, id)
}

// ValidationError reports field problems; fields may be nil.
func ValidationError(msg string, fields map[string]string) error {
	return &Error{Kind: ErrValidation, Msg: msg, Fields: fields}
}

// FieldsOf returns per-field details when err carries them.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
