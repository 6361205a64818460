package domain

import (
	"errors"
	"strings"
)

// Error kinds surfaced to callers. Codes follow HTTP semantics so the
// transport layer can map them 1:1 into the response envelope.
const (
	KindValidation  = "validation_failed"
	KindDuplicate   = "duplicate_entity"
	KindCredentials = "invalid_credentials"
	KindToken       = "invalid_token"
	KindNotFound    = "not_found"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind   string
	Code   int
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Msg + " (" + strings.Join(parts, "; ") + ")"
}

func ErrValidation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: 422, Msg: "validation failed", Fields: fields}
}

func ErrDuplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Code: 409, Msg: msg}
}

// ErrCredentials carries the failing field ("username" or "password") as a
// detail only; the kind and code stay identical for both cases so callers
// cannot branch on which check failed.
func ErrCredentials(field string) *Error {
	return &Error{
		Kind: KindCredentials, Code: 401, Msg: "invalid credentials",
		Fields: []FieldError{{Field: field, Message: "invalid"}},
	}
}

func ErrToken(msg string) *Error {
	if msg == "" {
		msg = "invalid token"
	}
	return &Error{Kind: KindToken, Code: 401, Msg: msg}
}

func ErrNotFound(msg string) *Error {
	if msg == "" {
		msg = "not found"
	}
	return &Error{Kind: KindNotFound, Code: 404, Msg: msg}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind string) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
