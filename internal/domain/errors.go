package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// FieldError carries field-keyed messages for the client alongside a sentinel
// kind. errors.Is(err, Kind) holds for any FieldError.
type FieldError struct {
	Kind   error
	Fields map[string]string
}

func NewFieldError(kind error, field, msg string) *FieldError {
	return &FieldError{Kind: kind, Fields: map[string]string{field: msg}}
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Kind.Error() + ": " + strings.Join(parts, "; ")
}

func (e *FieldError) Unwrap() error { return e.Kind }
