package scan

import (
	"errors"
	"fmt"
	"strings"

	"entity-generator/internal/diagnostic"
	"entity-generator/internal/model"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind classifies a scan failure.
type Kind int

const (
	KindMissingIdentityField Kind = iota
	KindUnsupportedShape
	KindMultipleIdentityFields
)

// Sentinel errors matched by *Error.
var (
	ErrMissingIdentityField   = errors.New("missing identity field")
	ErrUnsupportedShape       = errors.New("unsupported type shape")
	ErrMultipleIdentityFields = errors.New("multiple identity fields")
)

// Error is the fatal outcome of scanning one type.
type Error struct {
	Kind      Kind
	Type      string      // qualified type name
	Namespace string      // marker namespace that was searched for
	Shape     model.Shape // set for KindUnsupportedShape
	Fields    []string    // set for KindMultipleIdentityFields
}

// Message returns the diagnostic text without the type prefix.
func (e *Error) Message() string {
	switch e.Kind {
	case KindUnsupportedShape:
		return fmt.Sprintf("only structs with named fields can derive identity, got a %s type",
			strings.ToLower(e.Shape.String()))
	case KindMultipleIdentityFields:
		return fmt.Sprintf("fields %s all carry %s; exactly one identity field is allowed",
			strings.Join(e.Fields, ", "), marker(e.Namespace))
	default:
		return fmt.Sprintf("no field with %s tag found", marker(e.Namespace))
	}
}

func (e *Error) Error() string {
	if e.Type == "" {
		return e.Message()
	}

	return e.Type + ": " + e.Message()
}

// Code returns the diagnostic code for the failure kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindUnsupportedShape:
		return diagnostic.CodeUnsupportedShape
	case KindMultipleIdentityFields:
		return diagnostic.CodeMultipleIdentity
	default:
		return diagnostic.CodeMissingIdentity
	}
}

// Is matches the sentinel error for the failure kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindMissingIdentityField:
		return target == ErrMissingIdentityField
	case KindUnsupportedShape:
		return target == ErrUnsupportedShape
	case KindMultipleIdentityFields:
		return target == ErrMultipleIdentityFields
	default:
		return false
	}
}

func marker(namespace string) string {
	return fmt.Sprintf("%s:%q", namespace, model.IdentityArg)
}
