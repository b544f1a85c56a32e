package bitrix24

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by DecodeError through errors.Is.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrFieldMissing  = errors.New("required field missing")
	ErrTypeCoercion  = errors.New("type coercion failed")
	ErrPrecondition  = errors.New("precondition violated")
)

// DecodeErrorKind classifies a DecodeError.
type DecodeErrorKind int

const (
	// ShapeMismatch means the raw value does not have the structural shape
	// (scalar, list, map) the decoder expects.
	ShapeMismatch DecodeErrorKind = iota + 1
	// FieldMissing means a required field is absent or null.
	FieldMissing
	// TypeCoercion means a present value cannot be converted to the
	// declared type.
	TypeCoercion
	// PreconditionViolation means a result was used before it was populated.
	// It signals a programming error and is never worth retrying.
	PreconditionViolation
)

func (k DecodeErrorKind) sentinel() error {
	switch k {
	case ShapeMismatch:
		return ErrShapeMismatch
	case FieldMissing:
		return ErrFieldMissing
	case TypeCoercion:
		return ErrTypeCoercion
	case PreconditionViolation:
		return ErrPrecondition
	default:
		return nil
	}
}

// String implements fmt.Stringer.
func (k DecodeErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
}

// DecodeError reports a failure to project a raw response onto a typed
// result. Decoding never retries and never substitutes defaults, so the
// error is returned unchanged through every layer.
type DecodeError struct {
	Kind DecodeErrorKind

	// Field is the name of the record field being decoded, if any.
	Field string

	// Position identifies the record within the result: "[2]" for the
	// third element of a list result, or the key of a keyed result.
	Position string

	// Want describes the expected shape or type.
	Want string

	// Observed is the shape of the raw value that was found.
	Observed Kind

	// Raw is a short rendering of the raw value.
	Raw string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("bitrix24: ")
	b.WriteString(e.Kind.String())
	if e.Position != "" {
		fmt.Fprintf(&b, " at %s", e.Position)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	switch e.Kind {
	case ShapeMismatch, TypeCoercion:
		fmt.Fprintf(&b, ": want %s, got %s", e.Want, e.Observed)
		if e.Raw != "" {
			fmt.Fprintf(&b, " %s", e.Raw)
		}
	case PreconditionViolation:
		if e.Want != "" {
			fmt.Fprintf(&b, ": %s", e.Want)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the kind sentinel and the underlying parse error.
func (e *DecodeError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// at returns a copy of the error annotated with field and position. Context
// already present is kept.
func (e *DecodeError) at(field, position string) *DecodeError {
	out := *e
	if out.Field == "" {
		out.Field = field
	}
	if out.Position == "" {
		out.Position = position
	}
	return &out
}

func shapeError(want string, v Value) *DecodeError {
	return &DecodeError{
		Kind:     ShapeMismatch,
		Want:     want,
		Observed: v.Kind(),
		Raw:      v.summary(),
	}
}

func coercionError(want string, v Value, err error) *DecodeError {
	return &DecodeError{
		Kind:     TypeCoercion,
		Want:     want,
		Observed: v.Kind(),
		Raw:      v.summary(),
		Err:      err,
	}
}

func missingError(field, position string) *DecodeError {
	return &DecodeError{
		Kind:     FieldMissing,
		Field:    field,
		Position: position,
	}
}

// annotate attaches field and position to decode errors and passes any
// other error through untouched.
func annotate(err error, field, position string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.at(field, position)
	}
	return err
}
