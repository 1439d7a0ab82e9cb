package domain

import (
	"errors"
	"fmt"
)

// Validation kinds reported to clients in the error payload.
const (
	KindUnknownSortField = "unknown_sort_field"
	KindUnknownField     = "unknown_shape_field"
	KindInvalidParameter = "invalid_parameter"
)

// ConfigurationError means no mapping table was registered for a resource kind.
// It is a wiring bug, never a client error.
type ConfigurationError struct {
	Resource string
	Entity   string
	Msg      string
	Err      error
}

func (e ConfigurationError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "" || e.Entity != "":
		return fmt.Sprintf("no property mapping registered for %s -> %s", e.Resource, e.Entity)
	default:
		return "configuration error"
	}
}

func (e ConfigurationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Kind  string
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// UnknownSortFieldError reports an orderBy token with no mapping entry.
func UnknownSortFieldError(field string) ValidationError {
	return ValidationError{
		Kind:  KindUnknownSortField,
		Field: field,
		Msg:   "no sort mapping for field",
	}
}

// UnknownFieldError reports a fields token the target type does not declare.
func UnknownFieldError(field, typeName string) ValidationError {
	return ValidationError{
		Kind:  KindUnknownField,
		Field: field,
		Msg:   fmt.Sprintf("field wasn't found on %s", typeName),
	}
}

type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

// ForbiddenError means the caller is authenticated but its role may not
// perform the action.
type ForbiddenError struct {
	Role string
	Err  error
}

func (e ForbiddenError) Error() string {
	if e.Role == "" {
		return "forbidden"
	}
	return fmt.Sprintf("role %s is not allowed", e.Role)
}

func (e ForbiddenError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsConfiguration(err error) bool {
	var target ConfigurationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// ValidationKind returns the kind of the first ValidationError in err's chain.
func ValidationKind(err error) string {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
