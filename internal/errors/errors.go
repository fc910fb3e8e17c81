// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeUnknownInstanceType indicates a type name outside the instance vocabulary
	TypeUnknownInstanceType Type = "UNKNOWN_INSTANCE_TYPE"

	// TypeInvalidDuration indicates a non-positive or non-finite duration
	TypeInvalidDuration Type = "INVALID_DURATION"

	// TypeInvalidConstraint indicates a missing or unusable cpus/price constraint
	TypeInvalidConstraint Type = "INVALID_CONSTRAINT"

	// TypeInvalidPrice indicates a catalog price that is not a positive finite number
	TypeInvalidPrice Type = "INVALID_PRICE"

	// TypeCatalog indicates a catalog source failure
	TypeCatalog Type = "CATALOG_ERROR"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNetwork indicates a network error
	TypeNetwork Type = "NETWORK_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of the outermost domain error, or "" if there is none
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// UnknownInstanceType creates an unknown instance type error
func UnknownInstanceType(region, name string) *Error {
	return Newf(TypeUnknownInstanceType, "unknown instance type %q in region %q", name, region).
		WithContext("region", region).
		WithContext("type", name)
}

// InvalidDuration creates an invalid duration error
func InvalidDuration(hours float64) *Error {
	return Newf(TypeInvalidDuration, "hours must be a positive number, got %v", hours).
		WithContext("hours", hours)
}

// InvalidConstraint creates an invalid constraint error
func InvalidConstraint(message string) *Error {
	return New(TypeInvalidConstraint, message)
}

// InvalidPrice creates an invalid catalog price error
func InvalidPrice(region, name string, price float64) *Error {
	return Newf(TypeInvalidPrice, "price for %q in region %q must be a positive number, got %v", name, region, price).
		WithContext("region", region).
		WithContext("type", name)
}

// Catalog creates a catalog source error
func Catalog(message string, cause error) *Error {
	return Wrap(TypeCatalog, message, cause)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
