package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of build errors
type ErrorType int

const (
	ErrIO ErrorType = iota
	ErrConfig
	ErrNaming
	ErrIntegrity
	ErrConsistency
	ErrSigning
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrIO:
		return "IOError"
	case ErrConfig:
		return "ConfigError"
	case ErrNaming:
		return "NamingError"
	case ErrIntegrity:
		return "IntegrityError"
	case ErrConsistency:
		return "ConsistencyError"
	case ErrSigning:
		return "SigningError"
	default:
		return "Unknown"
	}
}

// PirumError represents an error during a channel build
type PirumError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *PirumError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *PirumError) Unwrap() error {
	return e.Err
}

// NewError builds a PirumError from a formatted message
func NewError(t ErrorType, pkg, format string, args ...interface{}) *PirumError {
	return &PirumError{
		Type:    t,
		Package: pkg,
		Err:     fmt.Errorf(format, args...),
	}
}

// WrapIO wraps a filesystem error, keeping an existing PirumError untouched
func WrapIO(pkg string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PirumError
	if errors.As(err, &pe) {
		return err
	}
	return &PirumError{Type: ErrIO, Package: pkg, Err: err}
}

// TypeOf returns the ErrorType of the first PirumError in err's chain.
// Errors that carry no type are reported as ErrIO.
func TypeOf(err error) ErrorType {
	var pe *PirumError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrIO
}

// IsType reports whether err's chain contains a PirumError of type t
func IsType(err error, t ErrorType) bool {
	var pe *PirumError
	return errors.As(err, &pe) && pe.Type == t
}
