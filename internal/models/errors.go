package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrDescriptorParse ErrorType = iota
	ErrInvalidDescriptor
	ErrConfigParse
	ErrInvalidConfig
	ErrFileOp
	ErrArchive
	ErrSigning
	ErrNotActive
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrDescriptorParse:
		return "DescriptorParse"
	case ErrInvalidDescriptor:
		return "InvalidDescriptor"
	case ErrConfigParse:
		return "ConfigParse"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrFileOp:
		return "FileOp"
	case ErrArchive:
		return "Archive"
	case ErrSigning:
		return "Signing"
	case ErrNotActive:
		return "NotActive"
	default:
		return "Unknown"
	}
}

// ActivateError represents an error raised while packaging or activating
type ActivateError struct {
	Type    ErrorType
	Subject string
	Err     error
}

// Error implements the error interface
func (e *ActivateError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *ActivateError) Unwrap() error {
	return e.Err
}

// NewError builds an *ActivateError
func NewError(t ErrorType, subject string, err error) *ActivateError {
	return &ActivateError{Type: t, Subject: subject, Err: err}
}

// IsType reports whether err wraps an *ActivateError of type t
func IsType(err error, t ErrorType) bool {
	var ae *ActivateError
	if errors.As(err, &ae) {
		return ae.Type == t
	}
	return false
}
