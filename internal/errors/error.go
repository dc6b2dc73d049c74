package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryManifest Category = "manifest"
	CategoryOrigin   Category = "origin"
	CategoryCLI      Category = "cli"
)

// AssetsError is a structured error with a code, explanation and fix hint.
type AssetsError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, manifest, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the file the error refers to, if any.
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *AssetsError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AssetsError) Unwrap() error {
	return e.Wrapped
}

// WithPath records the file the error refers to.
func (e *AssetsError) WithPath(path string) *AssetsError {
	e.Path = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *AssetsError) WithSuggestion(s string) *AssetsError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *AssetsError) WithDetail(d string) *AssetsError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *AssetsError) Wrap(err error) *AssetsError {
	e.Wrapped = err
	return e
}

// New creates an AssetsError from a registered error code.
func New(code string) *AssetsError {
	template, ok := registry[code]
	if !ok {
		return &AssetsError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &AssetsError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new AssetsError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *AssetsError {
	return &AssetsError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an AssetsError.
// Errors that already are an *AssetsError are returned as is.
func FromError(err error, code string) *AssetsError {
	if err == nil {
		return nil
	}
	var ae *AssetsError
	if stderrors.As(err, &ae) {
		return ae
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if ae, ok := err.(*AssetsError); ok && ae.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
