package apperrors

import "errors"

// Error is the domain error type carried across package boundaries.
type Error struct {
	Code     Code
	Message  string
	Reason   string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on reason when the target carries one, otherwise on code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason != "" {
		return e.Reason == t.Reason
	}
	return e.Code == t.Code
}

// New creates an error with a code and a user-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error wrapping an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithMetadata creates an error carrying extra context for logs and clients.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Validation is shorthand for a VALIDATION error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound is shorthand for a NOT_FOUND error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Persistence wraps a store failure.
func Persistence(message string, cause error) *Error {
	return Wrap(CodePersistence, message, cause)
}

// Upstream wraps a collaborator failure.
func Upstream(message string, cause error) *Error {
	return Wrap(CodeUpstream, message, cause)
}

// CodeOf returns the code of the first *Error in the chain, or INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the user-safe message of the first *Error in the chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
