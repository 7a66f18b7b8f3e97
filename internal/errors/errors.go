package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an application error.
type Code string

const (
	CodeNetwork         Code = "NETWORK_ERROR"
	CodeParse           Code = "PARSE_ERROR"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotRegistered   Code = "NOT_REGISTERED"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// AppError carries a code, a human-readable message and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a failed fetch of an external document.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{Code: CodeNetwork, Message: message, Err: err}
}

// NewParseError wraps a fundamentally unparseable document.
func NewParseError(message string, err error) *AppError {
	return &AppError{Code: CodeParse, Message: message, Err: err}
}

// NewInvalidArgumentError reports a caller contract violation.
func NewInvalidArgumentError(message string) *AppError {
	return &AppError{Code: CodeInvalidArgument, Message: message}
}

// NewNotRegisteredError reports a recipient with no stored registration.
func NewNotRegisteredError(recipient string) *AppError {
	return &AppError{Code: CodeNotRegistered, Message: fmt.Sprintf("recipient %s is not registered", recipient)}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf returns the code of err if an AppError is in its chain, CodeInternal otherwise.
func CodeOf(err error) Code {
	var app *AppError
	if stderrors.As(err, &app) {
		return app.Code
	}
	return CodeInternal
}
