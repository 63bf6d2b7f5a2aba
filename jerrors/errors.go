// Package jerrors holds the error envelope written to clients and the error
// type used by data-layer collaborators.
package jerrors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is the protocol's standard error envelope.
type Error struct {
	Message    string     `json:"message"`
	Extensions Extensions `json:"extensions"`
	Paths      []string   `json:"paths"`
}

// Extensions carries the machine readable error code.
type Extensions struct {
	Code string `json:"code"`
}

func (e *Error) Error() string {
	return e.Message
}

// DataError is raised by the data layer (storage, class snapshot and config
// providers, identity verifiers). Code is a gRPC code describing the failure.
type DataError struct {
	Code    codes.Code
	Message string
	Err     error
}

// NewDataError returns a DataError with a formatted message.
func NewDataError(code codes.Code, format string, args ...interface{}) *DataError {
	return &DataError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapDataError returns a DataError wrapping err.
func WrapDataError(code codes.Code, err error, message string) *DataError {
	return &DataError{Code: code, Message: message, Err: err}
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// GRPCStatus lets status.FromError recognise DataError.
func (e *DataError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Error())
}

// IsDataError reports whether err is or wraps a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// ConvertError translates err into the error envelope. Errors that already
// carry a gRPC status keep their code; anything else is Unknown.
func ConvertError(err error) *Error {
	var je *Error
	if errors.As(err, &je) {
		return je
	}

	code := codes.Unknown
	msg := err.Error()

	var de *DataError
	if errors.As(err, &de) {
		code = de.Code
		msg = de.Error()
	} else if s, ok := status.FromError(err); ok {
		code = s.Code()
		msg = s.Message()
	}

	return &Error{
		Message:    msg,
		Extensions: Extensions{Code: code.String()},
		Paths:      []string{},
	}
}
