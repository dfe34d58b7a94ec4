package appkit

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is an error code that mirrors the http status codes. It can be used to create errors
// to pass around across middleware layers so the error responder can resolve them
// structurally.
type Code int

const (
	CodeUnknown              Code = 0
	CodeBadRequest           Code = http.StatusBadRequest
	CodeUnauthorized         Code = http.StatusUnauthorized
	CodeForbidden            Code = http.StatusForbidden
	CodeNotFound             Code = http.StatusNotFound
	CodeMethodNotAllowed     Code = http.StatusMethodNotAllowed
	CodeRequestTimeout       Code = http.StatusRequestTimeout
	CodeConflict             Code = http.StatusConflict
	CodeGone                 Code = http.StatusGone
	CodePreconditionFailed   Code = http.StatusPreconditionFailed
	CodeUnsupportedMediaType Code = http.StatusUnsupportedMediaType
	CodeUnprocessableEntity  Code = http.StatusUnprocessableEntity
	CodeTooManyRequests      Code = http.StatusTooManyRequests

	CodeInternalServerError Code = http.StatusInternalServerError
	CodeNotImplemented      Code = http.StatusNotImplemented
	CodeBadGateway          Code = http.StatusBadGateway
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable
	CodeGatewayTimeout      Code = http.StatusGatewayTimeout
)

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and [CodeUnknown]
// otherwise.
func CodeOf(err error) Code {
	if kerr, ok := asError(err); ok {
		return kerr.Code()
	}

	return CodeUnknown
}

// asError uses errors.As to unwrap any error and look for an appkit *Error.
func asError(err error) (*Error, bool) {
	var kerr *Error
	ok := errors.As(err, &kerr)

	return kerr, ok
}
