// Package apperrors maps the runtime's internal error taxonomy onto HTTP
// status codes, adapted from the gateway's GatewayError pattern.
package apperrors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AppError is an error that carries the HTTP status it should be reported
// as, plus a caller-facing message distinct from the wrapped cause (if
// any).
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// PlainBody, when set, is written verbatim as a text/plain response
	// body instead of the default JSON envelope. A handful of error kinds
	// have a literal wire-format body mandated independently of the JSON
	// shape; PlainBody lets those override WriteResponse without every
	// caller needing to know which kind that is.
	PlainBody  string `json:"-"`
	underlying error
}

func (e *AppError) Error() string {
	if e.underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.underlying)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.underlying }

// WriteResponse writes e to w with e.Status as the response status code: as
// PlainBody verbatim if set, otherwise as the standard JSON envelope.
func (e *AppError) WriteResponse(w http.ResponseWriter) {
	if e.PlainBody != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(e.Status)
		_, _ = io.WriteString(w, e.PlainBody)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// New builds an AppError with no wrapped cause.
func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// Wrap builds an AppError around an underlying cause.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message, underlying: err}
}

// As reports whether err is an *AppError.
func As(err error) (*AppError, bool) {
	ae, ok := err.(*AppError)
	return ae, ok
}

// HostNotFound reports that no tenant is registered for the request's Host
// header. Its wire body is the literal text "host not found", not the usual
// JSON envelope.
func HostNotFound(host string) *AppError {
	e := New(http.StatusNotFound, "host_not_found", fmt.Sprintf("no tenant registered for host %q", host))
	e.PlainBody = "host not found"
	return e
}

// RoutePathNotFound reports that no route in the tenant's table matches the
// request path, for any method.
func RoutePathNotFound(path string) *AppError {
	return New(http.StatusNotFound, "route_not_found", fmt.Sprintf("no route matches path %q", path))
}

// RouteMethodNotAllowed reports that the path matched but not for the
// request's method.
func RouteMethodNotAllowed(method string) *AppError {
	return New(http.StatusMethodNotAllowed, "method_not_allowed", fmt.Sprintf("method %s is not allowed on this path", method))
}

// InvalidBody reports a request body that could not be decoded.
func InvalidBody(err error) *AppError {
	return Wrap(err, http.StatusBadRequest, "invalid_body", "request body could not be decoded")
}

// ScriptError reports a handler that threw, rejected its promise, or
// otherwise failed during evaluation.
func ScriptError(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, "script_error", "handler execution failed")
}

// BuildError reports a bundling or transpilation failure; only ever
// surfaced on the CLI, never as an HTTP response.
func BuildError(err error) *AppError {
	return Wrap(err, 0, "build_error", "project build failed")
}
