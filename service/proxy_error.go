package service

import (
	"errors"
	"fmt"
)

const (
	// ErrBadPath means that the request path is outside the routing prefix.
	ErrBadPath = "bad_path"
	// ErrNoNodeAvailable means that no backend node is currently Up.
	ErrNoNodeAvailable = "no_node_available"
	// ErrUnknownBinding means that the session identifier has no binding in the store.
	ErrUnknownBinding = "unknown_binding"
	// ErrStoreError means that the binding store could not be reached during a lookup.
	ErrStoreError = "store_error"
	// ErrForwardingError means that the request could not be relayed to its backend.
	ErrForwardingError = "forwarding_error"
	// ErrBadParameter means that provided parameter does not match declared.
	ErrBadParameter = "bad_parameter"
	// ErrInternalServerError means that an internal server error has occurred.
	ErrInternalServerError = "internal_server_error"
)

// ProxyError represents an error within the context of stickyproxy services.
type ProxyError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message"`
	// Inner is a wrapped error that is never shown to clients.
	Inner error `json:"-"`
}

// NewProxyError creates a new ProxyError.
func NewProxyError(code string, message string, inner error) *ProxyError {
	return &ProxyError{
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

func NewBadPathError(path string) *ProxyError {
	return NewProxyError(ErrBadPath, "unknown path "+path, nil)
}

func NewNoNodeAvailableError() *ProxyError {
	return NewProxyError(ErrNoNodeAvailable, "no node available", nil)
}

func NewUnknownBindingError(sessionID string, inner error) *ProxyError {
	return NewProxyError(ErrUnknownBinding, "unknown binding for sid "+sessionID, inner)
}

// NewStoreError keeps an existing ProxyError untouched so that a store adapter can wrap freely.
func NewStoreError(message string, inner error) *ProxyError {
	if myInner := ToProxyError(inner); myInner != nil {
		return myInner
	}
	return NewProxyError(ErrStoreError, message, inner)
}

func NewForwardingError(target string, inner error) *ProxyError {
	return NewProxyError(ErrForwardingError, "forwarding to "+target+" failed", inner)
}

func NewBadParameterError(message string, inner error) *ProxyError {
	if myInner := ToProxyError(inner); myInner != nil {
		return myInner
	}
	return NewProxyError(ErrBadParameter, message, inner)
}

func (e ProxyError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}

	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// Unwrap the error returning the error's reason.
func (e ProxyError) Unwrap() error {
	return e.Inner
}

// ToProxyError returns a pointer to a stickyproxy error, or nil if it is not one.
func ToProxyError(err error) *ProxyError {
	var e *ProxyError
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// ToProxyErrorCode returns the code of the error, if available.
func ToProxyErrorCode(err error) string {
	if e := ToProxyError(err); e != nil {
		return e.Code
	}
	return ""
}

func IsProxyError(err error, code string) bool {
	if e := ToProxyError(err); e != nil {
		return e.Code == code
	}
	return false
}

func IsBadPath(err error) bool {
	return IsProxyError(err, ErrBadPath)
}

func IsNoNodeAvailable(err error) bool {
	return IsProxyError(err, ErrNoNodeAvailable)
}

func IsUnknownBinding(err error) bool {
	return IsProxyError(err, ErrUnknownBinding)
}

func IsStoreError(err error) bool {
	return IsProxyError(err, ErrStoreError)
}

func IsForwardingError(err error) bool {
	return IsProxyError(err, ErrForwardingError)
}

func IsBadParameter(err error) bool {
	return IsProxyError(err, ErrBadParameter)
}
