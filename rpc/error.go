// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"fmt"
	"reflect"
)

// Reserved JSON-RPC 2.0 error codes. Application errors should stay out
// of the -32000..-32768 band by convention.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32000
)

// Error is an application-defined RPC error. Methods return it to put an
// explicit code, message and data into the error envelope instead of being
// wrapped as an internal error.
//
// HTTPStatus is only honoured on per-method paths; the generic JSON-RPC
// endpoint always responds with HTTP 200. Zero means 500.
type Error struct {
	Code       int
	Message    string
	Data       any
	HTTPStatus int
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return e.Message
}

// ErrorObject is the error member of a response envelope.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SignatureError reports a callable whose parameter or return types could
// not be resolved at registration time.
type SignatureError struct {
	Reason string
}

// Error implements the [error] interface.
func (e *SignatureError) Error() string {
	return "rpc: unsupported method signature: " + e.Reason
}

// DuplicateMethodError reports a second registration under an already
// taken method name.
type DuplicateMethodError struct {
	Name string
}

// Error implements the [error] interface.
func (e *DuplicateMethodError) Error() string {
	return "rpc: method already registered: " + e.Name
}

// ConfigurationError reports invalid registration-time configuration,
// such as a reserved method name or a conflicting route.
type ConfigurationError struct {
	Reason string
}

// Error implements the [error] interface.
func (e *ConfigurationError) Error() string {
	return "rpc: " + e.Reason
}

// panicError carries a recovered panic value out of a method invocation.
type panicError struct {
	value any
}

// Error implements the [error] interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// errTypeName names the concrete type behind an error for diagnostic data.
func errTypeName(err error) string {
	var pe *panicError
	t := reflect.TypeOf(err)
	if pv, ok := err.(*panicError); ok {
		pe = pv
		t = reflect.TypeOf(pe.value)
	}
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
