// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"context"
	"net/http"
)

// Authenticator decides whether a request may reach the API at all. The
// inbound request is passed explicitly; returning false short-circuits the
// pipeline into a plain-text 403 response, outside the envelope contract.
type Authenticator func(*http.Request) bool

// Invoker wraps the invocation of a registered method. The default invoker
// simply calls invoke; custom invokers can add per-call behaviour like
// metrics or authorization and must call invoke to run the method.
type Invoker func(ctx context.Context, method *Method, invoke func(context.Context) (any, error)) (any, error)

func defaultInvoker(ctx context.Context, _ *Method, invoke func(context.Context) (any, error)) (any, error) {
	return invoke(ctx)
}

// ServerInterceptor defines an interceptor around the request pipeline.
type ServerInterceptor interface {
	Intercept(next func(http.ResponseWriter, *http.Request) error) func(http.ResponseWriter, *http.Request) error
}

// ServerInterceptorFunc is a function type that implements the
// ServerInterceptor interface.
type ServerInterceptorFunc func(next func(http.ResponseWriter, *http.Request) error) func(http.ResponseWriter, *http.Request) error

// Intercept calls the ServerInterceptorFunc with the next handler.
func (f ServerInterceptorFunc) Intercept(next func(http.ResponseWriter, *http.Request) error) func(http.ResponseWriter, *http.Request) error {
	return f(next)
}
