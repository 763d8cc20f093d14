// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rpc exposes ordinary Go functions and methods as a JSON-RPC 2.0
// API with derived validation schemas and OpenAPI documentation.
//
// # Basic Usage
//
// Define methods on a struct, register them, and serve the [Api]:
//
//	type Point struct {
//	    X int `json:"x"`
//	    Y int `json:"y"`
//	}
//
//	type ScaleParams struct {
//	    P      Point `json:"p"`
//	    Factor int   `json:"factor"`
//	}
//
//	type Methods struct{}
//
//	func (Methods) Scale(ctx context.Context, params ScaleParams) (Point, error) {
//	    return Point{X: params.P.X * params.Factor, Y: params.P.Y * params.Factor}, nil
//	}
//
//	api := rpc.NewApi("Point API", "v1.0.0")
//	if err := api.RegisterObject(Methods{}); err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", api)
//
// Requests can now be POSTed to the generic endpoint /api/ as full
// JSON-RPC envelopes, or to /api/scale with a bare parameter object:
//
//	{"p": {"x": 1, "y": 2}, "factor": 3}
//
// Both routes run the identical pipeline; they differ only in body shape
// and HTTP status mapping. The generic endpoint always answers 200, while
// per-method routes map protocol errors to 400/500 and honour the
// HTTPStatus of an application [Error].
//
// # Method Signatures
//
// Registered callables must look like
//
//	func(ctx context.Context, params P) (R, error)
//
// where the context argument is optional, P is a struct (or pointer to
// struct) whose fields are the named parameters, and R is the return
// type. Anything else is rejected at registration with a
// [SignatureError], so an unresolvable method can never be reached over
// the wire.
//
// # Errors
//
// Methods return an application [Error] to control the error envelope:
//
//	return Point{}, &rpc.Error{Code: 123, Message: "no such point", HTTPStatus: 404}
//
// Any other error (or panic) is reported as internal error -32000 with a
// generic message; the error type and text go into the error data, never
// into the headline message.
//
// # Customization
//
// [Authenticate] installs an authentication predicate, [Intercept] wraps
// the whole pipeline, and [InvokeWith] (or the per-method
// [WrapInvocation]) wraps individual method calls.
package rpc
