// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/z5labs/sdk-go/try"
)

// handlerFor builds the pipeline handler for one route. methodName is
// empty for the generic endpoint and pre-supplied for per-method routes.
func (api *Api) handlerFor(methodName string) http.Handler {
	serve := func(w http.ResponseWriter, r *http.Request) error {
		return api.serve(w, r, methodName)
	}
	for i := len(api.interceptors) - 1; i >= 0; i-- {
		serve = api.interceptors[i].Intercept(serve)
	}

	return &pipelineHandler{
		api:   api,
		serve: serve,
	}
}

type pipelineHandler struct {
	api   *Api
	serve func(http.ResponseWriter, *http.Request) error
}

// ServeHTTP implements the [http.Handler] interface. Dispatch failures are
// reported inside the envelope; only transport-level failures (response
// write errors, interceptor errors, panics outside method bodies) end up
// here.
func (h *pipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var err error
	defer func() {
		if err == nil {
			return
		}
		h.api.log.ErrorContext(
			r.Context(),
			"failed to serve rpc request",
			slog.Any("error", err),
		)
		w.WriteHeader(http.StatusInternalServerError)
	}()
	defer try.Recover(&err)

	err = h.serve(w, r)
}

// serve runs the per-request state machine: authenticate, parse, resolve,
// validate, invoke, serialize, respond.
func (api *Api) serve(w http.ResponseWriter, r *http.Request, methodName string) (err error) {
	ctx, span := api.tracer.Start(r.Context(), "Api.serve")
	defer span.End()

	if !api.auth(r) {
		// The one path that bypasses the envelope format entirely.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, err = io.WriteString(w, "Forbidden")
		return err
	}

	defer try.Close(&err, r.Body)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	log := api.log.With(slog.String("request_id", uuid.NewString()))

	if methodName != "" {
		resp, status := api.serveMethodPath(ctx, log, methodName, body)
		return writeJSON(w, status, resp)
	}
	return api.serveGeneric(ctx, log, w, body)
}

// serveMethodPath handles a per-method route: the body is the bare
// parameter object and the method name comes from the URL.
func (api *Api) serveMethodPath(ctx context.Context, log *slog.Logger, methodName string, body []byte) (*Response, int) {
	nullID := json.RawMessage("null")

	params := json.RawMessage(bytes.TrimSpace(body))
	if len(params) == 0 {
		params = nil
	}
	if params != nil && !json.Valid(params) {
		eo := &ErrorObject{Code: CodeParseError, Message: "Parse error"}
		return errorResponse(nullID, eo), http.StatusBadRequest
	}

	req := &Request{
		JSONRPC: Version,
		Method:  methodName,
		Params:  params,
		ID:      nullID,
	}

	resp, status := api.dispatch(ctx, log, req)
	return resp, status
}

// serveGeneric handles the generic JSON-RPC endpoint, including batch
// requests and notifications. It always responds with HTTP 200.
func (api *Api) serveGeneric(ctx context.Context, log *slog.Logger, w http.ResponseWriter, body []byte) error {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		return api.serveBatch(ctx, log, w, trimmed)
	}

	req, eo := parseRequest(trimmed)
	if eo != nil {
		return writeJSON(w, http.StatusOK, errorResponse(req.ID, eo))
	}

	if req.Notification() {
		// Fire and forget; the client owes nothing and gets nothing.
		api.dispatch(ctx, log, req)
		w.WriteHeader(http.StatusOK)
		return nil
	}

	resp, _ := api.dispatch(ctx, log, req)
	return writeJSON(w, http.StatusOK, resp)
}

func (api *Api) serveBatch(ctx context.Context, log *slog.Logger, w http.ResponseWriter, body []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		eo := &ErrorObject{Code: CodeParseError, Message: "Parse error"}
		return writeJSON(w, http.StatusOK, errorResponse(nil, eo))
	}
	if len(raws) == 0 {
		eo := &ErrorObject{Code: CodeInvalidRequest, Message: "Invalid Request"}
		return writeJSON(w, http.StatusOK, errorResponse(nil, eo))
	}

	responses := make([]*Response, 0, len(raws))
	for _, raw := range raws {
		req, eo := parseRequest(raw)
		if eo != nil {
			responses = append(responses, errorResponse(req.ID, eo))
			continue
		}
		if req.Notification() {
			api.dispatch(ctx, log, req)
			continue
		}
		resp, _ := api.dispatch(ctx, log, req)
		responses = append(responses, resp)
	}

	if len(responses) == 0 {
		w.WriteHeader(http.StatusOK)
		return nil
	}
	return writeJSON(w, http.StatusOK, responses)
}

// parseRequest decodes one envelope. The returned request always carries
// whatever id could be recovered so errors echo it.
func parseRequest(raw json.RawMessage) (*Request, *ErrorObject) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &Request{ID: json.RawMessage("null")}, &ErrorObject{
			Code:    CodeParseError,
			Message: "Parse error",
		}
	}

	if req.JSONRPC != Version || req.Method == "" {
		id := req.ID
		if id == nil {
			id = json.RawMessage("null")
		}
		return &Request{ID: id}, &ErrorObject{
			Code:    CodeInvalidRequest,
			Message: "Invalid Request",
		}
	}

	return &req, nil
}

// dispatch resolves, validates, invokes and serializes one call. The
// returned status is the per-method path status; the generic path ignores
// it and always sends 200.
func (api *Api) dispatch(ctx context.Context, log *slog.Logger, req *Request) (*Response, int) {
	m, ok := api.methods[req.Method]
	if !ok {
		eo := &ErrorObject{Code: CodeMethodNotFound, Message: "Method not found"}
		return errorResponse(req.ID, eo), statusFor(eo, 0)
	}

	params, eo := api.coerceParams(m, req.Params)
	if eo != nil {
		return errorResponse(req.ID, eo), statusFor(eo, 0)
	}

	result, err := api.invoke(ctx, m, params)
	if err != nil {
		eo, declared := api.mapInvokeError(ctx, log, m, err)
		return errorResponse(req.ID, eo), statusFor(eo, declared)
	}

	raw, err := m.result.Encode(result)
	if err != nil {
		log.ErrorContext(
			ctx,
			"failed to serialize method result",
			slog.String("method", m.name),
			slog.Any("error", err),
		)
		eo := &ErrorObject{
			Code:    CodeInternalError,
			Message: fmt.Sprintf("Unhandled error in method %s", m.name),
			Data: map[string]any{
				"type":    errTypeName(err),
				"message": err.Error(),
			},
		}
		return errorResponse(req.ID, eo), statusFor(eo, 0)
	}

	return resultResponse(req.ID, raw), http.StatusOK
}

// coerceParams validates the parameter object against the method's schema
// and returns the decoded params value. Field failures aggregate into one
// InvalidParams error whose data maps parameter paths to complaints.
func (api *Api) coerceParams(m *Method, raw json.RawMessage) (reflectValue, *ErrorObject) {
	trimmed := json.RawMessage(bytes.TrimSpace(raw))
	empty := len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))

	if m.sig.paramsType == nil {
		if !empty && !bytes.Equal(trimmed, []byte("{}")) && !bytes.Equal(trimmed, []byte("[]")) {
			return reflectValue{}, &ErrorObject{
				Code:    CodeInvalidParams,
				Message: "Invalid params",
				Data:    []string{"method takes no parameters"},
			}
		}
		return reflectValue{}, nil
	}

	if empty {
		trimmed = json.RawMessage("{}")
	}

	if trimmed[0] == '[' {
		named, eo := m.positionalToNamed(trimmed)
		if eo != nil {
			return reflectValue{}, eo
		}
		trimmed = named
	}

	if issues := m.params.Validate(trimmed); issues != nil {
		return reflectValue{}, &ErrorObject{
			Code:    CodeInvalidParams,
			Message: "Invalid params",
			Data:    issues,
		}
	}

	return m.decodeParams(trimmed)
}

// statusFor selects the HTTP status for a per-method path response.
// declared is the http status carried by an application [Error], if any.
func statusFor(eo *ErrorObject, declared int) int {
	if eo == nil {
		return http.StatusOK
	}
	switch eo.Code {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return http.StatusBadRequest
	}
	if declared > 0 {
		return declared
	}
	return http.StatusInternalServerError
}

// invoke runs the method through its invoker, containing panics raised by
// the method body.
func (api *Api) invoke(ctx context.Context, m *Method, params reflectValue) (result any, err error) {
	spanCtx, span := api.tracer.Start(ctx, "Api.invoke")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	call := func(ctx context.Context) (any, error) {
		return m.sig.call(ctx, params.value)
	}

	inv := m.invoker
	if inv == nil {
		inv = api.invoker
	}
	return inv(spanCtx, m, call)
}

// mapInvokeError classifies a method failure. Application errors pass
// through verbatim; anything else is wrapped as an internal error with the
// diagnostic detail in data, never in the headline message.
func (api *Api) mapInvokeError(ctx context.Context, log *slog.Logger, m *Method, err error) (*ErrorObject, int) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return &ErrorObject{
			Code:    appErr.Code,
			Message: appErr.Message,
			Data:    appErr.Data,
		}, appErr.HTTPStatus
	}

	log.ErrorContext(
		ctx,
		"unhandled error in method",
		slog.String("method", m.name),
		slog.Any("error", err),
	)

	return &ErrorObject{
		Code:    CodeInternalError,
		Message: fmt.Sprintf("Unhandled error in method %s", m.name),
		Data: map[string]any{
			"type":    errTypeName(err),
			"message": err.Error(),
		},
	}, 0
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
