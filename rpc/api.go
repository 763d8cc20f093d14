// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexmojaki/instant-api"
	"github.com/alexmojaki/instant-api/internal/schema"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBasePath is where the generic JSON-RPC endpoint lives unless
// overridden with [BasePath].
const DefaultBasePath = "/api/"

// Options holds construction-time configuration for an [Api].
type Options struct {
	log          *slog.Logger
	basePath     string
	auth         Authenticator
	invoker      Invoker
	interceptors []ServerInterceptor
}

// Option sets a value on [Options].
type Option interface {
	ApplyOption(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) ApplyOption(o *Options) {
	f(o)
}

// Logger overrides the default otelslog-backed logger used by the
// request pipeline.
func Logger(l *slog.Logger) Option {
	return optionFunc(func(o *Options) {
		o.log = l
	})
}

// BasePath sets the path prefix for the generic endpoint and all
// per-method routes. A trailing slash is ensured.
func BasePath(p string) Option {
	return optionFunc(func(o *Options) {
		o.basePath = p
	})
}

// Authenticate sets the authentication predicate consulted before any
// request is processed.
func Authenticate(a Authenticator) Option {
	return optionFunc(func(o *Options) {
		o.auth = a
	})
}

// InvokeWith sets the API-wide [Invoker] used for every method call.
func InvokeWith(inv Invoker) Option {
	return optionFunc(func(o *Options) {
		o.invoker = inv
	})
}

// Intercept registers an interceptor around the request pipeline.
// Multiple interceptors execute in the order they were added.
func Intercept(i ServerInterceptor) Option {
	return optionFunc(func(o *Options) {
		o.interceptors = append(o.interceptors, i)
	})
}

// Api is the typed RPC dispatch engine as an [http.Handler].
//
// Every Api provides:
//   - a generic JSON-RPC 2.0 endpoint at POST <base>
//   - a convenience route at POST <base><name> per registered method,
//     accepting a bare parameter object instead of a full envelope
//   - the OpenAPI 3.0 schema of all routes at GET <base>openapi.json
//
// The method registry is built during startup and read-only afterwards,
// so an Api is safe for concurrent use without locking.
type Api struct {
	log    *slog.Logger
	tracer trace.Tracer

	basePath string
	router   *chi.Mux
	spec     *openapi3.Spec

	methods map[string]*Method
	order   []string

	auth         Authenticator
	invoker      Invoker
	interceptors []ServerInterceptor
}

// NewApi initializes an [Api]. The title and version are carried into the
// generated OpenAPI specification.
func NewApi(title, version string, opts ...Option) *Api {
	o := &Options{
		basePath: DefaultBasePath,
		auth:     func(*http.Request) bool { return true },
		invoker:  defaultInvoker,
	}
	for _, opt := range opts {
		opt.ApplyOption(o)
	}
	if o.log == nil {
		o.log = instantapi.Logger("github.com/alexmojaki/instant-api/rpc")
	}

	api := &Api{
		log:      o.log,
		tracer:   otel.Tracer("github.com/alexmojaki/instant-api/rpc"),
		basePath: strings.TrimRight(o.basePath, "/") + "/",
		router:   chi.NewMux(),
		spec: &openapi3.Spec{
			Openapi: "3.0",
			Info: openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
		methods:      make(map[string]*Method),
		auth:         o.auth,
		invoker:      o.invoker,
		interceptors: o.interceptors,
	}

	api.router.Get(api.basePath+"openapi.json", api.serveSpec)

	if err := api.bindGeneric(); err != nil {
		panic(err)
	}

	return api
}

// BasePath returns the normalized path prefix of the API.
func (api *Api) BasePath() string {
	return api.basePath
}

// Method returns the registered method with the given name.
func (api *Api) Method(name string) (*Method, bool) {
	m, ok := api.methods[name]
	return m, ok
}

// Methods returns the registered method names in registration order.
func (api *Api) Methods() []string {
	names := make([]string, len(api.order))
	copy(names, api.order)
	return names
}

// ServeHTTP implements the [http.Handler] interface.
func (api *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *Api) serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	err := enc.Encode(api.spec)
	if err == nil {
		return
	}
	api.log.ErrorContext(
		r.Context(),
		"failed to encode openapi schema to json",
		slog.Any("error", err),
	)
}

// bindGeneric registers the generic JSON-RPC endpoint and its
// documentation entry.
func (api *Api) bindGeneric() error {
	reqDoc, err := schema.RequestEnvelopeDoc()
	if err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("derive request envelope schema: %v", err)}
	}
	successDoc, err := schema.SuccessEnvelopeDoc(nil)
	if err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("derive success envelope schema: %v", err)}
	}
	errorDoc, err := schema.ErrorEnvelopeDoc()
	if err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("derive error envelope schema: %v", err)}
	}

	op := openapi3.Operation{
		Tags:        []string{"JSON-RPC"},
		Summary:     ptr.Ref("Generic JSON-RPC endpoint"),
		RequestBody: jsonRequestBody(reqDoc),
		Responses:   jsonResponses(successDoc, errorDoc),
	}

	if err := api.spec.AddOperation(http.MethodPost, api.basePath, op); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("add generic endpoint to openapi spec: %v", err)}
	}

	return api.mount(api.basePath, api.handlerFor(""))
}

// bindMethod registers the per-method convenience route and its
// documentation entry.
func (api *Api) bindMethod(m *Method) error {
	pattern := api.basePath + m.name

	successDoc, err := schema.SuccessEnvelopeDoc(m.result)
	if err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("derive success schema for %s: %v", m.name, err)}
	}
	errorDoc, err := schema.ErrorEnvelopeDoc()
	if err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("derive error schema for %s: %v", m.name, err)}
	}

	tags := m.tags
	if len(tags) == 0 {
		tags = []string{"Methods"}
	}

	op := openapi3.Operation{
		Tags:      tags,
		Responses: jsonResponses(successDoc, errorDoc),
	}
	if m.summary != "" {
		op.Summary = ptr.Ref(m.summary)
	}
	if m.description != "" {
		op.Description = ptr.Ref(m.description)
	}
	if m.params != nil {
		op.RequestBody = jsonRequestBody(m.params.Doc())
	}
	if len(m.viewAttrs) > 0 {
		op.MapOfAnything = m.viewAttrs
	}

	if err := api.spec.AddOperation(http.MethodPost, pattern, op); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("add %s to openapi spec: %v", m.name, err)}
	}

	return api.mount(pattern, api.handlerFor(m.name))
}

// mount binds a handler into the router, converting route conflicts into
// configuration errors. chi reports conflicts by panicking.
func (api *Api) mount(pattern string, h http.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConfigurationError{Reason: fmt.Sprintf("bind route %s: %v", pattern, r)}
		}
	}()

	api.router.Method(http.MethodPost, pattern, otelhttp.WithRouteTag(pattern, h))
	return nil
}

func jsonRequestBody(doc openapi3.SchemaOrRef) *openapi3.RequestBodyOrRef {
	return &openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				"application/json": {
					Schema: &doc,
				},
			},
		},
	}
}

func jsonResponses(successDoc, errorDoc openapi3.SchemaOrRef) openapi3.Responses {
	return openapi3.Responses{
		MapOfResponseOrRefValues: map[string]openapi3.ResponseOrRef{
			strconv.Itoa(http.StatusOK): {
				Response: &openapi3.Response{
					Description: "Success",
					Content: map[string]openapi3.MediaType{
						"application/json": {
							Schema: &successDoc,
						},
					},
				},
			},
		},
		Default: &openapi3.ResponseOrRef{
			Response: &openapi3.Response{
				Description: "Error",
				Content: map[string]openapi3.MediaType{
					"application/json": {
						Schema: &errorDoc,
					},
				},
			},
		},
	}
}
