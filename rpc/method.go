// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexmojaki/instant-api/internal/schema"
)

// reservedPrefix marks method names that must never be exposed.
const reservedPrefix = "_"

// Method is a callable exposed over the network together with its derived
// schemas and documentation metadata. Methods are created at registration
// time and immutable afterwards.
type Method struct {
	name        string
	summary     string
	description string
	tags        []string
	viewAttrs   map[string]any
	invoker     Invoker

	sig    *signature
	params *schema.Schema // nil for parameterless methods
	result *schema.Schema
}

// Name returns the wire name of the method.
func (m *Method) Name() string { return m.name }

// Summary returns the one-line summary shown in the documentation overview.
func (m *Method) Summary() string { return m.summary }

// Description returns the expanded documentation text.
func (m *Method) Description() string { return m.description }

// Params returns the ordered parameter specs of the method.
func (m *Method) Params() []ParamSpec { return m.sig.params }

// ReturnType returns the method's declared return type.
func (m *Method) ReturnType() reflect.Type { return m.sig.returnType }

// MethodOptions holds per-method registration configuration.
type MethodOptions struct {
	summary     string
	description string
	tags        []string
	viewAttrs   map[string]any
	invoker     Invoker
}

// MethodOption sets a value on [MethodOptions].
type MethodOption func(*MethodOptions)

// Summary sets the one-line summary shown in the documentation overview.
func Summary(s string) MethodOption {
	return func(mo *MethodOptions) {
		mo.summary = s
	}
}

// Description sets the expanded text shown when the documentation entry
// is unfolded.
func Description(s string) MethodOption {
	return func(mo *MethodOptions) {
		mo.description = s
	}
}

// Doc sets summary and description from a single docstring-style text:
// the first line becomes the summary, the rest the description. Explicit
// [Summary] and [Description] options win over Doc.
func Doc(s string) MethodOption {
	return func(mo *MethodOptions) {
		first, rest, _ := strings.Cut(strings.TrimSpace(s), "\n")
		if mo.summary == "" {
			mo.summary = strings.TrimSpace(first)
		}
		if mo.description == "" {
			mo.description = strings.TrimSpace(rest)
		}
	}
}

// Tags sets the documentation section(s) the method appears under.
// The default is "Methods".
func Tags(tags ...string) MethodOption {
	return func(mo *MethodOptions) {
		mo.tags = tags
	}
}

// ViewAttr merges an arbitrary presentation attribute into the generated
// documentation operation. Keys must be OpenAPI extension keys ("x-...").
func ViewAttr(key string, value any) MethodOption {
	return func(mo *MethodOptions) {
		if mo.viewAttrs == nil {
			mo.viewAttrs = make(map[string]any)
		}
		mo.viewAttrs[key] = value
	}
}

// WrapInvocation sets a per-method [Invoker] which overrides the
// API-wide one.
func WrapInvocation(inv Invoker) MethodOption {
	return func(mo *MethodOptions) {
		mo.invoker = inv
	}
}

func newMethod(name string, fn any, opts ...MethodOption) (*Method, error) {
	if name == "" {
		return nil, &ConfigurationError{Reason: "method name must not be empty"}
	}
	if strings.HasPrefix(name, reservedPrefix) {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("method name %q uses the reserved private prefix %q", name, reservedPrefix),
		}
	}

	mo := &MethodOptions{}
	for _, opt := range opts {
		opt(mo)
	}

	sig, err := inspect(fn)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	m := &Method{
		name:        name,
		summary:     mo.summary,
		description: mo.description,
		tags:        mo.tags,
		viewAttrs:   mo.viewAttrs,
		invoker:     mo.invoker,
		sig:         sig,
	}

	if sig.paramsType != nil {
		m.params, err = schema.New(sig.paramsType)
		if err != nil {
			return nil, fmt.Errorf("register %s: derive parameter schema: %w", name, err)
		}
	}

	m.result, err = schema.New(sig.returnType)
	if err != nil {
		return nil, fmt.Errorf("register %s: derive result schema: %w", name, err)
	}

	return m, nil
}

// Register exposes fn under the given name. fn must match the supported
// callable shape (see the package docs); otherwise a [SignatureError] is
// returned before any request can reach the method. Names starting with
// "_" are reserved and rejected with a [ConfigurationError].
func (api *Api) Register(name string, fn any, opts ...MethodOption) error {
	m, err := newMethod(name, fn, opts...)
	if err != nil {
		return err
	}

	if _, exists := api.methods[name]; exists {
		return &DuplicateMethodError{Name: name}
	}

	if err := api.bindMethod(m); err != nil {
		return err
	}

	api.methods[name] = m
	api.order = append(api.order, name)
	return nil
}

// RegisterObject exposes every exported method of obj under its own name,
// with the first rune lowered (Translate becomes "translate"). Unexported
// methods are invisible to reflection and therefore never registered;
// non-method attributes are ignored. Any exported method with an
// unsupported signature aborts registration.
func (api *Api) RegisterObject(obj any, opts ...MethodOption) error {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return &ConfigurationError{Reason: "cannot register nil object"}
	}

	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		mi := t.Method(i)
		if !mi.IsExported() {
			continue
		}

		err := api.Register(wireName(mi.Name), v.Method(i).Interface(), opts...)
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterNew constructs a zero value of T and registers its methods as
// [Api.RegisterObject] does. T must be usable as a bare zero value; types
// needing constructor arguments should be built by the caller and passed
// to RegisterObject instead.
func RegisterNew[T any](api *Api, opts ...MethodOption) error {
	var v T
	return api.RegisterObject(&v, opts...)
}

// wireName lowers the first rune of an exported Go method name.
func wireName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}
