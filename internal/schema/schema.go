// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package schema turns Go types into wire schemas.
//
// It wraps the swaggest jsonschema reflector so the rest of the module can
// treat "type -> (validator, serializer, doc fragment)" as a single
// capability. The derived JSON Schema is the source of truth for request
// validation and for the OpenAPI documentation fragments.
package schema

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// Schema is a validator/serializer pair derived from a Go type.
type Schema struct {
	rt reflect.Type
	js jsonschema.Schema
}

// requireNonOptional marks every non-pointer field without an omitempty
// json tag as required. The reflector only honours explicit required tags,
// which would make every parameter optional on the wire.
var requireNonOptional = jsonschema.InterceptProp(func(p jsonschema.InterceptPropParams) error {
	if !p.Processed {
		return nil
	}
	if p.Field.Type.Kind() == reflect.Pointer {
		return nil
	}
	if strings.Contains(p.Field.Tag.Get("json"), ",omitempty") {
		return nil
	}
	if p.ParentSchema == nil {
		return nil
	}
	for _, name := range p.ParentSchema.Required {
		if name == p.Name {
			return nil
		}
	}
	p.ParentSchema.Required = append(p.ParentSchema.Required, p.Name)
	return nil
})

// New derives a [Schema] for t. Pointer types are resolved to their
// element type before reflection.
func New(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var reflector jsonschema.Reflector
	js, err := reflector.Reflect(
		reflect.Zero(t).Interface(),
		jsonschema.InlineRefs,
		requireNonOptional,
	)
	if err != nil {
		return nil, err
	}

	return &Schema{
		rt: t,
		js: js,
	}, nil
}

// Type returns the Go type this schema was derived from.
func (s *Schema) Type() reflect.Type {
	return s.rt
}

// JSONSchema returns the derived JSON Schema.
func (s *Schema) JSONSchema() jsonschema.Schema {
	return s.js
}

// Doc returns the schema as an OpenAPI 3.0 fragment.
func (s *Schema) Doc() openapi3.SchemaOrRef {
	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(s.js.ToSchemaOrBool())
	return schemaOrRef
}

// Decode converts raw JSON into a native value. The destination must be a
// pointer to the schema's type. Decode assumes raw has already passed
// [Schema.Validate].
func (s *Schema) Decode(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}

// Encode serializes a native value into JSON-safe data.
func (s *Schema) Encode(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

type requestEnvelope struct {
	Jsonrpc string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
	ID      *int           `json:"id,omitempty"`
}

type successEnvelope struct {
	Jsonrpc string         `json:"jsonrpc"`
	Result  map[string]any `json:"result,omitempty"`
	ID      *int           `json:"id,omitempty"`
}

type errorDetail struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type errorEnvelope struct {
	Jsonrpc string      `json:"jsonrpc"`
	Error   errorDetail `json:"error"`
	ID      *int        `json:"id,omitempty"`
}

func reflectDoc(v any) (openapi3.SchemaOrRef, error) {
	var reflector jsonschema.Reflector

	js, err := reflector.Reflect(v, jsonschema.InlineRefs)
	if err != nil {
		return openapi3.SchemaOrRef{}, err
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(js.ToSchemaOrBool())
	return schemaOrRef, nil
}

// RequestEnvelopeDoc documents the request body accepted by the generic
// JSON-RPC endpoint.
func RequestEnvelopeDoc() (openapi3.SchemaOrRef, error) {
	return reflectDoc(requestEnvelope{})
}

// ErrorEnvelopeDoc documents the error response envelope.
func ErrorEnvelopeDoc() (openapi3.SchemaOrRef, error) {
	return reflectDoc(errorEnvelope{})
}

// SuccessEnvelopeDoc documents the success response envelope. When result
// is non-nil its schema replaces the generic result placeholder.
func SuccessEnvelopeDoc(result *Schema) (openapi3.SchemaOrRef, error) {
	var reflector jsonschema.Reflector

	js, err := reflector.Reflect(successEnvelope{}, jsonschema.InlineRefs)
	if err != nil {
		return openapi3.SchemaOrRef{}, err
	}

	if result != nil {
		resultSchema := result.JSONSchema()
		js.Properties["result"] = resultSchema.ToSchemaOrBool()
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(js.ToSchemaOrBool())
	return schemaOrRef, nil
}
