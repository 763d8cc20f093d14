// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/swaggest/jsonschema-go"
)

// Validate checks raw JSON against the derived schema.
//
// It returns nil when raw conforms. Otherwise it returns either a []string
// of complaints about the value itself, or a map[string]any keyed by field
// name whose leaves are []string complaint lists. Nested structured types
// produce nested maps, so a failure on field y of parameter p surfaces
// under data["p"]["y"].
func (s *Schema) Validate(raw json.RawMessage) any {
	return validateSchemaOrBool(s.js.ToSchemaOrBool(), raw)
}

func validateSchemaOrBool(sb jsonschema.SchemaOrBool, raw json.RawMessage) any {
	if sb.TypeBoolean != nil {
		if *sb.TypeBoolean {
			return nil
		}
		return []string{"value not allowed"}
	}

	sch := sb.TypeObject
	if sch == nil || sch.Ref != nil {
		// Unresolvable or intentionally open schema. Recursive types keep
		// their ref even with inlining; decoding still enforces shape.
		return nil
	}

	kind := jsonKind(raw)

	if issues := checkType(sch, kind, raw); issues != nil {
		return issues
	}

	switch kind {
	case "object":
		return validateObject(sch, raw)
	case "array":
		return validateArray(sch, raw)
	}
	return nil
}

func checkType(sch *jsonschema.Schema, kind string, raw json.RawMessage) []string {
	allowed := allowedTypes(sch)
	if len(allowed) == 0 {
		return nil
	}

	for _, t := range allowed {
		if typeMatches(t, kind, raw) {
			return nil
		}
	}

	names := make([]string, len(allowed))
	for i, t := range allowed {
		names[i] = string(t)
	}
	return []string{fmt.Sprintf("expected %s, got %s", strings.Join(names, " or "), kind)}
}

func allowedTypes(sch *jsonschema.Schema) []jsonschema.SimpleType {
	if sch.Type == nil {
		return nil
	}
	if sch.Type.SimpleTypes != nil {
		return []jsonschema.SimpleType{*sch.Type.SimpleTypes}
	}
	return sch.Type.SliceOfSimpleTypeValues
}

func typeMatches(t jsonschema.SimpleType, kind string, raw json.RawMessage) bool {
	switch t {
	case jsonschema.Integer:
		return kind == "number" && isIntegerLiteral(raw)
	case jsonschema.Number:
		return kind == "number"
	default:
		return string(t) == kind
	}
}

func validateObject(sch *jsonschema.Schema, raw json.RawMessage) any {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return []string{"expected object"}
	}

	issues := make(map[string]any)

	for _, name := range sch.Required {
		if _, ok := fields[name]; !ok {
			issues[name] = []string{"missing required field"}
		}
	}

	if len(sch.Properties) > 0 && sch.AdditionalProperties == nil {
		for name := range fields {
			if _, ok := sch.Properties[name]; !ok {
				issues[name] = []string{"unknown field"}
			}
		}
	}

	for name, value := range fields {
		prop, ok := sch.Properties[name]
		if !ok {
			if sch.AdditionalProperties != nil {
				if sub := validateSchemaOrBool(*sch.AdditionalProperties, value); sub != nil {
					issues[name] = sub
				}
			}
			continue
		}
		if sub := validateSchemaOrBool(prop, value); sub != nil {
			issues[name] = sub
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

func validateArray(sch *jsonschema.Schema, raw json.RawMessage) any {
	if sch.Items == nil || sch.Items.SchemaOrBool == nil {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []string{"expected array"}
	}

	issues := make(map[string]any)
	for i, elem := range elems {
		if sub := validateSchemaOrBool(*sch.Items.SchemaOrBool, elem); sub != nil {
			issues[strconv.Itoa(i)] = sub
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

// jsonKind reports the JSON type of the first value in raw.
func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func isIntegerLiteral(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return !bytes.ContainsAny(trimmed, ".eE")
}
