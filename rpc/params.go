// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// reflectValue carries a decoded params value through the pipeline.
type reflectValue struct {
	value reflect.Value
}

// positionalToNamed rewrites array-style params into the equivalent named
// parameter object, matching elements to parameters in declaration order.
func (m *Method) positionalToNamed(raw json.RawMessage) (json.RawMessage, *ErrorObject) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ErrorObject{
			Code:    CodeInvalidParams,
			Message: "Invalid params",
			Data:    []string{"malformed positional params"},
		}
	}

	specs := m.sig.params
	if len(elems) != len(specs) {
		return nil, &ErrorObject{
			Code:    CodeInvalidParams,
			Message: "Invalid params",
			Data:    []string{"invalid number of params"},
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, spec := range specs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(spec.Name)
		if err != nil {
			return nil, &ErrorObject{
				Code:    CodeInvalidParams,
				Message: "Invalid params",
			}
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(elems[i])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// decodeParams coerces a validated parameter object into a fresh params
// struct value.
func (m *Method) decodeParams(raw json.RawMessage) (reflectValue, *ErrorObject) {
	pv := reflect.New(m.sig.paramsType)
	if err := m.params.Decode(raw, pv.Interface()); err != nil {
		return reflectValue{}, &ErrorObject{
			Code:    CodeInvalidParams,
			Message: "Invalid params",
			Data:    []string{err.Error()},
		}
	}
	return reflectValue{value: pv}, nil
}
