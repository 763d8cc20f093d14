// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// ParamSpec describes one named parameter of a registered method.
type ParamSpec struct {
	// Name is the wire name, taken from the field's json tag.
	Name string

	// Type is the parameter's Go type.
	Type reflect.Type

	// Field is the index of the backing struct field.
	Field int
}

// signature is the resolved shape of a registered callable.
//
// Accepted shapes, with the context argument optional:
//
//	func(ctx context.Context, params P) (R, error)
//	func(ctx context.Context) (R, error)
//
// P must be a struct or pointer to struct; its fields are the method's
// named parameters. R is the return type and may be any value type.
type signature struct {
	fn         reflect.Value
	takesCtx   bool
	paramsType reflect.Type // struct type; nil when the method takes no params
	paramsPtr  bool
	returnType reflect.Type
	params     []ParamSpec
}

func inspect(fn any) (*signature, error) {
	if fn == nil {
		return nil, &SignatureError{Reason: "callable is nil"}
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, &SignatureError{Reason: fmt.Sprintf("%T is not a function", fn)}
	}

	ft := v.Type()

	if ft.NumOut() != 2 || ft.Out(1) != errType {
		return nil, &SignatureError{Reason: "return values must be (result, error)"}
	}
	if ft.Out(0) == errType {
		return nil, &SignatureError{Reason: "result slot must carry a value type, not error"}
	}

	sig := &signature{
		fn:         v,
		returnType: ft.Out(0),
	}

	in := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		sig.takesCtx = true
		in = 1
	}

	switch ft.NumIn() - in {
	case 0:
	case 1:
		pt := ft.In(in)
		if pt.Kind() == reflect.Pointer {
			sig.paramsPtr = true
			pt = pt.Elem()
		}
		if pt.Kind() != reflect.Struct {
			return nil, &SignatureError{
				Reason: fmt.Sprintf("parameter %d must be a struct of named parameters, got %s", in, ft.In(in)),
			}
		}
		sig.paramsType = pt
		sig.params = paramSpecs(pt)
	default:
		return nil, &SignatureError{Reason: "parameters must be declared as fields of a single struct"}
	}

	return sig, nil
}

// paramSpecs extracts the ordered parameter list from a params struct.
func paramSpecs(t reflect.Type) []ParamSpec {
	specs := make([]ParamSpec, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" || field.Name == "_" {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		specs = append(specs, ParamSpec{
			Name:  name,
			Type:  field.Type,
			Field: i,
		})
	}
	return specs
}

// call invokes the underlying function with already coerced params.
// params must be the reflect.New value of paramsType; it is ignored for
// parameterless methods.
func (sig *signature) call(ctx context.Context, params reflect.Value) (any, error) {
	in := make([]reflect.Value, 0, 2)
	if sig.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	if sig.paramsType != nil {
		if sig.paramsPtr {
			in = append(in, params)
		} else {
			in = append(in, params.Elem())
		}
	}

	out := sig.fn.Call(in)

	var err error
	if !out[1].IsNil() {
		err = out[1].Interface().(error)
	}
	return out[0].Interface(), err
}
