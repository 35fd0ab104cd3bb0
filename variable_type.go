package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/llehouerou/go-graphql-builder/internal/reflectutil"
)

// ErrUnknownType is returned when no GraphQL type can be inferred for a Go type.
var ErrUnknownType = errors.New("cannot infer GraphQL type")

// VariableFor makes a reference to the variable name, with a type inferred
// from the Go value v.
//
// E.g., VariableFor("ids", []int{1}) -> Variable{Name: "ids", Type: "[Int!]!"}.
func VariableFor(name string, v any) (Variable, error) {
	typ, err := TypeOf(v)
	if err != nil {
		return Variable{}, fmt.Errorf("failed to infer type of variable `%s`: %w", name, err)
	}
	return Variable{Name: name, Type: typ}, nil
}

// TypeOf returns the GraphQL type reference matching the Go type of v.
// Values are required types ("Int!"); pointers are optional ("Int").
// Named struct types map to the input type of the same name, and types
// implementing types.GraphQLType provide their own name.
func TypeOf(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: nil", ErrUnknownType)
	}
	var buf bytes.Buffer
	if err := writeArgumentType(&buf, reflect.TypeOf(v), v, true); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeArgumentType writes a GraphQL type for t to w.
// value indicates whether t is a value (required) type or pointer (optional) type.
// If value is true, then "!" is written at the end of t.
func writeArgumentType(w io.Writer, t reflect.Type, v any, value bool) error {
	if reflectutil.ImplementsGraphQLType(t) {
		value = t.Kind() != reflect.Ptr
		var typeName string
		var ok bool

		// Try to use the actual value first if provided
		if v != nil {
			typeName, ok = reflectutil.GetGraphQLType(reflect.ValueOf(v), t)
		}
		if !ok {
			typeName, ok = reflectutil.GetGraphQLTypeFromType(t)
		}

		if ok {
			_, _ = io.WriteString(w, typeName)
			if value {
				_, _ = io.WriteString(w, "!")
			}
			return nil
		}
	}

	if t.Kind() == reflect.Ptr {
		// Pointer is an optional type, so no "!" at the end of the pointer's underlying type.
		return writeArgumentType(w, t.Elem(), nil, false)
	}

	switch {
	case t.Implements(valueInterface):
		// Literals such as Enum carry no schema type name.
		return fmt.Errorf("%w: literal %v", ErrUnknownType, t)
	case reflectutil.IsIntegerKind(t.Kind()):
		_, _ = io.WriteString(w, "Int")
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		// List. E.g., "[Int!]".
		_, _ = io.WriteString(w, "[")
		if err := writeArgumentType(w, t.Elem(), nil, true); err != nil {
			return err
		}
		_, _ = io.WriteString(w, "]")
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		_, _ = io.WriteString(w, "Float")
	case t.Kind() == reflect.Bool:
		_, _ = io.WriteString(w, "Boolean")
	case t.Kind() == reflect.String && t.PkgPath() == "":
		_, _ = io.WriteString(w, "String")
	default:
		n := t.Name()
		if n == "" {
			return fmt.Errorf("%w: %v", ErrUnknownType, t)
		}
		_, _ = io.WriteString(w, n)
	}

	if value {
		// Value is a required type, so add "!" to the end.
		_, _ = io.WriteString(w, "!")
	}
	return nil
}

var valueInterface = reflect.TypeOf((*Value)(nil)).Elem()
