package graphql

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/go-graphql-builder/internal/reflectutil"
	"github.com/llehouerou/go-graphql-builder/types"
)

// ErrUnsupportedValue is returned when a Go value cannot be classified as
// one of the GraphQL literal shapes.
var ErrUnsupportedValue = errors.New("unsupported GraphQL value")

// Value is a GraphQL input value. The set of implementations is closed:
// Null, Boolean, Int, Float, String, List, Object, Enum and Variable.
type Value interface {
	isValue()
}

// Null is the GraphQL null literal.
type Null struct{}

// Boolean is a GraphQL boolean literal.
type Boolean bool

// Int is a GraphQL integer literal.
type Int int64

// Float is a GraphQL float literal.
type Float float64

// String is a GraphQL string literal. It is always written quoted and escaped.
type String string

// List is a GraphQL list literal.
type List []Value

// Object is a GraphQL input object literal. Field order is preserved.
type Object []ObjectField

// ObjectField is a single name/value entry of an Object.
type ObjectField struct {
	Name  string
	Value Value
}

// Enum is a GraphQL enum literal. It is written verbatim, without quotes.
type Enum string

// Variable is a reference to an operation variable. Only the name is
// written, as "$name"; Type is the declared GraphQL type reference.
type Variable struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (Null) isValue()     {}
func (Boolean) isValue()  {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (String) isValue()   {}
func (List) isValue()     {}
func (Object) isValue()   {}
func (Enum) isValue()     {}
func (Variable) isValue() {}

// NewEnum makes an enum literal for use in arguments.
func NewEnum(value string) Enum {
	return Enum(value)
}

// NewVariable makes a reference to the variable name of GraphQL type typ.
func NewVariable(name, typ string) Variable {
	return Variable{Name: name, Type: typ}
}

// ID represents the GraphQL ID scalar.
type ID string

// GetGraphQLType implements types.GraphQLType.
func (ID) GetGraphQLType() string {
	return "ID"
}

// ValueOf converts plain Go data into a Value.
//
// Accepted shapes are nil, booleans, integers, floats, json.Number, strings,
// encoding.TextMarshaler implementations, slices and arrays, [][2]any ordered
// pairs, maps with string keys (sorted by key), structs (fields named by the
// "graphql" tag) and Value implementations, which pass through unchanged.
func ValueOf(v any) (Value, error) {
	return valueOf(reflect.ValueOf(v))
}

func valueOf(rv reflect.Value) (Value, error) {
	if reflectutil.IsNilValue(rv) {
		if rv.IsValid() && rv.Kind() == reflect.Slice {
			if rv.CanInterface() {
				if v, ok := rv.Interface().(Value); ok {
					return v, nil
				}
			}
			return List{}, nil
		}
		return Null{}, nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		// MarshalText may only be in the pointer's method set.
		if m, ok := textMarshaler(rv); ok {
			return marshalText(rv.Type(), m)
		}
		return valueOf(rv.Elem())
	case reflect.Interface:
		return valueOf(rv.Elem())
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case Value:
			return x, nil
		case json.Number:
			return numberValue(x)
		case [][2]any:
			return objectFromPairs(x)
		case encoding.TextMarshaler:
			return marshalText(rv.Type(), x)
		}
	}
	if rv.CanAddr() {
		if m, ok := textMarshaler(rv.Addr()); ok {
			return marshalText(rv.Type(), m)
		}
	}

	kind := rv.Kind()
	switch {
	case kind == reflect.Bool:
		return Boolean(rv.Bool()), nil
	case kind == reflect.String:
		return stringValue(rv.String())
	case reflectutil.IsSignedKind(kind):
		return Int(rv.Int()), nil
	case reflectutil.IsUnsignedKind(kind):
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: integer %d overflows int64", ErrUnsupportedValue, u)
		}
		return Int(u), nil
	case kind == reflect.Float32 || kind == reflect.Float64:
		return floatValue(rv.Float())
	case kind == reflect.Slice || kind == reflect.Array:
		return listValue(rv)
	case kind == reflect.Map:
		return mapValue(rv)
	case kind == reflect.Struct:
		return structValue(rv)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, rv.Type())
}

func textMarshaler(rv reflect.Value) (encoding.TextMarshaler, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	m, ok := rv.Interface().(encoding.TextMarshaler)
	return m, ok
}

func marshalText(t reflect.Type, m encoding.TextMarshaler) (Value, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %v as text: %w", t, err)
	}
	return stringValue(string(text))
}

// stringValue rejects strings that are not valid UTF-8: GraphQL strings are
// Unicode and such bytes cannot be written back unchanged.
func stringValue(s string) (Value, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8 in string %q", ErrUnsupportedValue, s)
	}
	return String(s), nil
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite float %v", ErrUnsupportedValue, f)
	}
	return Float(f), nil
}

func numberValue(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed number %q", ErrUnsupportedValue, n)
	}
	return floatValue(f)
}

func listValue(rv reflect.Value) (Value, error) {
	list := make(List, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := valueOf(reflectutil.IndexSafe(rv, i))
		if err != nil {
			return nil, fmt.Errorf("failed to convert list item %d: %w", i, err)
		}
		list = append(list, item)
	}
	return list, nil
}

// objectFromPairs handles [][2]any like an ordered map.
func objectFromPairs(pairs [][2]any) (Value, error) {
	obj := make(Object, 0, len(pairs))
	for _, pair := range pairs {
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf(
				"%w: expected pair (string, value), got key %v (%T)",
				ErrUnsupportedValue,
				pair[0],
				pair[0],
			)
		}
		val, err := ValueOf(pair[1])
		if err != nil {
			return nil, fmt.Errorf("failed to convert field `%s`: %w", name, err)
		}
		obj = append(obj, ObjectField{Name: name, Value: val})
	}
	return obj, nil
}

// mapValue converts a map with string keys. Keys are sorted alphabetically
// for deterministic output; use [][2]any or Object to control the order.
func mapValue(rv reflect.Value) (Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: map key type %v is not a string", ErrUnsupportedValue, rv.Type().Key())
	}
	keys := reflectutil.SortedMapKeys(rv)
	obj := make(Object, 0, len(keys))
	for _, k := range keys {
		val, err := valueOf(rv.MapIndex(k))
		if err != nil {
			return nil, fmt.Errorf("failed to convert field `%s`: %w", k.String(), err)
		}
		obj = append(obj, ObjectField{Name: k.String(), Value: val})
	}
	return obj, nil
}

func structValue(rv reflect.Value) (Value, error) {
	if !hasVisibleField(rv.Type()) {
		return nil, fmt.Errorf("%w: %v has no exported fields", ErrUnsupportedValue, rv.Type())
	}
	obj := Object{}
	if err := appendStructFields(&obj, rv); err != nil {
		return nil, err
	}
	return obj, nil
}

// hasVisibleField reports whether t is an empty struct or has at least one
// exported or embedded field. Opaque structs such as big.Int have neither.
func hasVisibleField(t reflect.Type) bool {
	if t.NumField() == 0 {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() || f.Anonymous {
			return true
		}
	}
	return false
}

// appendStructFields writes the exported fields of the struct rv to obj.
// Untagged embedded structs are inlined into the parent object.
func appendStructFields(obj *Object, rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fieldVal := rv.Field(i)

		tag, tagged := f.Tag.Lookup(types.GraphQLTag)
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}

		if f.Anonymous && name == "" {
			embedded := reflectutil.UnwrapToConcreteValue(fieldVal)
			if embedded.IsValid() && embedded.Kind() == reflect.Struct {
				if err := appendStructFields(obj, embedded); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if tagged && hasTagOption(opts, types.OmitEmptyOption) && fieldVal.IsZero() {
			continue
		}
		if name == "" {
			name = strcase.ToLowerCamel(f.Name)
		}

		val, err := valueOf(fieldVal)
		if err != nil {
			return fmt.Errorf("failed to convert struct field `%v`: %w", f.Name, err)
		}
		*obj = append(*obj, ObjectField{Name: name, Value: val})
	}
	return nil
}

func hasTagOption(opts, option string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == option {
			return true
		}
	}
	return false
}
