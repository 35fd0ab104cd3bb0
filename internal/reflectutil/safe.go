package reflectutil

import (
	"reflect"
	"sort"
)

// IndexSafe safely indexes into a reflect.Value.
// Returns the value at index i if v is valid and i is within bounds,
// otherwise returns an invalid reflect.Value.
func IndexSafe(v reflect.Value, i int) reflect.Value {
	if v.IsValid() && i >= 0 && i < v.Len() {
		return v.Index(i)
	}
	return reflect.Value{}
}

// IsNillable returns true if the given kind can hold a nil value.
func IsNillable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Ptr,
		reflect.Interface,
		reflect.Slice,
		reflect.Map,
		reflect.Chan,
		reflect.Func:
		return true
	default:
		return false
	}
}

// IsNilValue safely checks if a reflect.Value is nil.
// Returns true if the value is invalid, or if its kind can hold nil and it
// is nil. Non-nillable kinds (int, string, struct, ...) are never nil.
func IsNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	return IsNillable(v.Kind()) && v.IsNil()
}

// UnwrapToConcreteValue unwraps pointers and interfaces to get to the concrete value.
// Returns an invalid reflect.Value if a nil pointer or interface is met on the way.
//
// Example:
//
//	var x **int
//	v := reflect.ValueOf(x)
//	concrete := UnwrapToConcreteValue(v) // returns the int value (if not nil)
func UnwrapToConcreteValue(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// NewZeroOrPointerValue creates a new reflect.Value based on the type.
// If t is a pointer type, it creates a pointer to a new zero value: reflect.New(t.Elem())
// If t is a non-pointer type, it creates a zero value: reflect.Zero(t)
func NewZeroOrPointerValue(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem())
	}
	return reflect.Zero(t)
}

// SortedMapKeys returns the keys of a map with string-kinded keys, sorted.
// Output built from Go maps must not depend on map iteration order.
func SortedMapKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
