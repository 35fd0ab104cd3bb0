package reflectutil

import "reflect"

// IsSignedKind reports whether kind is one of the signed integer kinds.
func IsSignedKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// IsUnsignedKind reports whether kind is one of the unsigned integer kinds.
func IsUnsignedKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// IsIntegerKind reports whether kind is a signed or unsigned integer kind.
func IsIntegerKind(kind reflect.Kind) bool {
	return IsSignedKind(kind) || IsUnsignedKind(kind)
}
