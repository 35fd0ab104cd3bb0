package reflectutil

import (
	"reflect"
	"testing"
)

func TestIntegerKinds(t *testing.T) {
	tests := []struct {
		kind     reflect.Kind
		signed   bool
		unsigned bool
	}{
		{reflect.Int, true, false},
		{reflect.Int8, true, false},
		{reflect.Int64, true, false},
		{reflect.Uint, false, true},
		{reflect.Uint16, false, true},
		{reflect.Uintptr, false, true},
		{reflect.Float64, false, false},
		{reflect.String, false, false},
		{reflect.Bool, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := IsSignedKind(tt.kind); got != tt.signed {
				t.Errorf("IsSignedKind(%v) = %v, want %v", tt.kind, got, tt.signed)
			}
			if got := IsUnsignedKind(tt.kind); got != tt.unsigned {
				t.Errorf("IsUnsignedKind(%v) = %v, want %v", tt.kind, got, tt.unsigned)
			}
			if got := IsIntegerKind(tt.kind); got != (tt.signed || tt.unsigned) {
				t.Errorf("IsIntegerKind(%v) = %v", tt.kind, got)
			}
		})
	}
}
