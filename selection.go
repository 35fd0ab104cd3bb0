package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/llehouerou/go-graphql-builder/internal/reflectutil"
)

// ErrUnsupportedSelection is returned when a Go value cannot be read as a
// selection set.
var ErrUnsupportedSelection = errors.New("unsupported selection set")

// Field is a selected field with an optional nested selection set.
// A field with an empty selection is a leaf.
type Field struct {
	Name      string
	Selection SelectionSet
}

// SelectionSet is an ordered list of selected fields.
type SelectionSet []Field

// Fields makes a flat selection set of leaf fields.
func Fields(names ...string) SelectionSet {
	s := make(SelectionSet, 0, len(names))
	for _, name := range names {
		s = append(s, Field{Name: name})
	}
	return s
}

// Select makes a field selecting the given nested fields.
func Select(name string, selection ...Field) Field {
	return Field{Name: name, Selection: selection}
}

func (f Field) clone() Field {
	return Field{Name: f.Name, Selection: f.Selection.clone()}
}

func (s SelectionSet) clone() SelectionSet {
	if len(s) == 0 {
		return nil
	}
	out := make(SelectionSet, len(s))
	for i, f := range s {
		out[i] = f.clone()
	}
	return out
}

// String returns the brace-delimited selection text, or "" when s is empty.
func (s SelectionSet) String() string {
	var buf bytes.Buffer
	writeSelection(&buf, s)
	return buf.String()
}

// SelectionOf converts plain Go data into a SelectionSet.
//
// Accepted shapes are nil, SelectionSet, Field, a single field name, []string,
// [][2]any ordered pairs of field name and nested selection, maps from field
// name to nested selection (sorted by name), and []any mixing any of these.
//
// E.g., []any{"id", [2]any{"posts", []string{"title"}}} -> "{ id posts { title } }".
func SelectionOf(v any) (SelectionSet, error) {
	var s SelectionSet
	if err := appendSelection(&s, v); err != nil {
		return nil, err
	}
	return s, nil
}

func appendSelection(s *SelectionSet, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case SelectionSet:
		*s = append(*s, x.clone()...)
		return nil
	case Field:
		*s = append(*s, x.clone())
		return nil
	case string:
		*s = append(*s, Field{Name: x})
		return nil
	case []string:
		*s = append(*s, Fields(x...)...)
		return nil
	case [2]any:
		return appendSelectionPair(s, x[0], x[1])
	case [][2]any:
		for _, pair := range x {
			if err := appendSelectionPair(s, pair[0], pair[1]); err != nil {
				return err
			}
		}
		return nil
	}
	return appendReflectSelection(s, reflect.ValueOf(v))
}

// appendReflectSelection handles the generic slice and map shapes, such as
// []any, []Field or map[string]any.
func appendReflectSelection(s *SelectionSet, rv reflect.Value) error {
	if reflectutil.IsNilValue(rv) {
		return nil
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return appendSelection(s, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := appendSelection(s, reflectutil.IndexSafe(rv, i).Interface()); err != nil {
				return fmt.Errorf("failed to read selection item %d: %w", i, err)
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key type %v is not a string", ErrUnsupportedSelection, rv.Type().Key())
		}
		for _, k := range reflectutil.SortedMapKeys(rv) {
			if err := appendSelectionPair(s, k.String(), rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		*s = append(*s, Field{Name: rv.String()})
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedSelection, rv.Type())
}

func appendSelectionPair(s *SelectionSet, key, nested any) error {
	name, ok := key.(string)
	if !ok {
		return fmt.Errorf(
			"%w: expected pair (string, selection), got key %v (%T)",
			ErrUnsupportedSelection,
			key,
			key,
		)
	}
	sub, err := SelectionOf(nested)
	if err != nil {
		return fmt.Errorf("failed to read selection of `%s`: %w", name, err)
	}
	*s = append(*s, Field{Name: name, Selection: sub})
	return nil
}

// writeSelection writes "{ a b nested { c } }" for s. Nothing is written
// for an empty selection set.
func writeSelection(buf *bytes.Buffer, s SelectionSet) {
	if len(s) == 0 {
		return
	}
	buf.WriteString("{ ")
	for i, f := range s {
		if i != 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(f.Name)
		if len(f.Selection) > 0 {
			buf.WriteByte(' ')
			writeSelection(buf, f.Selection)
		}
	}
	buf.WriteString(" }")
}
