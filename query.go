package graphql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/llehouerou/go-graphql-builder/internal/reflectutil"
	"github.com/llehouerou/go-graphql-builder/types"
)

// ErrInvalidOperation is returned for an operation type other than query
// or mutation.
var ErrInvalidOperation = errors.New("invalid operation type")

// OperationType is the kind of a GraphQL operation.
type OperationType uint8

const (
	QueryOperation OperationType = iota
	MutationOperation
)

// String returns the operation keyword.
func (o OperationType) String() string {
	switch o {
	case QueryOperation:
		return types.QueryKeyword
	case MutationOperation:
		return types.MutationKeyword
	}
	return fmt.Sprintf("OperationType(%d)", uint8(o))
}

// Query is a single-field GraphQL operation. It is immutable: the text is
// produced once by NewQuery and accessors return copies.
type Query struct {
	operation OperationType
	field     string
	arguments Object
	selection SelectionSet
	text      string
}

// NewQuery builds an operation invoking field with the given arguments and
// selection set.
//
// arguments must be mapping-shaped (nil, Object, [][2]any, a map with string
// keys or a struct) and is converted with ValueOf. selection is converted with
// SelectionOf. Shapes that cannot be classified are reported here.
func NewQuery(
	op OperationType,
	field string,
	arguments any,
	selection any,
) (*Query, error) {
	if op != QueryOperation && op != MutationOperation {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, op)
	}

	args, err := argumentsOf(arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to convert arguments of `%s`: %w", field, err)
	}
	sel, err := SelectionOf(selection)
	if err != nil {
		return nil, fmt.Errorf("failed to convert selection of `%s`: %w", field, err)
	}

	q := &Query{
		operation: op,
		field:     field,
		arguments: args,
		selection: sel,
	}
	q.text, err = q.write()
	if err != nil {
		return nil, fmt.Errorf("failed to write %v `%s`: %w", op, field, err)
	}
	return q, nil
}

// argumentsOf converts arguments to an Object. An empty list is accepted
// as empty arguments.
func argumentsOf(arguments any) (Object, error) {
	val, err := ValueOf(arguments)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case Null:
		return nil, nil
	case Object:
		return cloneObject(v), nil
	case List:
		if len(v) == 0 {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: arguments must be an input object, got %T", ErrUnsupportedValue, val)
}

// write produces "<op> { <field>(<args>) <selection> }".
func (q *Query) write() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(q.operation.String())
	buf.WriteString(" { ")
	buf.WriteString(q.field)
	if len(q.arguments) > 0 {
		buf.WriteByte('(')
		if err := writeObjectFields(&buf, q.arguments); err != nil {
			return "", err
		}
		buf.WriteByte(')')
	}
	if len(q.selection) > 0 {
		buf.WriteByte(' ')
		writeSelection(&buf, q.selection)
	}
	buf.WriteString(" }")
	return buf.String(), nil
}

// Text returns the operation text, ready to be posted.
func (q *Query) Text() string {
	return q.text
}

// String implements fmt.Stringer and returns the operation text.
func (q *Query) String() string {
	return q.text
}

// Operation returns the operation type.
func (q *Query) Operation() OperationType {
	return q.operation
}

// Field returns the root field name.
func (q *Query) Field() string {
	return q.field
}

// Arguments returns a copy of the root field arguments.
func (q *Query) Arguments() Object {
	return cloneObject(q.arguments)
}

// Selection returns a copy of the selection set.
func (q *Query) Selection() SelectionSet {
	return q.selection.clone()
}

// Variables returns the distinct variables referenced by the arguments, in
// order of first use. The operation text does not declare them.
func (q *Query) Variables() []Variable {
	var vars []Variable
	seen := map[string]bool{}
	var walk func(v Value)
	walk = func(v Value) {
		switch v := v.(type) {
		case Variable:
			if !seen[v.Name] {
				seen[v.Name] = true
				vars = append(vars, v)
			}
		case List:
			for _, item := range v {
				walk(item)
			}
		case Object:
			for _, f := range v {
				walk(f.Value)
			}
		}
	}
	walk(q.arguments)
	return vars
}

func cloneObject(obj Object) Object {
	if len(obj) == 0 {
		return nil
	}
	out := make(Object, len(obj))
	for i, f := range obj {
		out[i] = ObjectField{Name: f.Name, Value: cloneValue(f.Value)}
	}
	return out
}

func cloneValue(v Value) Value {
	switch v := v.(type) {
	case Object:
		return cloneObject(v)
	case List:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// ResolveArgumentsAndSelection uses arguments as the selection set when no
// selection is given, leaving the arguments empty. Otherwise both are
// returned unchanged.
//
// A nil interface and a typed nil (nil slice, map or pointer) both mean "not
// given". An empty but non-nil selection, such as SelectionSet{}, counts as
// given.
func ResolveArgumentsAndSelection(arguments, selection any) (any, any) {
	if reflectutil.IsNilValue(reflect.ValueOf(selection)) {
		return nil, arguments
	}
	return arguments, selection
}

// MakeQuery makes, but does not post, a query. If selection is nil, then
// arguments is interpreted as the selection.
//
//	MakeQuery("users", []string{"id", "name"}, nil) // query { users { id name } }
func MakeQuery(field string, arguments, selection any) (*Query, error) {
	arguments, selection = ResolveArgumentsAndSelection(arguments, selection)
	return NewQuery(QueryOperation, field, arguments, selection)
}

// MakeMutation makes, but does not post, a mutation. If selection is nil,
// then arguments is interpreted as the selection.
func MakeMutation(field string, arguments, selection any) (*Query, error) {
	arguments, selection = ResolveArgumentsAndSelection(arguments, selection)
	return NewQuery(MutationOperation, field, arguments, selection)
}

// Poster submits operation text to a GraphQL server.
type Poster interface {
	PostGraphQL(ctx context.Context, query string) (*Response, error)
}

// PostQuery makes a query with MakeQuery and posts it with p.
func PostQuery(
	ctx context.Context,
	p Poster,
	field string,
	arguments, selection any,
) (*Response, error) {
	q, err := MakeQuery(field, arguments, selection)
	if err != nil {
		return nil, newSimpleErrors(ErrGraphQLEncode, err)
	}
	return p.PostGraphQL(ctx, q.Text())
}

// PostMutation makes a mutation with MakeMutation and posts it with p.
func PostMutation(
	ctx context.Context,
	p Poster,
	field string,
	arguments, selection any,
) (*Response, error) {
	m, err := MakeMutation(field, arguments, selection)
	if err != nil {
		return nil, newSimpleErrors(ErrGraphQLEncode, err)
	}
	return p.PostGraphQL(ctx, m.Text())
}
