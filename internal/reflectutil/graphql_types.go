package reflectutil

import (
	"reflect"

	"github.com/llehouerou/go-graphql-builder/types"
)

// ImplementsGraphQLType reports whether the given type implements the GraphQLType interface.
// This checks if the type provides a custom GraphQL type name via GetGraphQLType().
func ImplementsGraphQLType(t reflect.Type) bool {
	return t != nil && t.Implements(types.GraphqlTypeInterface)
}

// GetGraphQLType extracts the GraphQL type name from a value that implements GraphQLType interface.
// Returns false if the value doesn't implement GraphQLType, or is a nil pointer or interface.
func GetGraphQLType(v reflect.Value, t reflect.Type) (string, bool) {
	if !ImplementsGraphQLType(t) || IsNilValue(v) {
		return "", false
	}

	graphqlType, ok := v.Interface().(types.GraphQLType)
	if !ok {
		return "", false
	}
	return graphqlType.GetGraphQLType(), true
}

// GetGraphQLTypeFromType extracts the GraphQL type name from a type (not value).
// This creates a zero value or pointer to call GetGraphQLType().
// Useful when you don't have an instance but need the type name.
func GetGraphQLTypeFromType(t reflect.Type) (string, bool) {
	if !ImplementsGraphQLType(t) {
		return "", false
	}

	graphqlType, ok := NewZeroOrPointerValue(t).Interface().(types.GraphQLType)
	if !ok {
		return "", false
	}
	return graphqlType.GetGraphQLType(), true
}
