package types

import "reflect"

// GraphQLType is implemented by Go types that map to a named GraphQL type
// which cannot be derived from their Go kind, such as custom scalars.
type GraphQLType interface {
	GetGraphQLType() string
}

// GraphqlTypeInterface is the reflect.Type of GraphQLType.
var GraphqlTypeInterface = reflect.TypeOf((*GraphQLType)(nil)).Elem()
