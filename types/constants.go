package types

// GraphQL-related constants used throughout the codebase.
// Centralizing these prevents typos and makes refactoring safer.
const (
	// GraphQLTag is the struct tag name used to specify the GraphQL input
	// field name of a struct field when a struct is used as an argument
	// value.
	GraphQLTag = "graphql"

	// OmitEmptyOption is the tag option that skips zero-valued fields.
	OmitEmptyOption = "omitempty"

	// VariablePrefix is the sigil written in front of a variable reference.
	VariablePrefix = "$"

	// NullLiteral is the GraphQL null token.
	NullLiteral = "null"

	// TrueLiteral and FalseLiteral are the GraphQL boolean tokens.
	TrueLiteral  = "true"
	FalseLiteral = "false"

	// QueryKeyword and MutationKeyword start an operation definition.
	QueryKeyword    = "query"
	MutationKeyword = "mutation"

	// RequestIDHeader carries the per-request identifier sent by the client.
	RequestIDHeader = "X-Request-Id"
)
