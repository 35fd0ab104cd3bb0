package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphql "github.com/llehouerou/go-graphql-builder"
)

func parseString(t *testing.T, doc string) *OperationFile {
	t.Helper()
	op, err := ParseOperation(strings.NewReader(doc))
	require.NoError(t, err)
	return op
}

func TestParseOperation_query(t *testing.T) {
	op := parseString(t, `
field: user
arguments:
  id: 5
  active: true
selection:
  - id
  - name
`)
	assert.Equal(t, graphql.QueryOperation, op.Operation)
	assert.Equal(t, "user", op.Field)
	assert.Equal(t, [][2]any{{"id", 5}, {"active", true}}, op.Arguments)
	assert.Equal(t, []any{"id", "name"}, op.Selection)

	q, err := op.Build()
	require.NoError(t, err)
	assert.Equal(t, `query { user(id: 5, active: true) { id name } }`, q.Text())
}

func TestParseOperation_keepsMappingOrder(t *testing.T) {
	op := parseString(t, `
field: search
arguments:
  zeta: 1
  alpha: 2
  mid: {b: x, a: y}
selection:
  - total
  - items:
      - title
      - author: [login]
`)
	q, err := op.Build()
	require.NoError(t, err)
	assert.Equal(
		t,
		`query { search(zeta: 1, alpha: 2, mid: {b: "x", a: "y"}) { total items { title author { login } } } }`,
		q.Text(),
	)
}

func TestParseOperation_tags(t *testing.T) {
	op := parseString(t, `
operation: mutation
field: createUser
arguments:
  name: Al
  role: !enum ADMIN
  team: !var "team: ID!"
  roles: [!enum USER, !enum ADMIN]
selection: [id]
`)
	assert.Equal(t, graphql.MutationOperation, op.Operation)

	q, err := op.Build()
	require.NoError(t, err)
	assert.Equal(
		t,
		`mutation { createUser(name: "Al", role: ADMIN, team: $team, roles: [USER, ADMIN]) { id } }`,
		q.Text(),
	)
	assert.Equal(t, []graphql.Variable{{Name: "team", Type: "ID!"}}, q.Variables())
}

func TestParseOperation_scalars(t *testing.T) {
	op := parseString(t, `
field: update
arguments:
  score: 1.5
  count: 3
  note: null
  quoted: "42"
  empty: []
selection: []
`)
	q, err := op.Build()
	require.NoError(t, err)
	assert.Equal(t, `query { update(score: 1.5, count: 3, note: null, quoted: "42", empty: []) }`, q.Text())
}

func TestParseOperation_argumentsAsSelection(t *testing.T) {
	for _, doc := range []string{
		"field: users\narguments: [id, name]\n",
		"field: users\narguments: [id, name]\nselection: null\n",
		"field: users\narguments: [id, name]\nselection: ~\n",
	} {
		op := parseString(t, doc)
		q, err := op.Build()
		require.NoError(t, err)
		assert.Equal(t, `query { users { id name } }`, q.Text(), "document %q", doc)
	}
}

func TestParseOperation_aliases(t *testing.T) {
	op := parseString(t, `
field: pair
arguments:
  first: &shared {id: 1}
  second: *shared
selection: [ok]
`)
	q, err := op.Build()
	require.NoError(t, err)
	assert.Equal(t, `query { pair(first: {id: 1}, second: {id: 1}) { ok } }`, q.Text())
}

func TestParseOperation_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"not a mapping", "- a\n- b\n", "expected a mapping"},
		{"missing field", "arguments: {id: 1}\n", "missing field"},
		{"unknown key", "field: user\nfilter: {}\n", `unknown key "filter"`},
		{"unknown operation", "operation: subscription\nfield: user\n", `unknown operation "subscription"`},
		{"malformed yaml", "field: [unclosed\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOperation(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOperationFile), "got %v", err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestOperationFile_BuildErrors(t *testing.T) {
	op := parseString(t, "field: user\nselection:\n  - id\n  - 42\n")
	_, err := op.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, graphql.ErrUnsupportedSelection))
}

func TestLoadOperationFile(t *testing.T) {
	path := writeOperation(t, "field: ping\n")
	op, err := LoadOperationFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ping", op.Field)

	_, err = LoadOperationFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := writeOperation(t, "field: ping\nextra: 1\n")
	_, err = LoadOperationFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func writeOperation(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "operation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
