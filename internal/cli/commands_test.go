package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRootInvalidFormat(t *testing.T) {
	path := writeOperation(t, "field: ping\n")
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "print", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestPrintText(t *testing.T) {
	path := writeOperation(t, `
operation: mutation
field: createUser
arguments:
  name: Al
  role: !enum ADMIN
selection: [id]
`)
	buf := &bytes.Buffer{}
	cmd := NewPrintCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "mutation { createUser(name: \"Al\", role: ADMIN) { id } }\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	path := writeOperation(t, `
field: user
arguments:
  id: !var "id: Int!"
selection: [name]
`)
	buf := &bytes.Buffer{}
	cmd := NewPrintCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var result PrintResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, `query { user(id: $id) { name } }`, result.Query)
	require.Len(t, result.Variables, 1)
	assert.Equal(t, "id", result.Variables[0].Name)
	assert.Equal(t, "Int!", result.Variables[0].Type)
}

func TestPrintMissingArgument(t *testing.T) {
	cmd := NewPrintCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.Error(t, cmd.Execute())
}

func TestPrintInvalidFile(t *testing.T) {
	path := writeOperation(t, "field: user\nselection: [1.5]\n")
	cmd := NewPrintCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported selection set")
}

const testSchema = `
schema {
	query: Query
}
type Query {
	greet(name: String!): String!
}
`

type greeter struct{}

func (greeter) Greet(args struct{ Name string }) string {
	return "hello " + args.Name
}

func newGreetServer(t *testing.T) (*httptest.Server, func() http.Header) {
	t.Helper()
	handler := &relay.Handler{Schema: gqlgo.MustParseSchema(testSchema, &greeter{})}

	var mu sync.Mutex
	var last http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		last = r.Header.Clone()
		mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server, func() http.Header {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestPostMissingEndpoint(t *testing.T) {
	path := writeOperation(t, "field: ping\n")
	cmd := NewPostCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPostText(t *testing.T) {
	server, lastHeader := newGreetServer(t)
	path := writeOperation(t, "field: greet\narguments: {name: Al}\nselection: []\n")

	buf := &bytes.Buffer{}
	cmd := NewPostCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{
		"--endpoint", server.URL,
		"-H", "Authorization=Bearer token",
		"--timeout", "5s",
		path,
	})

	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"data": {"greet": "hello Al"}}`, buf.String())
	assert.Equal(t, "Bearer token", lastHeader().Get("Authorization"))
	assert.NotEmpty(t, lastHeader().Get("X-Request-Id"))
}

func TestPostJSON(t *testing.T) {
	server, lastHeader := newGreetServer(t)
	path := writeOperation(t, "field: greet\narguments: {name: Bo}\nselection: []\n")

	buf := &bytes.Buffer{}
	cmd := NewPostCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--endpoint", server.URL, path})

	require.NoError(t, cmd.Execute())

	var result PostResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, lastHeader().Get("X-Request-Id"), result.RequestID)
	assert.JSONEq(t, `{"data": {"greet": "hello Bo"}}`, string(result.Response))
}

func TestPostGraphQLErrors(t *testing.T) {
	server, _ := newGreetServer(t)
	path := writeOperation(t, "field: missing\n")

	buf := &bytes.Buffer{}
	cmd := NewPostCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--endpoint", server.URL, path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server returned 1 error(s)")
	assert.Contains(t, buf.String(), "missing", "the response is still printed")
}

func TestPostNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	path := writeOperation(t, "field: ping\n")

	buf := &bytes.Buffer{}
	cmd := NewPostCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--endpoint", server.URL, path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	var result PostResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, http.StatusServiceUnavailable, result.Status)
	assert.Equal(t, `"unavailable\n"`, string(result.Response))
}

func TestPostInvalidHeader(t *testing.T) {
	path := writeOperation(t, "field: ping\n")
	cmd := NewPostCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--endpoint", "http://localhost", "-H", "novalue", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid header "novalue"`)
}

func TestParseHeaders(t *testing.T) {
	header, err := parseHeaders([]string{"X-A=1", "X-A = 2", "Authorization=Bearer a=b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, header.Values("X-A"))
	assert.Equal(t, "Bearer a=b", header.Get("Authorization"))

	_, err = parseHeaders([]string{"=value"})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(&RootOptions{}, buf)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger = newLogger(&RootOptions{Verbose: true}, buf)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "verbose logs at debug level")
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrintVerbose(t *testing.T) {
	path := writeOperation(t, "field: user\narguments: {id: !var \"id: Int!\"}\nselection: [name]\n")

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewPrintCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "query { user(id: $id) { name } }\n", out.String(), "logs stay off stdout")
	assert.Contains(t, errBuf.String(), "operation built")
	assert.Contains(t, errBuf.String(), `"field": "user"`)
	assert.Contains(t, errBuf.String(), `"variables": 1`)
}

func TestPrintQuiet(t *testing.T) {
	path := writeOperation(t, "field: ping\n")

	errBuf := &bytes.Buffer{}
	cmd := NewPrintCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, errBuf.String())
}

func TestPostVerbose(t *testing.T) {
	server, _ := newGreetServer(t)
	path := writeOperation(t, "field: greet\narguments: {name: Al}\nselection: []\n")

	errBuf := &bytes.Buffer{}
	cmd := NewPostCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--endpoint", server.URL, path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "posting graphql operation")
	assert.Contains(t, errBuf.String(), "operation posted")
}

func TestPostTimeoutFlag(t *testing.T) {
	cmd := NewPostCommand(&RootOptions{Format: "text"})
	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}
