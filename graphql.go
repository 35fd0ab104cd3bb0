package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-builder/types"
)

// RequestModifier adjusts every outgoing request, e.g. to set an
// Authorization header.
type RequestModifier func(*http.Request)

// Client posts GraphQL operation text to a server over HTTP. It implements Poster.
//
// # Immutable Pattern
//
// The Client's With* methods return a new Client instance rather than
// modifying the receiver. Always use the returned Client:
//
//	client = client.WithDebug(true)  // Correct
//	client.WithDebug(true)            // Wrong - original client unchanged
//
// Methods can be chained since each returns a new Client:
//
//	client = client.WithDebug(true).WithRequestModifier(modifier)
type Client struct {
	url             string // GraphQL server URL.
	httpClient      *http.Client
	requestModifier RequestModifier
	logger          *zap.Logger
	debug           bool
}

var _ Poster = (*Client)(nil)

// NewClient creates a GraphQL client targeting the specified GraphQL server URL.
// If httpClient is nil, then http.DefaultClient is used.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}
}

// Response is the outcome of posting an operation.
type Response struct {
	StatusCode int
	Header     http.Header
	// RequestID is the value sent in the X-Request-Id header.
	RequestID string
	// Body is the raw (decompressed) response body.
	Body []byte
	// Data is the "data" member of the GraphQL response, if any.
	Data json.RawMessage
	// Errors is the "errors" member of the GraphQL response.
	Errors Errors
}

// HasErrors reports whether the server returned GraphQL errors.
func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}

// Decode unmarshals the response data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return newError(ErrGraphQLDecode, fmt.Errorf("response has no data"))
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return newError(ErrGraphQLDecode, err)
	}
	return nil
}

// Get looks up a gjson path in the full response body,
// e.g. "data.user.name" or "errors.0.message".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// PostGraphQL posts query without variables.
func (c *Client) PostGraphQL(ctx context.Context, query string) (*Response, error) {
	return c.Post(ctx, query, nil)
}

// Post posts query with variables and returns the server response.
//
// A Response is returned whenever the server answered, together with an
// error for non-200 statuses or undecodable bodies. GraphQL errors in the
// body are reported in Response.Errors and do not make Post fail.
func (c *Client) Post(
	ctx context.Context,
	query string,
	variables map[string]any,
) (*Response, error) {
	requestID := uuid.NewString()
	logger := c.logger.With(zap.String("request_id", requestID))

	request, reqBody, err := c.BuildRequest(ctx, query, variables)
	if err != nil {
		return nil, newSimpleErrors(ErrRequestError, fmt.Errorf("failed to build request: %w", err))
	}
	request.Header.Set(types.RequestIDHeader, requestID)
	ex := exchange{request: request, requestBody: reqBody}
	logger.Debug("posting graphql operation", zap.String("query", query))

	resp, err := c.httpClient.Do(request)
	if err != nil {
		logger.Debug("graphql request failed", zap.Error(err))
		return nil, Errors{c.requestError(ErrRequestError, err, ex)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readBody(resp)
	if err != nil {
		return nil, newSimpleErrors(ErrJsonDecode, err)
	}
	ex.response, ex.responseBody = resp, respBody

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		RequestID:  requestID,
		Body:       respBody,
	}
	logger.Debug("graphql response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%v; body: %q", resp.Status, respBody)
		return out, Errors{c.requestError(ErrRequestError, err, ex)}
	}

	out.Data, out.Errors, err = DecodeResponse(bytes.NewReader(respBody))
	if err != nil {
		return out, Errors{c.requestError(ErrJsonDecode, err, ex)}
	}
	if c.debug && len(out.Errors) > 0 {
		out.Errors[0] = ex.decorate(out.Errors[0])
	}
	return out, nil
}

// readBody reads the whole response body, decompressing gzip content.
func readBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return io.ReadAll(resp.Body)
	}
	gr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip body: %w", err)
	}
	defer func() { _ = gr.Close() }()
	return io.ReadAll(gr)
}

type requestPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// BuildRequest makes the POST request for query and returns it together
// with its JSON body. The request modifier, if any, has already run.
func (c *Client) BuildRequest(
	ctx context.Context,
	query string,
	variables map[string]any,
) (*http.Request, []byte, error) {
	body, err := json.Marshal(requestPayload{Query: query, Variables: variables})
	if err != nil {
		return nil, nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, body, err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.requestModifier != nil {
		c.requestModifier(request)
	}
	return request, body, nil
}

// DecodeResponse splits a GraphQL JSON response into its data and errors.
// A missing or null "data" member yields nil data.
func DecodeResponse(r io.Reader) (json.RawMessage, Errors, error) {
	var payload struct {
		Data   json.RawMessage `json:"data"`
		Errors Errors          `json:"errors"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, nil, err
	}
	if string(payload.Data) == "null" {
		payload.Data = nil
	}
	return payload.Data, payload.Errors, nil
}

func (c *Client) clone() *Client {
	return &Client{
		url:             c.url,
		httpClient:      c.httpClient,
		requestModifier: c.requestModifier,
		logger:          c.logger,
		debug:           c.debug,
	}
}

// WithRequestModifier returns a new Client with the request modifier set,
// e.g. to add authentication headers.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client with debug mode enabled or disabled.
// In debug mode the first error of a failed exchange carries the request and
// response under extensions.internal.
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithLogger returns a new Client logging requests to logger at debug level.
// A nil logger disables logging.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	clone := c.clone()
	clone.logger = logger
	return clone
}

// exchange is one request/response round trip, kept for error decoration.
// response is nil when the server never answered.
type exchange struct {
	request      *http.Request
	requestBody  []byte
	response     *http.Response
	responseBody []byte
}

// decorate stores the request and, if any, the response of the exchange
// under e.Extensions["internal"].
func (ex exchange) decorate(e Error) Error {
	internal := map[string]any{}
	if prev, ok := e.Extensions["internal"].(map[string]any); ok {
		internal = prev
	}
	if ex.request != nil {
		internal["request"] = map[string]any{
			"headers": ex.request.Header,
			"body":    string(ex.requestBody),
		}
	}
	if ex.response != nil {
		internal["response"] = map[string]any{
			"headers": ex.response.Header,
			"body":    string(ex.responseBody),
		}
	}
	if e.Extensions == nil {
		e.Extensions = map[string]any{}
	}
	e.Extensions["internal"] = internal
	return e
}

// requestError makes an Error with code, decorated in debug mode.
func (c *Client) requestError(code string, err error, ex exchange) Error {
	e := newError(code, err)
	if c.debug {
		e = ex.decorate(e)
	}
	return e
}

// Errors is the "errors" member of a GraphQL response
// (https://spec.graphql.org/October2021/#sec-Errors). Errors produced by the
// client itself use the same shape with a "code" extension. When returned as
// an error it holds at least one element.
type Errors []Error

// Error is a single GraphQL error.
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
	Path []any `json:"path,omitempty"`

	// err is the local cause, if any.
	err error
}

func (e Error) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (path: %v)", e.Message, e.Path)
}

// Unwrap returns the local cause of the error, if any.
func (e Error) Unwrap() error {
	return e.err
}

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is and errors.As inspect every error of the list.
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// GetCode returns the "code" extension, or "" when there is none.
func (e Error) GetCode() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// newError creates a new Error with the given code and underlying error.
func newError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
		err: err,
	}
}

// newSimpleErrors wraps err in a one-element Errors.
func newSimpleErrors(code string, err error) Errors {
	return Errors{newError(code, err)}
}

// Codes set in the "code" extension of errors produced locally.
const (
	ErrRequestError  = "request_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLEncode = "graphql_encode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)
