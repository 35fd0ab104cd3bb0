package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	graphql "github.com/llehouerou/go-graphql-builder"
)

// PostOptions holds flags for the post command.
type PostOptions struct {
	Endpoint string
	Headers  []string // "Key=Value"
	Timeout  time.Duration
	Debug    bool
}

// PostResult is the JSON output of the post command.
type PostResult struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Response  json.RawMessage `json:"response"`
}

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{}

	cmd := &cobra.Command{
		Use:          "post <operation.yaml>",
		Short:        "Post an operation file to a GraphQL endpoint",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "GraphQL endpoint URL")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "request header (Key=Value), repeatable")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "attach request and response to errors")
	_ = cmd.MarkFlagRequired("endpoint")

	return cmd
}

func runPost(cmd *cobra.Command, rootOpts *RootOptions, opts *PostOptions, path string) error {
	logger := newLogger(rootOpts, cmd.ErrOrStderr())
	defer func() { _ = logger.Sync() }()

	header, err := parseHeaders(opts.Headers)
	if err != nil {
		return err
	}

	op, err := LoadOperationFile(path)
	if err != nil {
		return err
	}
	q, err := op.Build()
	if err != nil {
		return err
	}

	client := graphql.NewClient(opts.Endpoint, &http.Client{Timeout: opts.Timeout}).
		WithLogger(logger).
		WithDebug(opts.Debug).
		WithRequestModifier(func(r *http.Request) {
			for k, v := range header {
				r.Header[k] = v
			}
		})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.PostGraphQL(ctx, q.Text())
	if resp == nil {
		return err
	}
	logger.Info("operation posted",
		zap.Stringer("operation", q.Operation()),
		zap.String("field", q.Field()),
		zap.Int("status", resp.StatusCode),
	)

	if rootOpts.Format == "json" {
		body := json.RawMessage(resp.Body)
		if !json.Valid(resp.Body) {
			body, _ = json.Marshal(string(resp.Body))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(PostResult{
			Status:    resp.StatusCode,
			RequestID: resp.RequestID,
			Response:  body,
		}); encErr != nil {
			return encErr
		}
	} else if _, werr := fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body)); werr != nil {
		return werr
	}

	if err != nil {
		return err
	}
	if resp.HasErrors() {
		return fmt.Errorf("server returned %d error(s): %w", len(resp.Errors), resp.Errors)
	}
	return nil
}

func parseHeaders(values []string) (http.Header, error) {
	header := http.Header{}
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header %q: expected Key=Value", v)
		}
		header.Add(strings.TrimSpace(k), strings.TrimSpace(val))
	}
	return header, nil
}
