package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	graphql "github.com/llehouerou/go-graphql-builder"
)

// PrintResult is the JSON output of the print command.
type PrintResult struct {
	Query     string             `json:"query"`
	Variables []graphql.Variable `json:"variables,omitempty"`
}

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "print <operation.yaml>",
		Short:        "Print the GraphQL text of an operation file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(rootOpts, cmd.ErrOrStderr())
			defer func() { _ = logger.Sync() }()

			op, err := LoadOperationFile(args[0])
			if err != nil {
				return err
			}
			q, err := op.Build()
			if err != nil {
				logger.Debug("failed to build operation", zap.String("file", args[0]), zap.Error(err))
				return err
			}
			logger.Debug("operation built",
				zap.String("file", args[0]),
				zap.Stringer("operation", q.Operation()),
				zap.String("field", q.Field()),
				zap.Int("variables", len(q.Variables())),
			)

			if rootOpts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(PrintResult{Query: q.Text(), Variables: q.Variables()})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), q.Text())
			return err
		},
	}
}
