// Command gqlbuild renders GraphQL operations described in YAML files and
// optionally posts them to a server.
package main

import (
	"fmt"
	"os"

	"github.com/llehouerou/go-graphql-builder/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
