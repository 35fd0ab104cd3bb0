package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	graphql "github.com/llehouerou/go-graphql-builder"
	"github.com/llehouerou/go-graphql-builder/types"
)

// YAML tags recognized in operation files.
const (
	EnumTag     = "!enum"
	VariableTag = "!var"
)

// ErrInvalidOperationFile is returned for operation files that cannot be read.
var ErrInvalidOperationFile = errors.New("invalid operation file")

// OperationFile is an operation described in YAML:
//
//	operation: mutation
//	field: createUser
//	arguments:
//	  name: Al
//	  role: !enum ADMIN
//	selection:
//	  - id
//	  - posts: [title]
//
// Mapping order is kept. When selection is omitted (or null), arguments is
// used as the selection set.
type OperationFile struct {
	Operation graphql.OperationType
	Field     string
	Arguments any
	Selection any
}

// LoadOperationFile reads an operation file from disk.
func LoadOperationFile(path string) (*OperationFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	op, err := ParseOperation(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return op, nil
}

// ParseOperation decodes a single YAML operation document.
func ParseOperation(r io.Reader) (*OperationFile, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidOperationFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperationFile, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidOperationFile, root.Line)
	}

	op := &OperationFile{Operation: graphql.QueryOperation}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "operation":
			kind, err := parseOperationType(val.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOperationFile, val.Line, err)
			}
			op.Operation = kind
		case "field":
			op.Field = val.Value
		case "arguments":
			data, err := nodeData(val)
			if err != nil {
				return nil, err
			}
			op.Arguments = data
		case "selection":
			data, err := nodeData(val)
			if err != nil {
				return nil, err
			}
			op.Selection = data
		default:
			return nil, fmt.Errorf("%w: line %d: unknown key %q", ErrInvalidOperationFile, key.Line, key.Value)
		}
	}

	if op.Field == "" {
		return nil, fmt.Errorf("%w: missing field", ErrInvalidOperationFile)
	}
	return op, nil
}

func parseOperationType(s string) (graphql.OperationType, error) {
	switch s {
	case "", types.QueryKeyword:
		return graphql.QueryOperation, nil
	case types.MutationKeyword:
		return graphql.MutationOperation, nil
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Build makes the query or mutation described by the file.
func (o *OperationFile) Build() (*graphql.Query, error) {
	if o.Operation == graphql.MutationOperation {
		return graphql.MakeMutation(o.Field, o.Arguments, o.Selection)
	}
	return graphql.MakeQuery(o.Field, o.Arguments, o.Selection)
}

// nodeData converts a YAML node to the plain data accepted by graphql.ValueOf
// and graphql.SelectionOf. Mappings become [][2]any to keep their order.
func nodeData(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeData(n.Alias)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := nodeData(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case yaml.MappingNode:
		pairs := make([][2]any, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := nodeData(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, [2]any{n.Content[i].Value, val})
		}
		return pairs, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case EnumTag:
			return graphql.NewEnum(n.Value), nil
		case VariableTag:
			name, typ, _ := strings.Cut(n.Value, ":")
			return graphql.NewVariable(strings.TrimSpace(name), strings.TrimSpace(typ)), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOperationFile, n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: line %d: unsupported node", ErrInvalidOperationFile, n.Line)
}
