// Package parser turns raw configuration documents into transition lists.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YamlTransitionParser implements TransitionParser for YAML.
// Custom scalar tags such as !lambda are unwrapped to their text.
type YamlTransitionParser struct{}

// NewYamlTransitionParser creates a new YamlTransitionParser.
func NewYamlTransitionParser() TransitionParser {
	return &YamlTransitionParser{}
}

// Parse unmarshals YAML bytes into a RawList.
func (p *YamlTransitionParser) Parse(data []byte) (RawList, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if errors.Is(err, io.EOF) {
			return RawList{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 {
		return RawList{}, nil
	}

	tree, err := fromNode(&doc)
	if err != nil {
		return nil, err
	}
	return fromTree(tree)
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			if _, dup := out[keyNode.Value]; dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
			}
			v, err := fromNode(valNode)
			if err != nil {
				return nil, err
			}
			out[keyNode.Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func fromScalar(n *yaml.Node) (any, error) {
	tag := n.ShortTag()
	// !lambda and other local tags carry source text; timestamps stay text
	if !strings.HasPrefix(tag, "!!") || tag == "!!timestamp" {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}
