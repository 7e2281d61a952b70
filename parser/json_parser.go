package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONTransitionParser implements TransitionParser for JSON.
type JSONTransitionParser struct{}

// NewJSONTransitionParser creates a new JSONTransitionParser.
func NewJSONTransitionParser() TransitionParser {
	return &JSONTransitionParser{}
}

// Parse unmarshals JSON bytes into a RawList. Numbers are kept as
// json.Number.
func (p *JSONTransitionParser) Parse(data []byte) (RawList, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RawList{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return fromTree(tree)
}
