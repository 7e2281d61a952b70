package parser

import "fmt"

// RawList is an ordered list of raw transition entries as produced by a
// configuration parser. Each element is normally a single-key mapping
// (kind name -> field mapping); a bare string is shorthand for a kind with
// an empty mapping. Shape is checked by the list validator, not here.
type RawList []any

// Entry builds the raw form of one entry.
func Entry(kind string, config map[string]any) map[string]any {
	if config == nil {
		config = map[string]any{}
	}
	return map[string]any{kind: config}
}

// TransitionsKey is the document key holding the transition list when a
// parser is given a whole light configuration.
const TransitionsKey = "transitions"

// TransitionParser parses raw configuration bytes into a RawList.
type TransitionParser interface {
	// Parse accepts a list, a single entry, or a mapping with a
	// "transitions" key.
	Parse(data []byte) (RawList, error)
}

// fromTree applies the accepted document shapes to a decoded tree.
func fromTree(tree any) (RawList, error) {
	switch v := tree.(type) {
	case nil:
		return RawList{}, nil
	case []any:
		return RawList(v), nil
	case map[string]any:
		if inner, ok := v[TransitionsKey]; ok {
			return fromTree(inner)
		}
		return RawList{v}, nil
	case string:
		return RawList{v}, nil
	default:
		return nil, fmt.Errorf("expected a list of transitions, got %T", tree)
	}
}
