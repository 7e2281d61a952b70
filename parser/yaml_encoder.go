package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

const nameKey = "name"

// MarshalYAML renders list back to YAML. Entries keep their order, "name"
// comes first in each mapping and the remaining keys are sorted, so the
// output is stable and parses back to an equal RawList.
func MarshalYAML(list RawList) ([]byte, error) {
	doc := make([]any, 0, len(list))
	for _, entry := range list {
		doc = append(doc, ordered(entry))
	}
	out, err := goyaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transitions: %w", err)
	}
	return out, nil
}

func ordered(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			if k != nameKey {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		if _, ok := tv[nameKey]; ok {
			keys = append([]string{nameKey}, keys...)
		}
		ms := make(goyaml.MapSlice, 0, len(keys))
		for _, k := range keys {
			ms = append(ms, goyaml.MapItem{Key: k, Value: ordered(tv[k])})
		}
		return ms
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = ordered(e)
		}
		return out
	case string:
		if needsQuotes(tv) {
			return quoted(tv)
		}
		return tv
	default:
		return v
	}
}

// quoted is a string always rendered double-quoted.
type quoted string

func (q quoted) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(q))), nil
}

// needsQuotes reports whether s, written as a plain scalar, would not parse
// back as the same string: "1e3", ".inf", "0x1F", "null", "" and the like.
func needsQuotes(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	if strings.ContainsRune("!&*#|>%@`'\"{}[],?:-", rune(s[0])) {
		return true
	}
	n := yaml.Node{Kind: yaml.ScalarNode, Value: s}
	return n.ShortTag() != "!!str"
}
