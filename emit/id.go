package emit

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// IDGenerator allocates identifiers unique within one generation run:
// "fadetransition_id", "fadetransition_id_2", ...
type IDGenerator struct {
	counts map[string]int
	mu     sync.Mutex
}

// NewIDGenerator creates an empty generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counts: make(map[string]int)}
}

// Next returns a fresh identifier for t.
func (g *IDGenerator) Next(t EmitterType) ID {
	base := baseName(t) + "_id"

	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[base]++
	n := g.counts[base]
	if n == 1 {
		return ID{Name: base, Type: t}
	}
	return ID{Name: base + "_" + strconv.Itoa(n), Type: t}
}

// baseName lowercases the unqualified type name and drops anything that is
// not valid in an identifier.
func baseName(t EmitterType) string {
	name := string(t)
	if i := strings.LastIndex(name, "::"); i != -1 {
		name = name[i+2:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "object"
	}
	return b.String()
}
