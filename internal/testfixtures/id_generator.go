package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out "prefix-N" identifiers in order. The services take a
// generator func where production wires UUIDs; sequential ids let booking
// and group assertions name exact values instead of matching random ones.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

// NewIDGenerator returns a generator for the given prefix, defaulting to
// "id" when empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next consumes and returns the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Peek reports the identifier Next would return, without consuming it. Used
// to predict the group id a recurring reservation will be stamped with.
func (g *IDGenerator) Peek() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s-%d", g.prefix, g.n+1)
}

// NextFunc adapts the generator to the injected id signature. A nil
// generator yields empty ids so a misconfigured fixture fails loudly.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
