package diagnostic

import (
	"sort"
	"sync"

	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// Collector accumulates diagnostics during a single parse or render. It is
// single-writer per render (spec.md §4.5's concurrency contract), but guards
// its slice with a mutex anyway since stages may run in goroutines that
// report back to a shared collector under a fan-in.
type Collector struct {
	mu    sync.Mutex
	items []Message
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Push appends a diagnostic.
func (c *Collector) Push(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, m)
}

// Pushf is a convenience for appending a simple, location-bearing diagnostic.
func (c *Collector) Pushf(kind Kind, code, title, text string, loc sourcemap.SourceInfo) {
	c.Push(Message{Kind: kind, Code: code, Title: title, Text: text, Location: loc})
}

// HasErrors reports whether any accumulated diagnostic is Kind Error.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.items {
		if m.Kind == Error {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IntoDiagnostics drains the collector, returning diagnostics sorted by
// resolved start offset against sm (diagnostics with no location sort
// first, per spec.md §4.2/§8).
func (c *Collector) IntoDiagnostics(sm *sourcemap.Map) []Message {
	c.mu.Lock()
	items := c.items
	c.items = nil
	c.mu.Unlock()

	sorted := append([]Message(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartOffset(sm) < sorted[j].StartOffset(sm)
	})
	return sorted
}
