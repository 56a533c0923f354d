package arbor

import (
	"time"

	"github.com/jward/arbor/internal/hierarchy"
	"github.com/jward/arbor/internal/observability"
	"github.com/jward/arbor/internal/pike"
)

// LookupNode finds a hierarchy query anchor by name in one document:
// the first class or method of that name. The bool result is false when the
// document defines no such hierarchy-capable symbol.
func (e *Engine) LookupNode(uri, name string) (Node, bool) {
	syms := e.DocumentSymbols(uri)
	var found *pike.Symbol
	var walk func(list []*pike.Symbol)
	walk = func(list []*pike.Symbol) {
		for _, s := range list {
			if found != nil {
				return
			}
			if s.Name == name && s.Kind.Hierarchical() {
				found = s
				return
			}
			walk(s.Children)
		}
	}
	walk(syms)
	if found == nil {
		return Node{}, false
	}
	return Node{Name: found.Name, File: uri, Kind: found.Kind, Range: found.Span()}, true
}

// Supertypes returns the transitive ancestors of a class. Nil means the item
// cannot anchor a type hierarchy query; non-nil empty means no resolvable
// parents. Diagnostics carry not-analyzed warnings and recovered internal
// failures.
func (e *Engine) Supertypes(item Node) ([]Node, []Diagnostic) {
	defer observe("supertypes", time.Now())
	return hierarchy.NewBuilder(e).Supertypes(item)
}

// Subtypes returns the transitive descendants of a class.
func (e *Engine) Subtypes(item Node) ([]Node, []Diagnostic) {
	defer observe("subtypes", time.Now())
	return hierarchy.NewBuilder(e).Subtypes(item)
}

// OutgoingCalls returns the methods transitively called from the item.
func (e *Engine) OutgoingCalls(item Node) ([]Call, []Diagnostic) {
	defer observe("outgoing_calls", time.Now())
	return hierarchy.NewBuilder(e).OutgoingCalls(item)
}

// IncomingCalls returns the methods that transitively call the item.
func (e *Engine) IncomingCalls(item Node) ([]Call, []Diagnostic) {
	defer observe("incoming_calls", time.Now())
	return hierarchy.NewBuilder(e).IncomingCalls(item)
}

func observe(query string, start time.Time) {
	observability.HierarchyDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

var _ hierarchy.Index = (*Engine)(nil)
