// Package hierarchy answers inheritance and call graph queries over a
// multi-document symbol index. Graphs are built per query from whatever
// documents the index can see at that moment; nothing is persisted between
// calls.
package hierarchy

import (
	"fmt"

	"github.com/jward/arbor/internal/pike"
)

// DefaultMaxDepth bounds transitive traversal. Cycles are already handled by
// the visited set; the cap is a hard stop against pathological fan-out.
const DefaultMaxDepth = 100

// Node identifies a class or method anchoring a hierarchy query.
type Node struct {
	Name  string     `json:"name"`
	File  string     `json:"file"`
	Kind  pike.Kind  `json:"kind"`
	Range pike.Range `json:"range"`
}

// Call is one resolved call relation. For outgoing queries Node is the
// callee, for incoming queries the caller. Sites are the call expression
// positions inside the caller's body.
type Call struct {
	Node  Node         `json:"node"`
	Sites []pike.Range `json:"sites"`
}

// Index is the multi-document symbol view the builder traverses. A nil
// symbol slice means the document has not been analyzed, which is distinct
// from an analyzed document with no symbols.
type Index interface {
	DocumentSymbols(uri string) []*pike.Symbol
	DocumentText(uri string) (string, bool)
	Documents() []string
}

// Builder runs hierarchy queries against an Index. It is cheap to construct
// and safe to construct per request.
type Builder struct {
	index    Index
	maxDepth int
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxDepth overrides the traversal depth cap.
func WithMaxDepth(depth int) Option {
	return func(b *Builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// NewBuilder returns a Builder over the given index.
func NewBuilder(index Index, opts ...Option) *Builder {
	b := &Builder{index: index, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// traversal is the per-query working state.
type traversal struct {
	b       *Builder
	visited map[string]bool
	diags   []pike.Diagnostic
}

func (b *Builder) newTraversal(start Node) *traversal {
	return &traversal{
		b:       b,
		visited: map[string]bool{nodeKey(start): true},
	}
}

func nodeKey(n Node) string {
	return n.Name + "\x00" + n.File
}

func (tr *traversal) warnf(file string, format string, args ...any) {
	tr.diags = append(tr.diags, pike.Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: pike.SeverityWarning,
		File:     file,
	})
}

// checkAnalyzed reports whether the node's document is present in the index,
// publishing the not-analyzed warning when it is not.
func (tr *traversal) checkAnalyzed(file string) bool {
	if tr.b.index.DocumentSymbols(file) != nil {
		return true
	}
	tr.warnf(file, "unavailable: document not analyzed: %s", file)
	return false
}

// recoverQuery converts a panic inside a query into an error diagnostic so
// no query ever crashes its caller.
func recoverQuery(file string, diags *[]pike.Diagnostic) {
	if r := recover(); r != nil {
		*diags = append(*diags, pike.Diagnostic{
			Message:  fmt.Sprintf("internal failure during hierarchy traversal: %v", r),
			Severity: pike.SeverityError,
			File:     file,
		})
	}
}

// walkSymbols visits every symbol in the tree, depth first.
func walkSymbols(syms []*pike.Symbol, fn func(s *pike.Symbol)) {
	for _, s := range syms {
		fn(s)
		walkSymbols(s.Children, fn)
	}
}

// findClass locates a class symbol by name in one document.
func findClass(syms []*pike.Symbol, name string) *pike.Symbol {
	var found *pike.Symbol
	walkSymbols(syms, func(s *pike.Symbol) {
		if found == nil && s.Kind == pike.KindClass && s.Name == name {
			found = s
		}
	})
	return found
}

// findMethod locates a method symbol by name in one document.
func findMethod(syms []*pike.Symbol, name string) *pike.Symbol {
	var found *pike.Symbol
	walkSymbols(syms, func(s *pike.Symbol) {
		if found == nil && s.Kind == pike.KindMethod && s.Name == name {
			found = s
		}
	})
	return found
}

func nodeFor(s *pike.Symbol, file string) Node {
	return Node{Name: s.Name, File: file, Kind: s.Kind, Range: s.Span()}
}

// resolveClass finds the definition of a class name, preferring preferFile
// and falling back to every other document in the index. The bool result is
// false for unresolved references, which callers drop silently.
func (tr *traversal) resolveClass(name, preferFile string) (Node, bool) {
	base := baseName(name)
	if s := findClass(tr.b.index.DocumentSymbols(preferFile), base); s != nil {
		return nodeFor(s, preferFile), true
	}
	for _, uri := range tr.b.index.Documents() {
		if uri == preferFile {
			continue
		}
		if s := findClass(tr.b.index.DocumentSymbols(uri), base); s != nil {
			return nodeFor(s, uri), true
		}
	}
	return Node{}, false
}

// resolveMethod is resolveClass for call targets.
func (tr *traversal) resolveMethod(name, preferFile string) (Node, bool) {
	if s := findMethod(tr.b.index.DocumentSymbols(preferFile), name); s != nil {
		return nodeFor(s, preferFile), true
	}
	for _, uri := range tr.b.index.Documents() {
		if uri == preferFile {
			continue
		}
		if s := findMethod(tr.b.index.DocumentSymbols(uri), name); s != nil {
			return nodeFor(s, uri), true
		}
	}
	return Node{}, false
}

// baseName strips module qualifiers and path components from an inherit
// target, leaving the bare class name: "Tools.Parser" -> "Parser",
// "lib/base.pike" -> "base".
func baseName(name string) string {
	// "lib/base.pike" style targets keep the stem only
	if i := len(name) - len(".pike"); i > 0 && name[i:] == ".pike" {
		name = name[:i]
	}
	last := 0
	for i, r := range name {
		if r == '.' || r == '/' {
			last = i + 1
		}
	}
	return name[last:]
}
