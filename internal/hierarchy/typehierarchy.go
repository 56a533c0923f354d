package hierarchy

import "github.com/jward/arbor/internal/pike"

// Supertypes returns the transitive ancestors of a class, following inherit
// declarations across documents. A nil result means the item cannot anchor a
// type hierarchy query at all; a non-nil empty result means the class has no
// resolvable parents.
func (b *Builder) Supertypes(item Node) (nodes []Node, diags []pike.Diagnostic) {
	defer recoverQuery(item.File, &diags)
	if item.Kind != pike.KindClass {
		return nil, nil
	}
	tr := b.newTraversal(item)
	nodes = []Node{}
	if !tr.checkAnalyzed(item.File) {
		return nodes, tr.diags
	}
	tr.supertypes(item, 0, &nodes)
	return nodes, tr.diags
}

func (tr *traversal) supertypes(item Node, depth int, out *[]Node) {
	if depth >= tr.b.maxDepth {
		return
	}
	for _, parent := range tr.directSupertypes(item) {
		k := nodeKey(parent)
		if tr.visited[k] {
			continue
		}
		tr.visited[k] = true
		*out = append(*out, parent)
		tr.supertypes(parent, depth+1, out)
	}
}

// directSupertypes resolves the inherit declarations of one class.
// Unresolved targets are dropped silently; inheriting from a library class
// the index cannot see is a normal outcome.
func (tr *traversal) directSupertypes(item Node) []Node {
	cls := findClass(tr.b.index.DocumentSymbols(item.File), item.Name)
	if cls == nil {
		return nil
	}
	var parents []Node
	for _, child := range cls.Children {
		if child.Kind != pike.KindInherit {
			continue
		}
		if parent, ok := tr.resolveClass(child.Name, item.File); ok {
			parents = append(parents, parent)
		}
	}
	return parents
}

// Subtypes returns the transitive descendants of a class: every indexed
// class whose inherit chain reaches the item. Nil and empty results follow
// the same convention as Supertypes.
func (b *Builder) Subtypes(item Node) (nodes []Node, diags []pike.Diagnostic) {
	defer recoverQuery(item.File, &diags)
	if item.Kind != pike.KindClass {
		return nil, nil
	}
	tr := b.newTraversal(item)
	nodes = []Node{}
	if !tr.checkAnalyzed(item.File) {
		return nodes, tr.diags
	}
	tr.subtypes(item, 0, &nodes)
	return nodes, tr.diags
}

func (tr *traversal) subtypes(item Node, depth int, out *[]Node) {
	if depth >= tr.b.maxDepth {
		return
	}
	for _, child := range tr.directSubtypes(item) {
		k := nodeKey(child)
		if tr.visited[k] {
			continue
		}
		tr.visited[k] = true
		*out = append(*out, child)
		tr.subtypes(child, depth+1, out)
	}
}

// directSubtypes scans every indexed document for classes that inherit the
// item. Matching is by the inherit target's base name; the inheriting class
// must resolve its target back to the item's definition.
func (tr *traversal) directSubtypes(item Node) []Node {
	var children []Node
	for _, uri := range tr.b.index.Documents() {
		syms := tr.b.index.DocumentSymbols(uri)
		walkSymbols(syms, func(s *pike.Symbol) {
			if s.Kind != pike.KindClass {
				return
			}
			for _, c := range s.Children {
				if c.Kind != pike.KindInherit || baseName(c.Name) != item.Name {
					continue
				}
				if target, ok := tr.resolveClass(c.Name, uri); ok && target.File == item.File {
					children = append(children, nodeFor(s, uri))
					return
				}
			}
		})
	}
	return children
}
