package hierarchy

import (
	"sort"

	"github.com/jward/arbor/internal/pike"
)

// OutgoingCalls returns the methods transitively reachable from the item's
// body, with the call sites of the edge that first reached each one. A nil
// result means the item is not a method; a non-nil empty result means the
// body calls nothing the index can resolve.
func (b *Builder) OutgoingCalls(item Node) (calls []Call, diags []pike.Diagnostic) {
	defer recoverQuery(item.File, &diags)
	if item.Kind != pike.KindMethod {
		return nil, nil
	}
	tr := b.newTraversal(item)
	calls = []Call{}
	if !tr.checkAnalyzed(item.File) {
		return calls, tr.diags
	}
	tr.outgoing(item, 0, &calls)
	return calls, tr.diags
}

func (tr *traversal) outgoing(item Node, depth int, out *[]Call) {
	if depth >= tr.b.maxDepth {
		return
	}
	for _, call := range tr.directCallees(item) {
		k := nodeKey(call.Node)
		if tr.visited[k] {
			continue
		}
		tr.visited[k] = true
		*out = append(*out, call)
		tr.outgoing(call.Node, depth+1, out)
	}
}

// directCallees tokenizes the item's document and collects call-shaped
// identifier uses inside the item's body lines, resolved against the index.
// Unresolved names (runtime builtins, dynamic dispatch) are dropped.
func (tr *traversal) directCallees(item Node) []Call {
	text, ok := tr.b.index.DocumentText(item.File)
	if !ok {
		return nil
	}
	sites := callSites(text, item.Range, func(name string, line int) bool {
		return name == item.Name && line == item.Range.StartLine
	})
	var calls []Call
	byKey := map[string]int{}
	for name, ranges := range sites {
		callee, ok := tr.resolveMethod(name, item.File)
		if !ok {
			continue
		}
		k := nodeKey(callee)
		if i, seen := byKey[k]; seen {
			calls[i].Sites = append(calls[i].Sites, ranges...)
			continue
		}
		byKey[k] = len(calls)
		calls = append(calls, Call{Node: callee, Sites: ranges})
	}
	sort.Slice(calls, func(i, j int) bool {
		a, b := calls[i], calls[j]
		if len(a.Sites) > 0 && len(b.Sites) > 0 && a.Sites[0].StartLine != b.Sites[0].StartLine {
			return a.Sites[0].StartLine < b.Sites[0].StartLine
		}
		return a.Node.Name < b.Node.Name
	})
	return calls
}

// IncomingCalls returns the methods that transitively reach the item. Nil
// and empty results follow the same convention as OutgoingCalls.
func (b *Builder) IncomingCalls(item Node) (calls []Call, diags []pike.Diagnostic) {
	defer recoverQuery(item.File, &diags)
	if item.Kind != pike.KindMethod {
		return nil, nil
	}
	tr := b.newTraversal(item)
	calls = []Call{}
	if !tr.checkAnalyzed(item.File) {
		return calls, tr.diags
	}
	tr.incoming(item, 0, &calls)
	return calls, tr.diags
}

func (tr *traversal) incoming(item Node, depth int, out *[]Call) {
	if depth >= tr.b.maxDepth {
		return
	}
	for _, call := range tr.directCallers(item) {
		k := nodeKey(call.Node)
		if tr.visited[k] {
			continue
		}
		tr.visited[k] = true
		*out = append(*out, call)
		tr.incoming(call.Node, depth+1, out)
	}
}

// directCallers scans every indexed method body for call-shaped uses of the
// item's name. A match only counts when the name, resolved from the caller's
// document, lands back on the item's definition.
func (tr *traversal) directCallers(item Node) []Call {
	var calls []Call
	for _, uri := range tr.b.index.Documents() {
		text, ok := tr.b.index.DocumentText(uri)
		if !ok {
			continue
		}
		syms := tr.b.index.DocumentSymbols(uri)
		walkSymbols(syms, func(s *pike.Symbol) {
			if s.Kind != pike.KindMethod {
				return
			}
			sites := callSites(text, s.Span(), func(name string, line int) bool {
				return name == s.Name && line == s.Line
			})
			ranges := sites[item.Name]
			if len(ranges) == 0 {
				return
			}
			if target, ok := tr.resolveMethod(item.Name, uri); !ok || target.File != item.File {
				return
			}
			calls = append(calls, Call{Node: nodeFor(s, uri), Sites: ranges})
		})
	}
	return calls
}

// callSites tokenizes text and maps each called name to its call expression
// positions within the given line range. skip filters out non-call matches
// such as the enclosing method's own signature.
func callSites(text string, within pike.Range, skip func(name string, line int) bool) map[string][]pike.Range {
	toks := pike.Tokenize(text, 1)
	sites := map[string][]pike.Range{}
	for i, t := range toks {
		if t.Line < within.StartLine || t.Line > within.EndLine {
			continue
		}
		if t.Kind != pike.TokIdent {
			continue
		}
		if i+1 >= len(toks) || !toks[i+1].IsPunct("(") {
			continue
		}
		if skip(t.Text, t.Line) {
			continue
		}
		sites[t.Text] = append(sites[t.Text], pike.Range{
			StartLine: t.Line,
			StartCol:  t.Col,
			EndLine:   t.Line,
			EndCol:    t.Col + len(t.Text),
		})
	}
	return sites
}
