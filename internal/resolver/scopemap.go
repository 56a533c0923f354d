package resolver

import (
	"sort"

	"github.com/jward/arbor/internal/pike"
)

// lineRange is an inclusive 1-based line span.
type lineRange struct {
	start, end int
}

func (r lineRange) contains(line int) bool {
	return r.start <= line && line <= r.end
}

// scopeMap is the per-call scope index: every declaration of every name with
// its depth and line bounds, plus the body ranges of lambda literals for
// closure resolution.
type scopeMap struct {
	entries map[string][]*ScopeEntry
	lambdas []lineRange
}

func (sm *scopeMap) add(e *ScopeEntry) {
	sm.entries[e.Name] = append(sm.entries[e.Name], e)
}

// buildScopeMap tokenizes once and walks linearly, maintaining a brace-depth
// counter and a stack of "this scope closes at line X" markers computed from
// the brace index.
func buildScopeMap(code string) *scopeMap {
	toks := pike.Tokenize(code, 1)
	brace := pike.BraceIndex(toks)
	sm := &scopeMap{entries: make(map[string][]*ScopeEntry)}

	var ends []int // closing line of each open scope
	depth := 0
	atStart := true

	innermostEnd := func() int {
		if len(ends) == 0 {
			return Unbounded
		}
		return ends[len(ends)-1]
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.IsPunct("{"):
			end := Unbounded
			if m := brace[i]; m >= 0 {
				end = toks[m].Line
			}
			ends = append(ends, end)
			depth++
			atStart = true
			continue
		case t.IsPunct("}"):
			if depth > 0 {
				depth--
				ends = ends[:len(ends)-1]
			}
			atStart = true
			continue
		case t.IsPunct(";"):
			atStart = true
			continue
		}

		if t.Kind == pike.TokKeyword && t.Text == "lambda" {
			sm.recordLambda(toks, brace, i, depth)
			atStart = false
			continue
		}
		if !atStart {
			continue
		}
		atStart = false

		j := i
		for j < len(toks) && toks[j].Kind == pike.TokKeyword && pike.IsModifier(toks[j].Text) {
			j++
		}
		if j >= len(toks) || !typeLead(toks[j]) {
			continue
		}
		typ, k := scanTypeAt(toks, j, len(toks))
		if k >= len(toks) || toks[k].Kind != pike.TokIdent {
			continue
		}
		name := toks[k]
		next := tokAt(toks, k+1)
		switch {
		case next.IsPunct("("):
			// function definition: parameters live at depth+1, bounded by
			// the body's line range
			close := skipParens(toks, k+1)
			bodyIdx := close + 1
			if bodyIdx < len(toks) && toks[bodyIdx].IsPunct("{") {
				bodyEnd := Unbounded
				if m := brace[bodyIdx]; m >= 0 {
					bodyEnd = toks[m].Line
				}
				sm.addParams(toks, k+2, close, depth+1, name.Line, bodyEnd)
			}
			sm.add(&ScopeEntry{
				Name:     name.Text,
				Type:     &pike.Type{Kind: pike.TypeFunction, Inner: typ},
				Depth:    depth,
				DeclLine: name.Line,
				EndLine:  innermostEnd(),
			})
			i = close // body braces flow through the main loop
		case next.IsPunct(";") || next.IsPunct("=") || next.IsPunct(","):
			i = sm.addVars(toks, typ, k, depth, innermostEnd())
		default:
			i = k
		}
	}
	return sm
}

// recordLambda notes a lambda literal's body line range and scopes its
// parameters to the body.
func (sm *scopeMap) recordLambda(toks []pike.Token, brace []int, i, depth int) {
	if i+1 >= len(toks) || !toks[i+1].IsPunct("(") {
		return
	}
	close := skipParens(toks, i+1)
	bodyIdx := close + 1
	if bodyIdx >= len(toks) || !toks[bodyIdx].IsPunct("{") {
		return
	}
	bodyEnd := Unbounded
	if m := brace[bodyIdx]; m >= 0 {
		bodyEnd = toks[m].Line
	}
	sm.lambdas = append(sm.lambdas, lineRange{start: toks[bodyIdx].Line, end: bodyEnd})
	sm.addParams(toks, i+2, close, depth+1, toks[i].Line, bodyEnd)
}

// addParams synthesizes entries for a parameter list between token indexes
// [from, to).
func (sm *scopeMap) addParams(toks []pike.Token, from, to int, depth, declLine, endLine int) {
	if from >= to || from >= len(toks) {
		return
	}
	if to > len(toks) {
		to = len(toks)
	}
	for _, run := range pike.SplitTopLevel(toks[from:to], ",") {
		// trim a default value
		for x, t := range run {
			if t.Text == "=" {
				run = run[:x]
				break
			}
		}
		if len(run) == 0 {
			continue
		}
		nameTok := run[len(run)-1]
		if nameTok.Kind != pike.TokIdent {
			continue
		}
		typ := pike.Primitive("mixed")
		if len(run) > 1 {
			typ = pike.ParseTypeTokens(run[:len(run)-1])
		}
		sm.add(&ScopeEntry{
			Name:     nameTok.Text,
			Type:     typ,
			Depth:    depth,
			DeclLine: declLine,
			EndLine:  endLine,
		})
	}
}

// addVars records one or more comma-separated variables of a shared type.
// Returns the index of the last consumed token; the terminating ';' is left
// for the main loop.
func (sm *scopeMap) addVars(toks []pike.Token, typ *pike.Type, nameIdx, depth, endLine int) int {
	i := nameIdx
	for i < len(toks) {
		name := toks[i]
		if name.Kind != pike.TokIdent {
			break
		}
		sm.add(&ScopeEntry{
			Name:     name.Text,
			Type:     typ,
			Depth:    depth,
			DeclLine: name.Line,
			EndLine:  endLine,
		})
		i++
		if i < len(toks) && toks[i].IsPunct("=") {
			i = skipExpr(toks, i+1)
			if i < len(toks) && toks[i].Kind == pike.TokKeyword && toks[i].Text == "lambda" {
				break
			}
		}
		if i < len(toks) && toks[i].IsPunct(",") {
			i++
			continue
		}
		break
	}
	return i - 1
}

// skipExpr advances past an initializer, stopping at a ',' or ';' at nesting
// depth zero. It also stops at a lambda literal so the caller's scan can
// record its body.
func skipExpr(toks []pike.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == pike.TokKeyword && t.Text == "lambda":
			return i
		case t.IsPunct("(") || t.IsPunct("[") || t.IsPunct("{"):
			depth++
		case t.IsPunct(")") || t.IsPunct("]") || t.IsPunct("}"):
			if depth == 0 {
				return i
			}
			depth--
		case (t.IsPunct(",") || t.IsPunct(";")) && depth == 0:
			return i
		}
	}
	return i
}

func scanTypeAt(toks []pike.Token, i, limit int) (*pike.Type, int) {
	if limit > len(toks) {
		limit = len(toks)
	}
	ts := pike.NewTypeScanner(toks[:limit], i)
	return ts.Parse(), ts.Pos()
}

func tokAt(toks []pike.Token, i int) pike.Token {
	if i < 0 || i >= len(toks) {
		return pike.Token{}
	}
	return toks[i]
}

// lookup answers the visibility query: all entries whose line span contains
// the query line, sorted ascending by depth, last one wins. When the query
// line falls inside a lambda body, declarations from before the lambda are
// considered captured unless shadowed by a declaration inside the body.
func (sm *scopeMap) lookup(name string, line int) *ScopeEntry {
	var visible []*ScopeEntry
	for _, e := range sm.entries[name] {
		if e.DeclLine <= line && line <= e.EndLine {
			visible = append(visible, e)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Depth != visible[j].Depth {
			return visible[i].Depth < visible[j].Depth
		}
		return visible[i].DeclLine < visible[j].DeclLine
	})

	lam := sm.innermostLambda(line)

	if len(visible) == 0 {
		if lam == nil {
			return nil
		}
		// nothing directly visible: fall back to captured candidates that
		// were visible where the lambda was created
		var captured []*ScopeEntry
		for _, e := range sm.entries[name] {
			if e.DeclLine < lam.start && lam.start <= e.EndLine {
				captured = append(captured, e)
			}
		}
		if len(captured) == 0 {
			return nil
		}
		sort.SliceStable(captured, func(i, j int) bool {
			if captured[i].Depth != captured[j].Depth {
				return captured[i].Depth < captured[j].Depth
			}
			return captured[i].DeclLine < captured[j].DeclLine
		})
		out := *captured[len(captured)-1]
		out.Captured = true
		return &out
	}

	out := *visible[len(visible)-1]
	if lam != nil {
		declaredInside := out.DeclLine >= lam.start && out.DeclLine <= lam.end
		if !declaredInside {
			out.Captured = true
		}
	}
	return &out
}

// innermostLambda returns the narrowest recorded lambda body containing line.
func (sm *scopeMap) innermostLambda(line int) *lineRange {
	var best *lineRange
	for i := range sm.lambdas {
		r := &sm.lambdas[i]
		if !r.contains(line) {
			continue
		}
		if best == nil || r.start > best.start {
			best = r
		}
	}
	return best
}
