// Package resolver answers point-in-time type queries: what type does the
// name N have at line L. It deliberately builds no AST; a cheap brace/line
// index is computed once per call and everything else is a linear token scan,
// since the source may be re-parsed on every keystroke.
package resolver

import (
	"strings"

	"github.com/jward/arbor/internal/pike"
)

// Unbounded marks a scope entry visible to the end of the file.
const Unbounded = 1 << 30

// ScopeEntry describes one visible declaration of a name. Entries for the
// same name may nest; within the lines [DeclLine, EndLine] the entry with the
// greatest Depth wins.
type ScopeEntry struct {
	Name      string
	Type      *pike.Type
	Depth     int // brace-nesting level of the declaration, root = 0
	DeclLine  int
	EndLine   int    // closing line of the enclosing scope, or Unbounded
	Captured  bool   // resolved through a lambda's closure
	Qualifier string // set for Class::member resolutions
}

// selfKeywords resolve to the innermost enclosing class rather than through
// the scope map.
var selfKeywords = map[string]bool{
	"this":         true,
	"this_object":  true,
	"this_program": true,
}

// ResolveVariableType reports the type of name as visible at the given
// 1-based line, or nil when nothing of that name is in scope. It never
// panics on malformed input.
func ResolveVariableType(code, filename string, line int, name string) (entry *ScopeEntry) {
	defer func() {
		if r := recover(); r != nil {
			entry = nil
		}
	}()
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if selfKeywords[name] {
		return resolveSelf(code, line, name)
	}
	if cls, member, ok := splitQualified(name); ok {
		return resolveQualified(code, line, cls, member)
	}
	// the bare inherited-scope form ::id resolves like the plain name
	name = strings.TrimPrefix(name, "::")
	sm := buildScopeMap(code)
	return sm.lookup(name, line)
}

func splitQualified(name string) (cls, member string, ok bool) {
	i := strings.Index(name, "::")
	if i <= 0 || i+2 >= len(name) {
		return "", "", false // leading :: is the inherited-scope form; generic lookup applies
	}
	return name[:i], name[i+2:], true
}

// classSpan is a brace-delimited class body.
type classSpan struct {
	name      string
	declLine  int
	bodyStart int // token index of '{'
	bodyEnd   int // token index of matching '}', or len(toks)
	startLine int
	endLine   int
	depth     int
}

func classSpans(toks []pike.Token, brace []int) []classSpan {
	var spans []classSpan
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.IsPunct("{"):
			depth++
		case t.IsPunct("}"):
			if depth > 0 {
				depth--
			}
		case t.Kind == pike.TokKeyword && t.Text == "class":
			if i+1 >= len(toks) || toks[i+1].Kind != pike.TokIdent {
				continue
			}
			// find the body '{', skipping optional create-arguments
			j := i + 2
			if j < len(toks) && toks[j].IsPunct("(") {
				j = skipParens(toks, j) + 1
			}
			if j >= len(toks) || !toks[j].IsPunct("{") {
				continue
			}
			end := brace[j]
			endLine := Unbounded
			endIdx := len(toks)
			if end >= 0 {
				endLine = toks[end].Line
				endIdx = end
			}
			spans = append(spans, classSpan{
				name:      toks[i+1].Text,
				declLine:  t.Line,
				bodyStart: j,
				bodyEnd:   endIdx,
				startLine: toks[j].Line,
				endLine:   endLine,
				depth:     depth,
			})
		}
	}
	return spans
}

// resolveSelf scans enclosing class boundaries up to the query line and
// synthesizes a type naming the innermost enclosing class. Outside any class
// the file-level program type is returned.
func resolveSelf(code string, line int, name string) *ScopeEntry {
	toks := pike.Tokenize(code, 1)
	brace := pike.BraceIndex(toks)
	spans := classSpans(toks, brace)
	var inner *classSpan
	for i := range spans {
		cs := &spans[i]
		if cs.startLine <= line && line <= cs.endLine && cs.declLine <= line {
			if inner == nil || cs.depth > inner.depth {
				inner = cs
			}
		}
	}
	entry := &ScopeEntry{Name: name, Depth: 0, DeclLine: 1, EndLine: Unbounded}
	if inner == nil {
		if name == "this_program" {
			entry.Type = pike.Primitive("program")
		} else {
			entry.Type = pike.Primitive("object")
		}
		return entry
	}
	entry.Depth = inner.depth + 1
	entry.DeclLine = inner.declLine
	entry.EndLine = inner.endLine
	if name == "this_program" {
		entry.Type = &pike.Type{Kind: pike.TypePrimitive, Name: "program", Inner: pike.Named(inner.name)}
	} else {
		entry.Type = pike.ObjectOf(inner.name)
	}
	return entry
}

// resolveQualified resolves Class::member strictly within the named class's
// brace-delimited body.
func resolveQualified(code string, line int, cls, member string) *ScopeEntry {
	toks := pike.Tokenize(code, 1)
	brace := pike.BraceIndex(toks)
	for _, cs := range classSpans(toks, brace) {
		if cs.name != cls {
			continue
		}
		if e := memberDecl(toks, cs, member); e != nil {
			e.Qualifier = cls
			return e
		}
	}
	return nil
}

// memberDecl scans a class body for a type-led declaration of member.
func memberDecl(toks []pike.Token, cs classSpan, member string) *ScopeEntry {
	atStart := true
	for i := cs.bodyStart + 1; i < cs.bodyEnd; i++ {
		t := toks[i]
		if t.IsPunct(";") || t.IsPunct("{") || t.IsPunct("}") {
			atStart = true
			continue
		}
		if !atStart {
			continue
		}
		atStart = false
		j := i
		for j < cs.bodyEnd && toks[j].Kind == pike.TokKeyword && pike.IsModifier(toks[j].Text) {
			j++
		}
		if j >= cs.bodyEnd || !typeLead(toks[j]) {
			continue
		}
		typ, k := scanTypeAt(toks, j, cs.bodyEnd)
		if k >= cs.bodyEnd || toks[k].Kind != pike.TokIdent || toks[k].Text != member {
			continue
		}
		return &ScopeEntry{
			Name:     member,
			Type:     typ,
			Depth:    cs.depth + 1,
			DeclLine: toks[k].Line,
			EndLine:  cs.endLine,
		}
	}
	return nil
}

func skipParens(toks []pike.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		if toks[i].IsPunct("(") {
			depth++
		} else if toks[i].IsPunct(")") {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

func typeLead(t pike.Token) bool {
	if t.Kind == pike.TokKeyword && pike.IsTypeKeyword(t.Text) {
		return true
	}
	return t.Kind == pike.TokIdent && len(t.Text) > 0 && t.Text[0] >= 'A' && t.Text[0] <= 'Z'
}
