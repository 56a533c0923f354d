package parser

import (
	"strings"

	"github.com/jward/arbor/internal/pike"
)

// extractBranches runs the simplified per-branch extraction for conditional
// compilation. Each branch body is re-tokenized in isolation with the
// tolerant tokenizer (which cannot fail on unbalanced brackets) and scanned
// for declaration shapes; results are tagged conditional and never replace
// base symbols. The branch count is capped to bound cost.
func extractBranches(code, filename string, startLine int, branches []branch) []*pike.Symbol {
	if startLine < 1 {
		startLine = 1
	}
	if len(branches) > maxBranchExtract {
		branches = branches[:maxBranchExtract]
	}
	lines := strings.Split(code, "\n")

	var syms []*pike.Symbol
	for _, br := range branches {
		lo := br.StartLine - startLine
		hi := br.EndLine - startLine
		if lo < 0 || lo >= len(lines) {
			continue
		}
		if hi >= len(lines) {
			hi = len(lines) - 1
		}
		body := make([]string, 0, hi-lo+1)
		for _, raw := range lines[lo : hi+1] {
			if strings.HasPrefix(strings.TrimSpace(raw), "#") {
				body = append(body, "") // nested directives stripped, lines stable
				continue
			}
			body = append(body, raw)
		}
		toks := pike.Tokenize(strings.Join(body, "\n"), br.StartLine)
		for _, sym := range branchDecls(toks, filename) {
			sym.Conditional = true
			sym.Condition = br.Condition
			sym.Branch = br.Index
			syms = append(syms, sym)
		}
	}
	return syms
}

// branchDecls is the simplified keyword/modifier/type pattern matcher used
// inside conditional branches. It recognizes classes, enums and typed
// declarations without recursing into bodies.
func branchDecls(toks []pike.Token, filename string) []*pike.Symbol {
	var syms []*pike.Symbol
	atStart := true
	for i := 0; i < len(toks); i++ {
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
		var mods []string
		for j < len(toks) && toks[j].Kind == pike.TokKeyword && pike.IsModifier(toks[j].Text) {
			mods = append(mods, toks[j].Text)
			j++
		}
		if j >= len(toks) {
			break
		}
		lead := toks[j]
		switch {
		case lead.Kind == pike.TokKeyword && (lead.Text == "class" || lead.Text == "enum"):
			if j+1 < len(toks) && toks[j+1].Kind == pike.TokIdent {
				kind := pike.KindClass
				if lead.Text == "enum" {
					kind = pike.KindEnum
				}
				name := toks[j+1]
				syms = append(syms, &pike.Symbol{
					Name: name.Text, Kind: kind, Modifiers: mods,
					File: filename, Line: name.Line, Col: name.Col, EndLine: name.Line,
				})
				i = j + 1
			}
		case lead.Kind == pike.TokKeyword && lead.Text == "constant":
			if j+1 < len(toks) && toks[j+1].Kind == pike.TokIdent {
				name := toks[j+1]
				syms = append(syms, &pike.Symbol{
					Name: name.Text, Kind: pike.KindConstant, Modifiers: mods,
					File: filename, Line: name.Line, Col: name.Col, EndLine: name.Line,
				})
				i = j + 1
			}
		case typeLeadToken(lead):
			ts := pike.NewTypeScanner(toks, j)
			typ := ts.Parse()
			k := ts.Pos()
			if k >= len(toks) || toks[k].Kind != pike.TokIdent {
				continue
			}
			name := toks[k]
			kind := pike.KindVariable
			if k+1 < len(toks) && toks[k+1].IsPunct("(") {
				kind = pike.KindMethod
			} else if k+1 < len(toks) && !(toks[k+1].IsPunct(";") || toks[k+1].IsPunct("=") || toks[k+1].IsPunct(",")) {
				continue
			}
			syms = append(syms, &pike.Symbol{
				Name: name.Text, Kind: kind, Modifiers: mods, Type: typ,
				File: filename, Line: name.Line, Col: name.Col, EndLine: name.Line,
			})
			i = k
		}
	}
	return syms
}
