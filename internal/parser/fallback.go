package parser

import (
	"fmt"
	"strings"

	"github.com/jward/arbor/internal/pike"
)

// fallbackScan re-tokenizes the ORIGINAL (non-blanked) source and hunts for
// declaration-shaped token runs the grammar pass missed: declarations using
// union, intersection, attributed or ranged types, and declarations stranded
// inside badly damaged regions. A name already extracted wins; the fallback
// only fills gaps (first writer wins).
func fallbackScan(code, filename string, startLine int, seen map[string]bool) ([]*pike.Symbol, []pike.Diagnostic) {
	toks := pike.Tokenize(code, startLine)
	docs := pike.DocComments(code, startLine)

	var syms []*pike.Symbol
	var diags []pike.Diagnostic
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
		// modifiers are legal ahead of the type
		var mods []string
		for j < len(toks) && toks[j].Kind == pike.TokKeyword && pike.IsModifier(toks[j].Text) {
			mods = append(mods, toks[j].Text)
			j++
		}
		if j >= len(toks) || !typeLeadToken(toks[j]) {
			continue
		}

		ts := pike.NewTypeScanner(toks, j)
		typ := ts.Parse()
		k := ts.Pos()
		if k >= len(toks) || toks[k].Kind != pike.TokIdent {
			continue
		}
		name := toks[k]
		if k+1 >= len(toks) {
			continue
		}
		after := toks[k+1]
		if !(after.IsPunct(";") || after.IsPunct("=") || after.IsPunct(",")) {
			continue
		}
		if seen[name.Text] {
			i = k
			continue
		}
		seen[name.Text] = true
		sym := &pike.Symbol{
			Name:          name.Text,
			Kind:          pike.KindVariable,
			Modifiers:     mods,
			Type:          typ,
			File:          filename,
			Line:          name.Line,
			Col:           name.Col,
			EndLine:       name.Line,
			Documentation: docs[name.Line],
		}
		syms = append(syms, sym)
		diags = append(diags, pike.Diagnostic{
			Message:  fmt.Sprintf("declaration of %q recovered by token-level scan", name.Text),
			Severity: pike.SeverityWarning,
			File:     filename,
			Line:     name.Line,
		})
		i = k
	}
	return syms, diags
}

// typeLeadToken reports whether a token can begin a type expression: a type
// keyword, a capitalized identifier, or a dunder attribute name.
func typeLeadToken(t pike.Token) bool {
	if t.Kind == pike.TokKeyword && pike.IsTypeKeyword(t.Text) {
		return true
	}
	if t.Kind == pike.TokIdent {
		return isCapitalized(t.Text) || strings.HasPrefix(t.Text, "__")
	}
	return false
}
