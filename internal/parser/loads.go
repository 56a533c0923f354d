package parser

import (
	"strings"

	"github.com/jward/arbor/internal/pike"
)

// loadPrimitives are the runtime entry points that pull in code dynamically.
// A string-literal argument gives a navigable target; computed arguments do
// not and are ignored.
var loadPrimitives = map[string]bool{
	"load_module":  true,
	"compile_file": true,
}

// detectLoads emits a load symbol for every dynamic-loading call with a
// string-literal path. Detection is for navigation only; nothing is executed.
func detectLoads(code, filename string, startLine int) []*pike.Symbol {
	toks := pike.Tokenize(code, startLine)
	var syms []*pike.Symbol
	for i := 0; i+2 < len(toks); i++ {
		t := toks[i]
		if t.Kind != pike.TokIdent || !loadPrimitives[t.Text] {
			continue
		}
		if !toks[i+1].IsPunct("(") || toks[i+2].Kind != pike.TokString {
			continue
		}
		path := strings.Trim(toks[i+2].Text, `"`)
		if path == "" {
			continue
		}
		syms = append(syms, &pike.Symbol{
			Name:    path,
			Kind:    pike.KindLoad,
			File:    filename,
			Line:    t.Line,
			Col:     t.Col,
			EndLine: t.Line,
		})
		i += 2
	}
	return syms
}
