package parser

import (
	"strings"

	"github.com/jward/arbor/internal/pike"
)

// branch is one arm of a conditional-compilation chain, with the 1-based line
// range of its body (directive lines excluded).
type branch struct {
	Condition string
	Index     int // position within its #if/#elif/#else chain
	StartLine int
	EndLine   int
}

// directiveScan is the product of the pre-pass over raw lines: the source with
// every directive line blanked (line numbers stable), the conditional branch
// list, and the include/require symbols.
type directiveScan struct {
	blanked  string
	branches []branch
	symbols  []*pike.Symbol
	diags    []pike.Diagnostic
}

// openChain tracks one unterminated #if chain during the scan.
type openChain struct {
	cond   string
	index  int
	bodyAt int // first body line of the current arm
}

// scanDirectives runs before any grammar parse. It must come first because
// the grammar pass consumes the blanked copy: conditional text the grammar
// cannot evaluate is removed while line numbers stay stable.
func scanDirectives(code, filename string, startLine int) *directiveScan {
	if startLine < 1 {
		startLine = 1
	}
	ds := &directiveScan{}
	lines := strings.Split(code, "\n")
	out := make([]string, len(lines))
	var stack []*openChain

	for i, raw := range lines {
		lineNo := startLine + i
		trimmed := strings.TrimSpace(raw)
		if !strings.HasPrefix(trimmed, "#") {
			out[i] = raw
			continue
		}
		out[i] = "" // blank every directive line

		word, rest := splitDirective(trimmed)
		switch word {
		case "if", "ifdef", "ifndef":
			stack = append(stack, &openChain{cond: rest, bodyAt: lineNo + 1})
		case "elif", "else":
			if len(stack) == 0 {
				ds.diags = append(ds.diags, pike.Diagnostic{
					Message:  "#" + word + " without matching #if",
					Severity: pike.SeverityWarning,
					File:     filename,
					Line:     lineNo,
				})
				continue
			}
			top := stack[len(stack)-1]
			ds.closeArm(top, lineNo-1)
			top.index++
			top.bodyAt = lineNo + 1
			if word == "elif" {
				top.cond = rest
			} else {
				top.cond = "!(" + top.cond + ")"
			}
		case "endif":
			if len(stack) == 0 {
				ds.diags = append(ds.diags, pike.Diagnostic{
					Message:  "#endif without matching #if",
					Severity: pike.SeverityWarning,
					File:     filename,
					Line:     lineNo,
				})
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ds.closeArm(top, lineNo-1)
		case "include":
			if path := includeTarget(rest); path != "" {
				ds.symbols = append(ds.symbols, &pike.Symbol{
					Name:    path,
					Kind:    pike.KindInclude,
					File:    filename,
					Line:    lineNo,
					EndLine: lineNo,
				})
			}
		case "require":
			if target := strings.TrimSpace(rest); target != "" {
				ds.symbols = append(ds.symbols, &pike.Symbol{
					Name:    strings.Trim(target, `"`),
					Kind:    pike.KindRequire,
					File:    filename,
					Line:    lineNo,
					EndLine: lineNo,
				})
			}
		}
		// #define, #pragma, #charset etc. are blanked and otherwise ignored.
	}

	// Unterminated chains close at end of input. Common while typing.
	lastLine := startLine + len(lines) - 1
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ds.closeArm(top, lastLine)
		ds.diags = append(ds.diags, pike.Diagnostic{
			Message:  "unterminated #if (no #endif before end of input)",
			Severity: pike.SeverityWarning,
			File:     filename,
			Line:     lastLine,
		})
	}

	ds.blanked = strings.Join(out, "\n")
	return ds
}

func (ds *directiveScan) closeArm(c *openChain, endLine int) {
	if endLine < c.bodyAt {
		return // empty arm
	}
	ds.branches = append(ds.branches, branch{
		Condition: c.cond,
		Index:     c.index,
		StartLine: c.bodyAt,
		EndLine:   endLine,
	})
}

// splitDirective splits "#word rest" into its keyword and argument text.
// Handles both "#if X" and "# if X".
func splitDirective(line string) (word, rest string) {
	s := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'a' && c <= 'z')) {
			return s[:i], strings.TrimSpace(s[i:])
		}
	}
	return s, ""
}

// includeTarget extracts the literal path from `"path"` or `<path>` forms.
func includeTarget(rest string) string {
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && rest[0] == '"' {
		if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
			return rest[1 : 1+end]
		}
		return rest[1:]
	}
	if len(rest) >= 2 && rest[0] == '<' {
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end]
		}
		return rest[1:]
	}
	return rest
}
