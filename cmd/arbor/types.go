package main

import "github.com/jward/arbor"

// CLIResult is the JSON output envelope shared by every command.
type CLIResult struct {
	Command     string                      `json:"command"`
	Symbols     []CLISymbol                 `json:"symbols,omitempty"`
	Nodes       []arbor.Node                `json:"nodes,omitempty"`
	Calls       []arbor.Call                `json:"calls,omitempty"`
	Entry       *CLIScopeEntry              `json:"entry,omitempty"`
	Diagnostics []CLIDiagnostic             `json:"diagnostics,omitempty"`
	Stats       *arbor.IndexStats           `json:"stats,omitempty"`
	Cache       map[string]arbor.CacheStats `json:"cache,omitempty"`
	Error       string                      `json:"error,omitempty"`
}

// CLISymbol is the flattened symbol row: Depth carries the nesting level so
// text output can indent without reproducing the tree.
type CLISymbol struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Type        string `json:"type,omitempty"`
	Modifiers   string `json:"modifiers,omitempty"`
	Line        int    `json:"line"`
	EndLine     int    `json:"end_line"`
	Depth       int    `json:"depth"`
	Conditional bool   `json:"conditional,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Doc         string `json:"doc,omitempty"`
}

// CLIScopeEntry is the resolve command's output row.
type CLIScopeEntry struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Depth     int    `json:"depth"`
	DeclLine  int    `json:"decl_line"`
	EndLine   int    `json:"end_line,omitempty"`
	Captured  bool   `json:"captured,omitempty"`
	Qualifier string `json:"qualifier,omitempty"`
}

type CLIDiagnostic struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line"`
}

func flattenSymbols(syms []*arbor.Symbol, depth int, out *[]CLISymbol) {
	for _, s := range syms {
		row := CLISymbol{
			Name:        s.Name,
			Kind:        string(s.Kind),
			Line:        s.Line,
			EndLine:     s.EndLine,
			Depth:       depth,
			Conditional: s.Conditional,
			Condition:   s.Condition,
			Doc:         s.Documentation,
		}
		if s.Type != nil {
			row.Type = s.Type.String()
		}
		if len(s.Modifiers) > 0 {
			row.Modifiers = joinModifiers(s.Modifiers)
		}
		*out = append(*out, row)
		flattenSymbols(s.Children, depth+1, out)
	}
}

func joinModifiers(mods []string) string {
	out := ""
	for i, m := range mods {
		if i > 0 {
			out += " "
		}
		out += m
	}
	return out
}

func toCLIDiagnostics(diags []arbor.Diagnostic) []CLIDiagnostic {
	out := make([]CLIDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = CLIDiagnostic{
			Message:  d.Message,
			Severity: string(d.Severity),
			File:     d.File,
			Line:     d.Line,
		}
	}
	return out
}
