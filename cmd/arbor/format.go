package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

func outputResultText(result CLIResult) error {
	w := os.Stdout
	switch {
	case result.Entry != nil:
		formatEntryText(w, *result.Entry)
	case result.Symbols != nil:
		formatSymbolsText(w, result.Symbols)
	case result.Nodes != nil:
		formatNodesText(w, result)
	case result.Calls != nil:
		formatCallsText(w, result)
	case result.Stats != nil:
		formatStatsText(w, result)
	}
	if len(result.Diagnostics) > 0 {
		formatDiagnosticsText(w, result.Diagnostics)
	}
	return nil
}

func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTYPE\tMODIFIERS\tLINE\tCOND")
	for _, s := range syms {
		cond := ""
		if s.Conditional {
			cond = s.Condition
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%d\t%s\n",
			strings.Repeat("  ", s.Depth), s.Name, s.Kind, s.Type, s.Modifiers, s.Line, cond)
	}
	tw.Flush()
}

func formatEntryText(w io.Writer, e CLIScopeEntry) {
	fmt.Fprintf(w, "%s: %s\n", e.Name, e.Type)
	fmt.Fprintf(w, "  declared line %d, scope depth %d\n", e.DeclLine, e.Depth)
	if e.Captured {
		fmt.Fprintln(w, "  captured by enclosing lambda")
	}
	if e.Qualifier != "" {
		fmt.Fprintf(w, "  member of %s\n", e.Qualifier)
	}
}

func formatNodesText(w io.Writer, result CLIResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFILE\tLINE")
	for _, n := range result.Nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", n.Name, n.Kind, n.File, n.Range.StartLine)
	}
	tw.Flush()
}

func formatCallsText(w io.Writer, result CLIResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILE\tLINE\tSITES")
	for _, c := range result.Calls {
		sites := make([]string, len(c.Sites))
		for i, s := range c.Sites {
			sites[i] = fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			c.Node.Name, c.Node.File, c.Node.Range.StartLine, strings.Join(sites, ","))
	}
	tw.Flush()
}

func formatStatsText(w io.Writer, result CLIResult) {
	fmt.Fprintf(w, "files: %d\nsymbols: %d\ndiagnostics: %d\n",
		result.Stats.Files, result.Stats.Symbols, result.Stats.Diagnostics)
	if len(result.Cache) == 0 {
		return
	}
	names := make([]string, 0, len(result.Cache))
	for ns := range result.Cache {
		names = append(names, ns)
	}
	sort.Strings(names)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CACHE\tSIZE\tMAX\tHITS\tMISSES")
	for _, ns := range names {
		s := result.Cache[ns]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", ns, s.Size, s.Max, s.Hits, s.Misses)
	}
	tw.Flush()
}

func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	for _, d := range diags {
		loc := fmt.Sprintf("%d", d.Line)
		if d.File != "" {
			loc = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		fmt.Fprintf(w, "%s: %s: %s\n", loc, d.Severity, d.Message)
	}
}
