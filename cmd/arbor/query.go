package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/arbor"
)

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid format %q (want json or text)", format)
	}
}

func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// documentSymbols returns the indexed symbols for path, parsing from disk
// when the index has never seen the file.
func documentSymbols(e *arbor.Engine, path string) ([]*arbor.Symbol, []arbor.Diagnostic, error) {
	if syms := e.DocumentSymbols(path); syms != nil {
		diags, _ := e.Store().FileDiagnostics(path)
		return syms, diags, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s is not indexed and not readable: %w", path, err)
	}
	res := e.Parse(string(data), path, 1)
	return res.Symbols, res.Diagnostics, nil
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List the symbols of one source file",
	Long:  "Reads symbols from the index, or parses the file directly when it has not been indexed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("symbols", err)
	}
	defer e.Close()

	syms, diags, err := documentSymbols(e, args[0])
	if err != nil {
		return outputError("symbols", err)
	}
	var rows []CLISymbol
	flattenSymbols(syms, 0, &rows)
	return outputResult(CLIResult{
		Command:     "symbols",
		Symbols:     rows,
		Diagnostics: toCLIDiagnostics(diags),
	})
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <line> <name>",
	Short: "Resolve the type of a name at a source line",
	Long:  "Answers \"what type does this name have at this line\", honoring shadowing, closures, qualified (Class::member) and self access.",
	Args:  cobra.ExactArgs(3),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[2]
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return outputError("resolve", fmt.Errorf("line must be a number: %w", err))
	}

	e, err := openEngine()
	if err != nil {
		return outputError("resolve", err)
	}
	defer e.Close()

	entry, err := e.Resolve(path, line, name)
	if err != nil {
		// not indexed: analyze the on-disk content for this one query
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return outputError("resolve", err)
		}
		e.OpenDocument(path, string(data))
		entry, err = e.Resolve(path, line, name)
		if err != nil {
			return outputError("resolve", err)
		}
	}
	if entry == nil {
		return outputError("resolve", fmt.Errorf("%s is not in scope at %s:%d", name, path, line))
	}
	return outputResult(CLIResult{
		Command: "resolve",
		Entry: &CLIScopeEntry{
			Name:      entry.Name,
			Type:      entry.Type.String(),
			Depth:     entry.Depth,
			DeclLine:  entry.DeclLine,
			EndLine:   entry.EndLine,
			Captured:  entry.Captured,
			Qualifier: entry.Qualifier,
		},
	})
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics <file>",
	Short: "List the parse diagnostics of one source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnostics,
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("diagnostics", err)
	}
	defer e.Close()

	_, diags, err := documentSymbols(e, args[0])
	if err != nil {
		return outputError("diagnostics", err)
	}
	return outputResult(CLIResult{
		Command:     "diagnostics",
		Diagnostics: toCLIDiagnostics(diags),
	})
}
