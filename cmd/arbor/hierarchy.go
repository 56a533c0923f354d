package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/arbor"
)

var supertypesCmd = &cobra.Command{
	Use:   "supertypes <file> <class>",
	Short: "Show the ancestors of a class",
	Long:  "Follows inherit declarations transitively across every indexed file.",
	Args:  cobra.ExactArgs(2),
	RunE:  runHierarchy("supertypes"),
}

var subtypesCmd = &cobra.Command{
	Use:   "subtypes <file> <class>",
	Short: "Show the descendants of a class",
	Args:  cobra.ExactArgs(2),
	RunE:  runHierarchy("subtypes"),
}

var callersCmd = &cobra.Command{
	Use:   "callers <file> <method>",
	Short: "Show the methods that call a method",
	Args:  cobra.ExactArgs(2),
	RunE:  runHierarchy("callers"),
}

var calleesCmd = &cobra.Command{
	Use:   "callees <file> <method>",
	Short: "Show the methods a method calls",
	Args:  cobra.ExactArgs(2),
	RunE:  runHierarchy("callees"),
}

func runHierarchy(query string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path, name := args[0], args[1]

		e, err := openEngine()
		if err != nil {
			return outputError(query, err)
		}
		defer e.Close()

		item, ok := e.LookupNode(path, name)
		if !ok {
			return outputError(query,
				fmt.Errorf("no class or method named %q in %s", name, path))
		}

		result := CLIResult{Command: query}
		var diags []arbor.Diagnostic
		switch query {
		case "supertypes":
			result.Nodes, diags = e.Supertypes(item)
		case "subtypes":
			result.Nodes, diags = e.Subtypes(item)
		case "callers":
			result.Calls, diags = e.IncomingCalls(item)
		case "callees":
			result.Calls, diags = e.OutgoingCalls(item)
		}
		if result.Nodes == nil && result.Calls == nil {
			return outputError(query,
				fmt.Errorf("%q is not a valid anchor for %s", name, query))
		}
		result.Diagnostics = toCLIDiagnostics(diags)
		return outputResult(result)
	}
}
