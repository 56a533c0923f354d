package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/arbor"
	"github.com/jward/arbor/internal/config"
)

var (
	flagConfig string
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "arbor",
	Short:         "Error-tolerant source analysis for Pike code",
	Long:          "Arbor parses Pike source with error recovery, indexes symbols into SQLite, and answers scope, inheritance, and call hierarchy queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "arbor.toml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(diagnosticsCmd)
	rootCmd.AddCommand(supertypesCmd)
	rootCmd.AddCommand(subtypesCmd)
	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(calleesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	return cfg, nil
}

// openEngine builds an Engine from the effective configuration.
func openEngine() (*arbor.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return arbor.NewFromConfig(cfg)
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a directory tree of Pike source",
	Long:  "Parses every matching source file with error recovery and writes symbols and diagnostics to the SQLite index. Unchanged files are skipped by content hash.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	e, err := openEngine()
	if err != nil {
		return outputError("index", err)
	}
	defer e.Close()

	if err := e.IndexDirectory(cmd.Context(), root); err != nil {
		return outputError("index", err)
	}
	st, err := e.Stats()
	if err != nil {
		return outputError("index", err)
	}
	fmt.Fprintf(os.Stderr, "indexed %d files, %d symbols in %s\n",
		st.Files, st.Symbols, time.Since(start).Round(time.Millisecond))
	return outputResult(CLIResult{Command: "index", Stats: &st})
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("stats", err)
	}
	defer e.Close()

	st, err := e.Stats()
	if err != nil {
		return outputError("stats", err)
	}
	cacheStats := map[string]arbor.CacheStats{}
	for ns, s := range e.CacheStats() {
		cacheStats[string(ns)] = s
	}
	return outputResult(CLIResult{Command: "stats", Stats: &st, Cache: cacheStats})
}
