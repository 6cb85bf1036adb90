// Package main is the entry point for the datasage CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasage",
		Short: "Hybrid retrieval store for text-to-SQL assistants",
		Long: `Datasage stores database schema, documentation, and learned question/SQL
pairs, and retrieves the most relevant of each for a natural-language
question using fused full-text and vector search.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(indexCmd())
	cmd.AddCommand(learnCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(deleteCmd())
	cmd.AddCommand(countCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}
