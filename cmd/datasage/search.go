package main

import (
	"fmt"
	"strings"

	"github.com/datasage-io/datasage/application/service"
	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var (
		flags      commonFlags
		collection string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Retrieve the records most relevant to a question",
		Long: `Retrieve the records most relevant to a question.

Searches all collections by default; restrict with --collection
(schema, documentation, or examples).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := cmd.Context()
			question := args[0]

			switch knowledge.Collection(collection) {
			case knowledge.CollectionSchema:
				matches, err := client.Search.Schema(ctx, question, limit)
				if err != nil {
					return err
				}
				printEntryMatches(knowledge.CollectionSchema, matches)
			case knowledge.CollectionDocumentation:
				matches, err := client.Search.Documentation(ctx, question, limit)
				if err != nil {
					return err
				}
				printEntryMatches(knowledge.CollectionDocumentation, matches)
			case knowledge.CollectionExamples:
				matches, err := client.Search.Examples(ctx, question, limit)
				if err != nil {
					return err
				}
				printExampleMatches(matches)
			case "":
				bundle, err := client.Search.Context(ctx, question, limit)
				if err != nil {
					return err
				}
				printBundle(bundle)
			default:
				return fmt.Errorf("unknown collection %q", collection)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&collection, "collection", "", "Collection to search (default: all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results per collection")

	return cmd
}

func printBundle(bundle service.Bundle) {
	printEntryMatches(knowledge.CollectionSchema, bundle.Schema())
	printEntryMatches(knowledge.CollectionDocumentation, bundle.Documentation())
	printExampleMatches(bundle.Examples())
}

func printEntryMatches(collection knowledge.Collection, matches []search.SchemaMatch) {
	fmt.Printf("== %s (%d)\n", collection, len(matches))
	for _, match := range matches {
		scores := match.Scores()
		fmt.Printf("%.4f  %s  %s\n", scores.Combined(), match.Entry().ID(), firstLine(match.Entry().Document()))
	}
}

func printExampleMatches(matches []search.ExampleMatch) {
	fmt.Printf("== %s (%d)\n", knowledge.CollectionExamples, len(matches))
	for _, match := range matches {
		scores := match.Scores()
		fmt.Printf("%.4f  %s  %s\n", scores.Combined(), match.Pair().ID(), firstLine(match.Pair().Question()))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}
