package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index schema DDL or documentation",
	}

	cmd.AddCommand(indexSchemaCmd())
	cmd.AddCommand(indexDocsCmd())

	return cmd
}

func indexSchemaCmd() *cobra.Command {
	var (
		flags commonFlags
		file  string
	)

	cmd := &cobra.Command{
		Use:   "schema [ddl]",
		Short: "Index DDL statements into the schema collection",
		Long: `Index DDL statements into the schema collection.

Pass the DDL as an argument, or use --file to index a SQL file. File input
is split on ";" and each statement is indexed as a separate record.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("provide a DDL argument or --file")
			}

			client, logger, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := cmd.Context()
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				statements := splitStatements(string(data))
				entries, err := client.Knowledge.IndexSchemaBatch(ctx, statements)
				if err != nil {
					return err
				}
				logger.Info("indexed schema file", "file", file, "records", len(entries))
				for _, entry := range entries {
					fmt.Println(entry.ID())
				}
				return nil
			}

			entry, err := client.Knowledge.IndexSchema(ctx, args[0], nil)
			if err != nil {
				return err
			}
			fmt.Println(entry.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&file, "file", "", "SQL file to index, split on \";\"")

	return cmd
}

func indexDocsCmd() *cobra.Command {
	var (
		flags commonFlags
		file  string
	)

	cmd := &cobra.Command{
		Use:   "docs [text]",
		Short: "Index documentation into the documentation collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("provide a text argument or --file")
			}

			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			document := ""
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				document = string(data)
			} else {
				document = args[0]
			}

			entry, err := client.Knowledge.IndexDocumentation(cmd.Context(), document, nil)
			if err != nil {
				return err
			}
			fmt.Println(entry.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&file, "file", "", "Text file to index as one record")

	return cmd
}

// splitStatements splits SQL text on ";" and drops empty fragments.
func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}
