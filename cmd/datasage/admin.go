package main

import (
	"fmt"
	"os"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		flags  commonFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all collections as a YAML snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			snapshot, err := client.Knowledge.Export(cmd.Context())
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = file.Close() }()
				out = file
			}
			return snapshot.WriteYAML(out)
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func deleteCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			removed, err := client.Knowledge.Delete(cmd.Context(), knowledge.Collection(args[0]), args[1])
			if err != nil {
				return err
			}
			if removed {
				fmt.Println("deleted")
			} else {
				fmt.Println("not found")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")

	return cmd
}

func countCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Show record counts per collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			counts, err := client.Knowledge.Counts(cmd.Context())
			if err != nil {
				return err
			}
			for _, collection := range knowledge.Collections() {
				fmt.Printf("%-15s %d\n", collection.String(), counts[collection])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")

	return cmd
}
