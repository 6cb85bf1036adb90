package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func learnCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "learn <question> <sql>",
		Short: "Record a validated question/SQL pair",
		Long: `Record a validated question/SQL pair as a retrieval example.

Learning is idempotent: re-learning a known pair (compared after whitespace
normalization) returns the existing record instead of creating a duplicate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			pair, created, err := client.Learning.Learn(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("learned %s\n", pair.ID())
			} else {
				fmt.Printf("already known %s\n", pair.ID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")

	return cmd
}
