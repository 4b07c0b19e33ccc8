package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enrichWorkspace string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Research NEW leads: LinkedIn presence and decision makers",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Enricher.Run(cmd.Context(), enrichWorkspace)
		if err != nil {
			return err
		}
		fmt.Printf("enriched %d leads\n", n)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichWorkspace, "workspace", "", "workspace id (required)")
	enrichCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(enrichCmd)
}
