package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var qualifyWorkspace string

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Score and qualify pending leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Qualifier.Run(cmd.Context(), qualifyWorkspace)
		if err != nil {
			return err
		}
		fmt.Printf("qualified %d leads\n", n)
		return nil
	},
}

func init() {
	qualifyCmd.Flags().StringVar(&qualifyWorkspace, "workspace", "", "workspace id (required)")
	qualifyCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(qualifyCmd)
}
