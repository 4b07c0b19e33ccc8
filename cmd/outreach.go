package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var outreachWorkspace string

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Send first-touch emails to qualified leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Outreach.Run(cmd.Context(), outreachWorkspace)
		if err != nil {
			return err
		}
		fmt.Printf("contacted %d leads\n", n)
		return nil
	},
}

func init() {
	outreachCmd.Flags().StringVar(&outreachWorkspace, "workspace", "", "workspace id (required)")
	outreachCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(outreachCmd)
}
