package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closerWorkspace string

var closerCmd = &cobra.Command{
	Use:   "close",
	Short: "Answer inbound replies on open conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Closer.Run(cmd.Context(), closerWorkspace)
		if err != nil {
			return err
		}
		fmt.Printf("answered %d conversations\n", n)
		return nil
	},
}

func init() {
	closerCmd.Flags().StringVar(&closerWorkspace, "workspace", "", "workspace id (required)")
	closerCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(closerCmd)
}
