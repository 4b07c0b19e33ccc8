package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pipelineWorkspace string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full pipeline: discover, enrich, qualify, outreach, close",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, runErr := env.Pipeline.Run(cmd.Context(), pipelineWorkspace)
		for _, res := range results {
			line := fmt.Sprintf("%-12s processed=%d duration=%s", res.Agent, res.Processed, res.Duration.Round(time.Millisecond))
			if res.Err != "" {
				line += " error=" + res.Err
			}
			fmt.Println(line)
		}
		return runErr
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineWorkspace, "workspace", "", "workspace id (required)")
	pipelineCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(pipelineCmd)
}
