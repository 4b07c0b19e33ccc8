package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnisales/leadgen-cli/internal/agent"
)

var (
	discoverWorkspace string
	discoverIndustry  string
	discoverNiche     string
	discoverCity      string
	discoverCountry   string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery cycle for a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Discovery.RunWithOverrides(cmd.Context(), discoverWorkspace, agent.Overrides{
			Industry: discoverIndustry,
			Niche:    discoverNiche,
			City:     discoverCity,
			Country:  discoverCountry,
		})
		if err != nil {
			return err
		}
		fmt.Printf("discovered %d new leads\n", n)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverWorkspace, "workspace", "", "workspace id (required)")
	discoverCmd.Flags().StringVar(&discoverIndustry, "industry", "", "target a single industry instead of the ICP list")
	discoverCmd.Flags().StringVar(&discoverNiche, "niche", "", "target a single niche instead of the ICP list")
	discoverCmd.Flags().StringVar(&discoverCity, "city", "", "target a single city instead of the ICP list")
	discoverCmd.Flags().StringVar(&discoverCountry, "country", "", "target a single country instead of the ICP list")
	discoverCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(discoverCmd)
}
