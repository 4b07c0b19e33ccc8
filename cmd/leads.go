package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omnisales/leadgen-cli/internal/agent"
	"github.com/omnisales/leadgen-cli/internal/export"
	"github.com/omnisales/leadgen-cli/internal/model"
	"github.com/omnisales/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect, import, and export leads",
}

var (
	leadsWorkspace string
	leadsStatus    string
	leadsOutPath   string
	leadsSeedPath  string
	replyLeadID    string
	replyMessage   string
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), store.LeadFilter{
			WorkspaceID: leadsWorkspace,
			Status:      model.LeadStatus(leadsStatus),
		})
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			fmt.Println("no leads")
			return nil
		}
		for _, lead := range leads {
			fmt.Printf("%s  %-14s score=%-3d %s\n", lead.ID, lead.Status, lead.Score, lead.CompanyName)
		}
		return nil
	},
}

var leadsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all leads in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Store.ClearLeads(cmd.Context(), leadsWorkspace)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d leads\n", n)
		return nil
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a workspace's leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if leadsOutPath == "" {
			return eris.New("--out is required")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), store.LeadFilter{
			WorkspaceID: leadsWorkspace,
			Status:      model.LeadStatus(leadsStatus),
		})
		if err != nil {
			return err
		}
		if err := export.WriteLeadsXLSX(leadsOutPath, leads); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("leads", len(leads)),
			zap.String("path", leadsOutPath),
		)
		return nil
	},
}

var leadsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a YAML seed file or an exported XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if leadsSeedPath == "" && leadsOutPath == "" {
			return eris.New("--seed or --xlsx is required")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var leads []model.Lead
		switch {
		case leadsSeedPath != "":
			leads, err = export.LoadSeedYAML(leadsSeedPath, leadsWorkspace)
		default:
			leads, err = export.ReadLeadsXLSX(leadsOutPath, leadsWorkspace)
		}
		if err != nil {
			return err
		}

		created, err := env.Store.ImportLeads(cmd.Context(), leads)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("read", len(leads)),
			zap.Int("created", created),
		)
		return nil
	},
}

var leadsReplyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Record a prospect reply on a lead (opens the conversation)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := agent.RecordReply(cmd.Context(), env.Store, replyLeadID, replyMessage)
		if err != nil {
			return err
		}
		fmt.Printf("lead %s is now %s (%d turns)\n", lead.ID, lead.Status, len(lead.Conversations))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsClearCmd, leadsExportCmd, leadsImportCmd} {
		c.Flags().StringVar(&leadsWorkspace, "workspace", "", "workspace id (required)")
	}
	leadsListCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by lead status")
	leadsExportCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by lead status")
	leadsExportCmd.Flags().StringVar(&leadsOutPath, "out", "", "output XLSX path (required)")
	leadsImportCmd.Flags().StringVar(&leadsSeedPath, "seed", "", "YAML seed file path")
	leadsImportCmd.Flags().StringVar(&leadsOutPath, "xlsx", "", "exported XLSX path")

	leadsListCmd.MarkFlagRequired("workspace")
	leadsClearCmd.MarkFlagRequired("workspace")
	leadsExportCmd.MarkFlagRequired("workspace")

	leadsReplyCmd.Flags().StringVar(&replyLeadID, "lead", "", "lead id (required)")
	leadsReplyCmd.Flags().StringVar(&replyMessage, "message", "", "reply content (required)")
	leadsReplyCmd.MarkFlagRequired("lead")
	leadsReplyCmd.MarkFlagRequired("message")

	leadsCmd.AddCommand(leadsListCmd, leadsClearCmd, leadsExportCmd, leadsImportCmd, leadsReplyCmd)
	rootCmd.AddCommand(leadsCmd)
}
