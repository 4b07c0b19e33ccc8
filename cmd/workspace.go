package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/omnisales/leadgen-cli/internal/export"
	"github.com/omnisales/leadgen-cli/internal/model"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var (
	workspaceName     string
	workspaceDivision string
)

var workspaceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a workspace with default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if workspaceName == "" {
			return eris.New("--name is required")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ws := &model.Workspace{
			Name:     workspaceName,
			Division: workspaceDivision,
			Config:   model.DefaultSystemConfig(),
		}
		if err := env.Store.CreateWorkspace(cmd.Context(), ws); err != nil {
			return err
		}
		fmt.Printf("created workspace %s (%s)\n", ws.ID, ws.Name)
		return nil
	},
}

var workspaceFile string

var workspaceImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create a workspace from a YAML seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ws, err := export.LoadWorkspaceYAML(workspaceFile)
		if err != nil {
			return err
		}
		if err := env.Store.CreateWorkspace(cmd.Context(), ws); err != nil {
			return err
		}
		fmt.Printf("created workspace %s (%s)\n", ws.ID, ws.Name)
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		workspaces, err := env.Store.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		if len(workspaces) == 0 {
			fmt.Println("no workspaces")
			return nil
		}
		for _, ws := range workspaces {
			line := fmt.Sprintf("%s  %s", ws.ID, ws.Name)
			if ws.Division != "" {
				line += "  (" + ws.Division + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	workspaceCreateCmd.Flags().StringVar(&workspaceName, "name", "", "workspace name (required)")
	workspaceCreateCmd.Flags().StringVar(&workspaceDivision, "division", "", "business division label")
	workspaceImportCmd.Flags().StringVarP(&workspaceFile, "file", "f", "", "workspace seed YAML (required)")
	workspaceImportCmd.MarkFlagRequired("file")
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceImportCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	rootCmd.AddCommand(workspaceCmd)
}
