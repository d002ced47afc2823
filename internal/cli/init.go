package cli

import (
	"fmt"

	"github.com/agentx-labs/platformview/internal/project"
	"github.com/spf13/cobra"
)

var initServer string

func init() {
	initCmd.Flags().StringVar(&initServer, "server", "", "Platform identifier to bind the project to")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project in the --project directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := project.Init(projectDir, initServer)
		if err != nil {
			return fmt.Errorf("initializing project: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", path)
		return nil
	},
}
