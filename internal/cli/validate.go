package cli

import (
	"fmt"

	"github.com/agentx-labs/platformview/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <manifest>",
	Short: "Check a platform manifest against the manifest schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := manifest.ValidateFile(args[0])
		if err != nil {
			return fmt.Errorf("validating %s: %w", args[0], err)
		}
		out := cmd.OutOrStdout()
		if result.Valid {
			fmt.Fprintf(out, "%s is valid\n", args[0])
			return nil
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  [FAIL] %s\n", issue)
		}
		return fmt.Errorf("%s has %d issue(s)", args[0], len(result.Issues))
	},
}
