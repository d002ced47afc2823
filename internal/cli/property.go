package cli

import (
	"fmt"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/project"
	"github.com/spf13/cobra"
)

func init() {
	propertyCmd.AddCommand(propertyGetCmd)
	propertyCmd.AddCommand(propertySetCmd)
	propertyCmd.AddCommand(propertyUnsetCmd)
	propertyCmd.AddCommand(propertyListCmd)
	rootCmd.AddCommand(propertyCmd)
}

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Manage project properties",
	Long: `Read and write the project properties stored in .platformview/project.yaml.
The server platform is bound through the ` + config.ServerInstanceKey + ` property.`,
}

var propertyGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a property value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := openProperties()
		if err != nil {
			return err
		}
		value, ok := props.Property(args[0])
		if !ok {
			return fmt.Errorf("property %q is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var propertySetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a property",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := openProperties()
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := props.Set(key, value); err != nil {
			return fmt.Errorf("setting property %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var propertyUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := openProperties()
		if err != nil {
			return err
		}
		if err := props.Unset(args[0]); err != nil {
			return fmt.Errorf("removing property %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
		return nil
	},
}

var propertyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := openProperties()
		if err != nil {
			return err
		}
		for _, key := range props.Keys() {
			value, _ := props.Property(key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
		}
		return nil
	},
}

func openProperties() (*config.Properties, error) {
	root, err := project.Find(projectDir)
	if err != nil {
		return nil, err
	}
	return config.OpenProperties(config.PropertiesPath(root))
}
