package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/agentx-labs/platformview/internal/registry"
	"github.com/spf13/cobra"
)

var (
	platformListJSON bool
	platformAddLink  bool
)

func init() {
	platformListCmd.Flags().BoolVar(&platformListJSON, "json", false, "Output in JSON format")
	platformAddCmd.Flags().BoolVar(&platformAddLink, "link", false, "Link the manifest instead of copying it")

	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformShowCmd)
	platformCmd.AddCommand(platformAddCmd)
	platformCmd.AddCommand(platformRemoveCmd)
	platformCmd.AddCommand(platformDefaultCmd)
	rootCmd.AddCommand(platformCmd)
}

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Manage installed server platforms",
	Long: `Manage the platform manifests in the platforms directory
(~/.platformview/platforms/ unless the platforms_dir setting says otherwise).`,
}

// platformEntry represents an installed platform for display.
type platformEntry struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"display_name"`
	Version       string   `json:"version"`
	Default       bool     `json:"default,omitempty"`
	Linked        bool     `json:"linked,omitempty"`
	Path          string   `json:"path"`
	Tools         []string `json:"tools,omitempty"`
	EmbeddableEJB []string `json:"embeddable_ejb,omitempty"`
}

func newPlatformEntry(reg *registry.Registry, inst *platform.Instance) platformEntry {
	def, _ := reg.Default()
	e := platformEntry{
		ID:            inst.ID(),
		DisplayName:   inst.DisplayName(),
		Default:       inst.ID() == def,
		Tools:         inst.Tools(),
		EmbeddableEJB: inst.ToolClasspathEntries(platform.ToolEmbeddableEJB),
	}
	if found, err := reg.Entry(inst.ID()); err == nil {
		e.Version = found.Manifest.Version
		e.Linked = found.Linked
		e.Path = found.Path
	}
	return e
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed platforms, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		instances := reg.List()
		entries := make([]platformEntry, 0, len(instances))
		for _, inst := range instances {
			entries = append(entries, newPlatformEntry(reg, inst))
		}

		out := cmd.OutOrStdout()
		if platformListJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No platforms installed yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tVERSION\tDEFAULT\tTOOLS")
		for _, e := range entries {
			def := ""
			if e.Default {
				def = "*"
			}
			tools := strings.Join(e.Tools, ",")
			if tools == "" {
				tools = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.DisplayName, e.Version, def, tools)
		}
		return w.Flush()
	},
}

var platformShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a platform and check its embeddable EJB classpath",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		inst, err := reg.Instance(args[0])
		if err != nil {
			return err
		}
		showPlatform(cmd.OutOrStdout(), newPlatformEntry(reg, inst))
		return nil
	},
}

func showPlatform(w io.Writer, e platformEntry) {
	fmt.Fprintf(w, "ID:       %s\n", e.ID)
	fmt.Fprintf(w, "Name:     %s\n", e.DisplayName)
	fmt.Fprintf(w, "Version:  %s\n", e.Version)
	fmt.Fprintf(w, "Default:  %v\n", e.Default)
	if e.Linked {
		fmt.Fprintf(w, "Manifest: %s (link)\n", e.Path)
	} else {
		fmt.Fprintf(w, "Manifest: %s\n", e.Path)
	}
	if len(e.Tools) == 0 {
		fmt.Fprintln(w, "Tools:    none")
		return
	}
	fmt.Fprintf(w, "Tools:    %s\n", strings.Join(e.Tools, ", "))
	if len(e.EmbeddableEJB) == 0 {
		return
	}
	fmt.Fprintln(w, "Embeddable EJB classpath:")
	for _, entry := range e.EmbeddableEJB {
		fmt.Fprintf(w, "  [%s] %s\n", classpathStatus(entry), entry)
	}
}

// classpathStatus tells whether a classpath entry shows up in the view.
func classpathStatus(entry string) string {
	fo, ok := fileobj.ToFileObject(entry)
	if !ok {
		return "MISS"
	}
	if _, ok := fileobj.GetArchiveRoot(fo); !ok {
		return "SKIP"
	}
	return " OK "
}

var platformAddCmd = &cobra.Command{
	Use:   "add <manifest>",
	Short: "Validate a platform manifest and install it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		inst, err := reg.Add(args[0], platformAddLink)
		if err != nil {
			return fmt.Errorf("adding platform: %w", err)
		}
		verb := "Installed"
		if platformAddLink {
			verb = "Linked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, inst.ID(), inst.DisplayName())
		return nil
	},
}

var platformRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an installed platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0]); err != nil {
			return fmt.Errorf("removing platform: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var platformDefaultCmd = &cobra.Command{
	Use:   "default [id]",
	Short: "Print or change the default platform",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			id, ok := reg.Default()
			if !ok {
				fmt.Fprintln(out, "No default platform.")
				return nil
			}
			fmt.Fprintln(out, id)
			return nil
		}
		if err := reg.SetDefault(args[0]); err != nil {
			return fmt.Errorf("setting default platform: %w", err)
		}
		fmt.Fprintf(out, "Default platform is now %s\n", args[0])
		return nil
	},
}

func openRegistry() (*registry.Registry, error) {
	return registry.Open(config.PlatformsDir())
}
