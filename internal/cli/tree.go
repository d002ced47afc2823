package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/project"
	"github.com/agentx-labs/platformview/internal/tree"
	"github.com/spf13/cobra"
)

// Depth of the collapsed view: the platform node and its archives.
const collapsedDepth = 2

var (
	treeExpand bool
	treeJSON   bool
	treeIcons  bool
)

func init() {
	treeCmd.Flags().BoolVar(&treeExpand, "expand", false, "Expand archives into their packages")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output in JSON format")
	treeCmd.Flags().BoolVar(&treeIcons, "icons", false, "Prefix each node with its icon name")
	rootCmd.AddCommand(treeCmd)
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the project's logical view",
	Long: `Print the project node and the server platform bound to it. The platform node
lists the archives on the embeddable EJB container classpath; --expand also
lists the packages inside each archive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject()
		if err != nil {
			return err
		}
		defer p.Close()

		if err := p.Settle(cmd.Context()); err != nil {
			return fmt.Errorf("waiting for the view: %w", err)
		}
		return render(cmd.OutOrStdout(), p.Root(), viewOptions{
			expand: treeExpand,
			json:   treeJSON,
			icons:  treeIcons,
		})
	},
}

type viewOptions struct {
	expand bool
	json   bool
	icons  bool
}

func (o viewOptions) depth() int {
	if o.expand {
		return 0
	}
	return collapsedDepth
}

func render(w io.Writer, root tree.Node, opts viewOptions) error {
	if opts.json {
		out, err := json.MarshalIndent(tree.Capture(root, opts.depth()), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling tree: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	return tree.Print(w, root, tree.PrintOptions{Depth: opts.depth(), Icons: opts.icons})
}

// openProject opens the project containing the --project directory.
func openProject() (*project.Project, error) {
	return project.Open(projectDir, project.Options{Workers: config.Workers()})
}
