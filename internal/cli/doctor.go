package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/manifest"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/agentx-labs/platformview/internal/project"
	"github.com/agentx-labs/platformview/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check settings, installed platforms and the project binding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := &doctor{out: cmd.OutOrStdout()}
		d.checkSettings()
		reg := d.checkPlatforms()
		d.checkProject(reg)
		if d.failures > 0 {
			return fmt.Errorf("%d problem(s) found", d.failures)
		}
		return nil
	},
}

type doctor struct {
	out      io.Writer
	failures int
}

func (d *doctor) ok(format string, args ...any) {
	fmt.Fprintf(d.out, "  [ OK ] "+format+"\n", args...)
}

func (d *doctor) info(format string, args ...any) {
	fmt.Fprintf(d.out, "  [INFO] "+format+"\n", args...)
}

func (d *doctor) fail(format string, args ...any) {
	d.failures++
	fmt.Fprintf(d.out, "  [FAIL] "+format+"\n", args...)
}

func (d *doctor) checkSettings() {
	fmt.Fprintln(d.out, "Settings check:")
	if _, err := os.Stat(config.FilePath()); err != nil {
		d.info("%s not found, using defaults", config.FilePath())
		return
	}
	d.ok("%s", config.FilePath())
}

func (d *doctor) checkPlatforms() *registry.Registry {
	fmt.Fprintln(d.out, "Platforms check:")
	dir := config.PlatformsDir()
	found, problems := registry.Discover(dir)
	for _, err := range problems {
		d.fail("%v", err)
	}
	if len(found) == 0 && len(problems) == 0 {
		d.info("no platforms installed in %s", dir)
	}
	for _, f := range found {
		result, err := manifest.ValidateFile(f.Source)
		switch {
		case err != nil:
			d.fail("%s: %v", f.Path, err)
		case !result.Valid:
			d.fail("%v", &registry.InvalidManifestError{Path: f.Path, Issues: result.Issues})
		default:
			d.ok("%s (%s)", f.Manifest.ID, f.Manifest.DisplayName)
		}
	}

	reg, err := registry.Open(dir)
	if err != nil {
		d.fail("reading %s: %v", dir, err)
		return nil
	}
	return reg
}

func (d *doctor) checkProject(reg *registry.Registry) {
	fmt.Fprintln(d.out, "Project check:")
	root, err := project.Find(projectDir)
	if err != nil {
		d.info("%v", err)
		return
	}
	props, err := config.OpenProperties(config.PropertiesPath(root))
	if err != nil {
		d.fail("%v", err)
		return
	}
	d.ok("%s", props.Path())

	id, ok := props.Property(config.ServerInstanceKey)
	if !ok {
		d.fail("%s is not set", config.ServerInstanceKey)
		return
	}
	if reg == nil {
		return
	}
	p, ok := reg.Platform(id)
	if !ok {
		d.fail("%s = %s does not name an installed platform", config.ServerInstanceKey, id)
		return
	}
	d.ok("bound to %s (%s)", id, p.DisplayName())

	if !p.IsToolSupported(platform.ToolEmbeddableEJB) {
		d.info("%s has no embeddable EJB container", id)
		return
	}
	for _, entry := range p.ToolClasspathEntries(platform.ToolEmbeddableEJB) {
		switch classpathStatus(entry) {
		case "MISS":
			d.fail("classpath entry %s does not exist", entry)
		case "SKIP":
			d.info("classpath entry %s is not an archive", entry)
		default:
			d.ok("%s", entry)
		}
	}
}
