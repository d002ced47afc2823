package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentx-labs/platformview/internal/registry"
	"github.com/agentx-labs/platformview/internal/tree"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	watchExpand bool
	watchIcons  bool
)

func init() {
	watchCmd.Flags().BoolVar(&watchExpand, "expand", false, "Expand archives into their packages")
	watchCmd.Flags().BoolVar(&watchIcons, "icons", false, "Prefix each node with its icon name")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the logical view and reprint it on every change",
	Long: `Print the project's logical view, then print it again whenever the platform
node changes. The project properties and the platforms directory are watched
for edits. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := openProject()
		if err != nil {
			return err
		}
		defer p.Close()

		out := cmd.OutOrStdout()
		opts := viewOptions{expand: watchExpand, icons: watchIcons}

		changed := make(chan struct{}, 1)
		sub := p.Platform().AddListener(func(tree.Event) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer sub.Cancel()

		// Rendering activates children, which fires events of its own. Those
		// arrive through the executors, so settle before discarding them.
		show := func(ctx context.Context) error {
			err := render(out, p.Root(), opts)
			if serr := p.Settle(ctx); serr != nil {
				return err
			}
			select {
			case <-changed:
			default:
			}
			return err
		}

		if err := p.Settle(ctx); err != nil {
			return nil // interrupted
		}
		if err := show(ctx); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return p.Watch(gctx, registry.DefaultDebounce)
		})
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-changed:
				}
				if err := p.Settle(gctx); err != nil {
					return nil
				}
				fmt.Fprintln(out)
				if err := show(gctx); err != nil {
					return err
				}
			}
		})
		return g.Wait()
	},
}
