package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/debug"
	"github.com/justyntemme/thumbnav/internal/watcher"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var lo lsOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the listing again whenever the directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			w, err := watcher.New(e.cfg.Watch.DebounceMs)
			if err != nil {
				return err
			}
			defer w.Close()

			dir := e.session.Dir()
			if err := w.Watch(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			listing, err := e.session.List()
			if err != nil {
				return err
			}
			printListing(out, e.session, listing, &lo)

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case changed := <-w.Notify():
					debug.Log(debug.APP, "refresh after change in %s", changed)
					listing, err := e.session.List()
					if err != nil {
						return err
					}
					fmt.Fprintln(out)
					printListing(out, e.session, listing, &lo)
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&lo.long, "long", "l", false, "show size and modification time")
	cmd.Flags().BoolVarP(&lo.thumbs, "thumbs", "t", false, "generate and show thumbnail paths")
	return cmd
}
