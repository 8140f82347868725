package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the thumbnail cache",
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List indexed thumbnails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			recs, err := e.cache.Entries()
			if err != nil {
				return err
			}
			rows := [][]string{{
				headerStyle.Render("KIND"),
				headerStyle.Render("CREATED"),
				headerStyle.Render("SOURCE"),
				headerStyle.Render("THUMBNAIL"),
			}}
			for _, r := range recs {
				rows = append(rows, []string{r.Kind, humanize.Time(r.CreatedAt), r.Source, mutedStyle.Render(r.CachePath)})
			}
			writeColumns(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			st, err := e.cache.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files, %s, %d indexed\n",
				e.cache.Dir(), st.Files, humanize.Bytes(uint64(st.Bytes)), st.Indexed)
			return nil
		},
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached thumbnail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.cache.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s thumbnails\n", humanize.Comma(int64(n)))
			return nil
		},
	}

	cmd.AddCommand(ls, stats, purge)
	return cmd
}
