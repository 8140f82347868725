package app

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/browser"
	"github.com/justyntemme/thumbnav/internal/fs"
)

type lsOptions struct {
	long   bool
	du     bool
	thumbs bool
}

func newLsCmd(o *rootOptions) *cobra.Command {
	lo := &lsOptions{}
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the current directory with indices",
		Long: `Lists the directory: ".." first, then directories, then files, each
group sorted by name. The printed indices are accepted by open, rename and cp.
With a dir argument that directory is listed instead; files are refused.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			// A directory argument gets its own session; the current
			// directory and the remembered last path stay as they are
			session := e.session
			if len(args) == 1 {
				dir, err := absFrom(e.session.Dir(), args[0])
				if err != nil {
					return err
				}
				session, err = browser.NewSession(browser.Options{
					Dir:        dir,
					ShowHidden: e.session.ShowHidden(),
					Thumbnails: e.cache,
				})
				if err != nil {
					return err
				}
			}
			listing, err := session.List()
			if err != nil {
				return err
			}
			printListing(cmd.OutOrStdout(), session, listing, lo)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&lo.long, "long", "l", false, "show size and modification time")
	cmd.Flags().BoolVar(&lo.du, "du", false, "with -l, show the recursive size of directories")
	cmd.Flags().BoolVarP(&lo.thumbs, "thumbs", "t", false, "generate and show thumbnail paths")
	return cmd
}

func printListing(w io.Writer, s *browser.Session, listing fs.Listing, lo *lsOptions) {
	fmt.Fprintln(w, headerStyle.Render(listing.Dir))

	rows := make([][]string, 0, len(listing.Entries))
	for i, entry := range listing.Entries {
		name := entry.Name
		if entry.IsDir {
			name = dirStyle.Render(name + "/")
		}
		row := []string{fmt.Sprintf("%3d", i), name}

		if lo.long && !entry.IsParent() {
			row = append(row, entrySize(entry, lo.du), mutedStyle.Render(humanize.Time(entry.ModTime)))
		}
		if lo.thumbs && !entry.IsDir {
			if thumb := s.ThumbnailPath(entry.Path); thumb != "" {
				row = append(row, mutedStyle.Render(thumb))
			}
		}
		rows = append(rows, row)
	}
	writeColumns(w, rows)
}

func entrySize(e fs.Entry, du bool) string {
	if !e.IsDir {
		return humanize.Bytes(uint64(e.Size))
	}
	if !du {
		return "-"
	}
	size, err := fs.TreeSize(e.Path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(size))
}
