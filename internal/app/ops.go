package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/browser"
)

func newOpenCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <index|path>",
		Short: "Enter a directory or open a file with the default application",
		Long: `A directory becomes the current directory and is remembered for the
next invocation. Anything else is handed to xdg-open, open or start.
An argument made only of digits is an index into the listing; name a
file called 3 as ./3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			before := e.session.Dir()
			if i, ok := parseIndex(args[0]); ok {
				if _, err := e.session.List(); err != nil {
					return err
				}
				err = e.session.Open(i)
			} else {
				err = e.session.OpenPath(args[0])
			}
			if err != nil {
				return err
			}
			if dir := e.session.Dir(); dir != before {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}

func newRenameCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <index> <new-name>",
		Short: "Rename an entry of the current directory (linux only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, ok := parseIndex(args[0])
			if !ok {
				return fmt.Errorf("rename: %q is not an index", args[0])
			}
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, err := e.session.List(); err != nil {
				return err
			}
			return e.session.Rename(i, args[1])
		},
	}
}

func newCpCmd(o *rootOptions) *cobra.Command {
	var cut bool
	cmd := &cobra.Command{
		Use:   "cp <index|path> <dest-dir>",
		Short: "Copy (or with --cut, move) an entry into another directory",
		Long: `Puts the source on the clipboard and pastes it into dest-dir under its
own name. Directories are copied recursively. Nothing is overwritten.
An argument made only of digits is an index into the listing; name a
file called 3 as ./3.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := resolveArg(e.session, args[0])
			if err != nil {
				return err
			}
			destDir, err := absFrom(e.session.Dir(), args[1])
			if err != nil {
				return err
			}

			// Paste targets the session directory, so paste from one rooted at dest
			dest, err := browser.NewSession(browser.Options{Dir: destDir})
			if err != nil {
				return err
			}
			if cut {
				err = dest.CutPath(src)
			} else {
				err = dest.CopyPath(src)
			}
			if err != nil {
				return err
			}
			return dest.Paste()
		},
	}
	cmd.Flags().BoolVar(&cut, "cut", false, "move instead of copy")
	return cmd
}

func newMvCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <index|path> <dest-dir>",
		Short: "Move an entry into another directory",
		Long: `Moves the source into dest-dir under its own name. Nothing is overwritten.
An argument made only of digits is an index into the listing; name a
file called 3 as ./3.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := resolveArg(e.session, args[0])
			if err != nil {
				return err
			}
			destDir, err := absFrom(e.session.Dir(), args[1])
			if err != nil {
				return err
			}
			return e.session.MoveTo(src, destDir)
		},
	}
}
